package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
)

func TestImportSnapshot(t *testing.T) {
	ctx := context.Background()
	target, err := store.OpenFile(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	defer target.Close()

	snap := store.Snapshot{
		Guilds: []models.GuildConfig{{GuildID: 1}},
		Users:  []models.UserRecord{{GuildID: 1, UserID: 2, Balance: 50}},
	}
	require.NoError(t, importSnapshot(ctx, target, snap, false))

	got, err := target.LoadUser(ctx, models.UserKey{GuildID: 1, UserID: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 50, got.Balance)

	cfg, err := target.LoadGuild(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultWarnLimit, cfg.WarnLimit)

	err = importSnapshot(ctx, target, snap, false)
	assert.ErrorIs(t, err, errNotEmpty)

	snap.Users[0].Balance = 75
	require.NoError(t, importSnapshot(ctx, target, snap, true))
	got, err = target.LoadUser(ctx, models.UserKey{GuildID: 1, UserID: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 75, got.Balance)
}
