package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/models"
)

// fakeRest serves reactions in pages and records what the executor posts.
// Calls to methods it does not override panic on the nil embedded client.
type fakeRest struct {
	rest.Rest

	reactors  []discord.User
	afters    []int
	created   []discord.MessageCreate
	updated   []discord.MessageUpdate
	updateErr error
}

func (f *fakeRest) GetReactions(_ snowflake.ID, _ snowflake.ID, emoji string, _ discord.MessageReactionType, after int, limit int, _ ...rest.RequestOpt) ([]discord.User, error) {
	if emoji != models.GiveawayEmoji {
		return nil, errors.New("unexpected emoji " + emoji)
	}
	f.afters = append(f.afters, after)
	var page []discord.User
	for _, u := range f.reactors {
		if int(u.ID) > after && len(page) < limit {
			page = append(page, u)
		}
	}
	return page, nil
}

func (f *fakeRest) CreateMessage(_ snowflake.ID, msg discord.MessageCreate, _ ...rest.RequestOpt) (*discord.Message, error) {
	f.created = append(f.created, msg)
	return &discord.Message{}, nil
}

func (f *fakeRest) UpdateMessage(_ snowflake.ID, _ snowflake.ID, msg discord.MessageUpdate, _ ...rest.RequestOpt) (*discord.Message, error) {
	f.updated = append(f.updated, msg)
	return &discord.Message{}, f.updateErr
}

func TestRestExecutorDrawGiveaway(t *testing.T) {
	giveaway := models.Giveaway{ID: "g1", GuildID: 1, ChannelID: 100, MessageID: 50, HostID: 7, Prize: "Nitro"}

	var reactors []discord.User
	for id := 1; id <= 150; id++ {
		reactors = append(reactors, discord.User{ID: snowflake.ID(id), Bot: id == 150})
	}

	tests := []struct {
		name       string
		reactors   []discord.User
		updateErr  error
		wantAfters []int
		wantResult string
	}{
		{
			name:       "pages through every entrant and skips bots",
			reactors:   reactors,
			wantAfters: []int{0, 100},
			wantResult: "🎊 Congratulations <@149>, you won **Nitro**!",
		},
		{
			name:       "nobody entered",
			wantAfters: []int{0},
			wantResult: "Nobody entered the giveaway for **Nitro** 😢",
		},
		{
			name:       "announcement edit failure is not fatal",
			reactors:   []discord.User{{ID: 9}},
			updateErr:  errors.New("message deleted"),
			wantAfters: []int{0},
			wantResult: "🎊 Congratulations <@9>, you won **Nitro**!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRest{reactors: tt.reactors, updateErr: tt.updateErr}
			x := NewRestExecutor(fake, Renderer{}, nil)
			x.intn = func(n int) int { return n - 1 }

			require.NoError(t, x.Execute(context.Background(), actions.DrawGiveaway{Giveaway: giveaway}))

			assert.Equal(t, tt.wantAfters, fake.afters)
			require.Len(t, fake.created, 1)
			assert.Equal(t, tt.wantResult, fake.created[0].Content)
			require.Len(t, fake.updated, 1)
			require.NotNil(t, fake.updated[0].Embeds)
			assert.Contains(t, (*fake.updated[0].Embeds)[0].Title, "ended")
		})
	}
}
