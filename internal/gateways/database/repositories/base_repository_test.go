package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wardenbot/warden/internal/store"
)

func TestHandleErrorWithID(t *testing.T) {
	br := NewBaseRepository(nil)

	tests := []struct {
		name       string
		err        error
		wantNil    bool
		isNotFound bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "no rows", err: sql.ErrNoRows, isNotFound: true},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", sql.ErrNoRows), isNotFound: true},
		{name: "other", err: errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := br.HandleErrorWithID("get", "member", 42, tt.err)
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.isNotFound, errors.Is(got, store.ErrNotFound))
			if !tt.isNotFound {
				var repoErr *RepositoryError
				assert.ErrorAs(t, got, &repoErr)
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}
