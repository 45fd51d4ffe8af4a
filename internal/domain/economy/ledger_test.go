package economy_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/economy"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
	"github.com/wardenbot/warden/internal/store/mock"
)

const guild = 500

var (
	alice = models.UserKey{GuildID: guild, UserID: 1}
	bob   = models.UserKey{GuildID: guild, UserID: 2}
)

func newLedger(t *testing.T, c clock.Clock) *economy.Ledger {
	t.Helper()
	b, err := store.OpenFile(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	return economy.NewLedger(store.New(b), c, 0, time.UTC)
}

func TestLedger_CreditDebit(t *testing.T) {
	l := newLedger(t, clock.NewManual(time.Now()))
	ctx := context.Background()

	bal, err := l.Credit(ctx, alice, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 30, bal)

	_, err = l.Debit(ctx, alice, 31)
	assert.ErrorIs(t, err, economy.ErrInsufficientFunds)

	got, err := l.Balance(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 30, got, "failed debit must not take anything")

	bal, err = l.Debit(ctx, alice, 30)
	require.NoError(t, err)
	assert.Zero(t, bal)

	_, err = l.Credit(ctx, alice, 0)
	assert.ErrorIs(t, err, economy.ErrInvalidAmount)
	_, err = l.Debit(ctx, alice, -4)
	assert.ErrorIs(t, err, economy.ErrInvalidAmount)
}

func TestLedger_Transfer(t *testing.T) {
	tests := []struct {
		name     string
		from     models.UserKey
		to       models.UserKey
		amount   int64
		wantErr  error
		wantFrom int64
		wantTo   int64
	}{
		{name: "moves funds", from: alice, to: bob, amount: 40, wantFrom: 60, wantTo: 40},
		{name: "insufficient", from: alice, to: bob, amount: 101, wantErr: economy.ErrInsufficientFunds, wantFrom: 100, wantTo: 0},
		{name: "zero amount", from: alice, to: bob, amount: 0, wantErr: economy.ErrInvalidAmount, wantFrom: 100, wantTo: 0},
		{name: "self transfer", from: alice, to: alice, amount: 5, wantErr: economy.ErrSameAccount, wantFrom: 100, wantTo: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(t, clock.NewManual(time.Now()))
			ctx := context.Background()
			_, err := l.Credit(ctx, alice, 100)
			require.NoError(t, err)

			_, _, err = l.Transfer(ctx, guild, tt.from.UserID, tt.to.UserID, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			from, err := l.Balance(ctx, tt.from)
			require.NoError(t, err)
			to, err := l.Balance(ctx, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

func TestLedger_ConcurrentTransfersConserveTotal(t *testing.T) {
	l := newLedger(t, clock.NewManual(time.Now()))
	ctx := context.Background()
	_, err := l.Credit(ctx, alice, 100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := l.Transfer(ctx, guild, alice.UserID, bob.UserID, 10)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, economy.ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	a, _ := l.Balance(ctx, alice)
	b, _ := l.Balance(ctx, bob)
	assert.Equal(t, 10, succeeded)
	assert.Zero(t, a)
	assert.EqualValues(t, 100, b)
}

func TestLedger_DailyClaim(t *testing.T) {
	c := clock.NewManual(time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC))
	l := newLedger(t, c)
	ctx := context.Background()

	reward, bal, err := l.DailyClaim(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, economy.DefaultDailyReward, reward)
	assert.EqualValues(t, economy.DefaultDailyReward, bal)

	c.Advance(30 * time.Minute)
	_, _, err = l.DailyClaim(ctx, alice)
	assert.ErrorIs(t, err, economy.ErrAlreadyClaimed)

	c.Advance(31 * time.Minute)
	_, bal, err = l.DailyClaim(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2*economy.DefaultDailyReward, bal)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), l.NextClaimAt())
}

func TestLedger_DailyClaimConcurrentOnce(t *testing.T) {
	l := newLedger(t, clock.NewManual(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := l.DailyClaim(ctx, alice); err == nil {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, claimed)
}

func TestLedger_TransferPersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockBackend(ctrl)
	rich := models.NewUserRecord(alice)
	rich.Balance = 50
	backend.EXPECT().LoadUser(gomock.Any(), alice).Return(rich, nil)
	backend.EXPECT().LoadUser(gomock.Any(), bob).Return(models.UserRecord{}, store.ErrNotFound)
	backend.EXPECT().SaveUsers(gomock.Any(), gomock.Len(2)).Return(errors.New("tx aborted"))

	l := economy.NewLedger(store.New(backend), clock.Real{}, 0, nil)
	from, to, err := l.Transfer(context.Background(), guild, alice.UserID, bob.UserID, 20)

	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.EqualValues(t, 30, from)
	assert.EqualValues(t, 20, to)
}

func TestLedger_Reset(t *testing.T) {
	l := newLedger(t, clock.NewManual(time.Now()))
	ctx := context.Background()
	_, err := l.Credit(ctx, alice, 10)
	require.NoError(t, err)

	require.NoError(t, l.Reset(ctx, alice))
	bal, err := l.Balance(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, bal)
}
