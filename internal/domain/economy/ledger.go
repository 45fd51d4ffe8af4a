package economy

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
)

const (
	DefaultDailyReward = 100
	dateLayout         = "2006-01-02"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrSameAccount       = errors.New("cannot transfer to the same account")
	ErrAlreadyClaimed    = errors.New("daily reward already claimed")
)

// Ledger moves currency between member records. Every change happens under
// the per-member lock of the store; transfers hold both members' locks.
type Ledger struct {
	store  *store.Store
	clock  clock.Clock
	reward int64
	loc    *time.Location
}

func NewLedger(s *store.Store, c clock.Clock, reward int64, loc *time.Location) *Ledger {
	if reward <= 0 {
		reward = DefaultDailyReward
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{store: s, clock: c, reward: reward, loc: loc}
}

func (l *Ledger) Balance(ctx context.Context, key models.UserKey) (int64, error) {
	u, err := l.store.Users.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return u.Balance, nil
}

func credit(u *models.UserRecord, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if u.Balance > math.MaxInt64-amount {
		return ErrInvalidAmount
	}
	u.Balance += amount
	return nil
}

func debit(u *models.UserRecord, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if u.Balance < amount {
		return ErrInsufficientFunds
	}
	u.Balance -= amount
	return nil
}

// Credit returns the new balance. With a *store.PersistenceError the credit
// already happened in memory.
func (l *Ledger) Credit(ctx context.Context, key models.UserKey, amount int64) (int64, error) {
	u, err := l.store.Users.Update(ctx, key, func(u *models.UserRecord) error {
		return credit(u, amount)
	})
	return u.Balance, err
}

// Debit fails closed: without enough funds nothing is taken.
func (l *Ledger) Debit(ctx context.Context, key models.UserKey, amount int64) (int64, error) {
	u, err := l.store.Users.Update(ctx, key, func(u *models.UserRecord) error {
		return debit(u, amount)
	})
	return u.Balance, err
}

// Transfer moves amount between two members of the same guild. Either both
// balances change or neither does.
func (l *Ledger) Transfer(ctx context.Context, guildID snowflake.ID, from snowflake.ID, to snowflake.ID, amount int64) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}
	if from == to {
		return 0, 0, ErrSameAccount
	}

	src, dst, err := l.store.Users.UpdatePair(ctx,
		models.UserKey{GuildID: guildID, UserID: from},
		models.UserKey{GuildID: guildID, UserID: to},
		func(src, dst *models.UserRecord) error {
			if err := debit(src, amount); err != nil {
				return err
			}
			return credit(dst, amount)
		},
	)
	return src.Balance, dst.Balance, err
}

// Today is the calendar date used for daily claims.
func (l *Ledger) Today() string {
	return l.clock.Now().In(l.loc).Format(dateLayout)
}

// NextClaimAt is the start of the next calendar day in the ledger's zone.
func (l *Ledger) NextClaimAt() time.Time {
	now := l.clock.Now().In(l.loc)
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, l.loc)
}

// DailyClaim credits the daily reward at most once per calendar day.
func (l *Ledger) DailyClaim(ctx context.Context, key models.UserKey) (int64, int64, error) {
	today := l.Today()
	u, err := l.store.Users.Update(ctx, key, func(u *models.UserRecord) error {
		if u.DailyClaimDate == today {
			return ErrAlreadyClaimed
		}
		if err := credit(u, l.reward); err != nil {
			return err
		}
		u.DailyClaimDate = today
		return nil
	})
	if err != nil && !errors.Is(err, store.ErrPersistence) {
		return 0, 0, err
	}
	return l.reward, u.Balance, err
}

// Reset zeroes a member's progression, wallet and warnings. An open ticket
// slot survives so the ticket can still be closed.
func (l *Ledger) Reset(ctx context.Context, key models.UserKey) error {
	_, err := l.store.Users.Update(ctx, key, func(u *models.UserRecord) error {
		fresh := models.NewUserRecord(key)
		fresh.OpenTicketID = u.OpenTicketID
		fresh.OpenTicketChannel = u.OpenTicketChannel
		*u = fresh
		return nil
	})
	return err
}
