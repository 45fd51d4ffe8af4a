package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

type TableConfig[K comparable, T any] struct {
	Name  string
	KeyOf func(T) K
	Load  func(ctx context.Context, key K) (T, error)
	Save  func(ctx context.Context, value T) error
	// SaveMany is used by UpdatePair when set so both records land together.
	SaveMany func(ctx context.Context, values []T) error
	// Default builds the record for a key the backend does not know. Without
	// it missing keys return ErrNotFound.
	Default func(key K) T
	Clone   func(T) T
	Less    func(a, b K) bool
}

// Table caches records of one kind and serializes read-modify-write cycles
// per key. Distinct keys never wait on each other.
type Table[K comparable, T any] struct {
	cfg   TableConfig[K, T]
	locks *xsync.MapOf[K, *sync.Mutex]
	cache *xsync.MapOf[K, T]
	dirty *xsync.MapOf[K, struct{}]
}

func NewTable[K comparable, T any](cfg TableConfig[K, T]) *Table[K, T] {
	if cfg.Clone == nil {
		cfg.Clone = func(v T) T { return v }
	}
	return &Table[K, T]{
		cfg:   cfg,
		locks: xsync.NewMapOf[K, *sync.Mutex](),
		cache: xsync.NewMapOf[K, T](),
		dirty: xsync.NewMapOf[K, struct{}](),
	}
}

func (t *Table[K, T]) lock(key K) *sync.Mutex {
	mu, _ := t.locks.LoadOrCompute(key, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	return mu
}

// Get returns a copy of the record, falling back to the default.
func (t *Table[K, T]) Get(ctx context.Context, key K) (T, error) {
	if v, ok := t.cache.Load(key); ok {
		return t.cfg.Clone(v), nil
	}

	mu := t.lock(key)
	mu.Lock()
	defer mu.Unlock()

	v, err := t.current(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.cfg.Clone(v), nil
}

// current must be called with the key lock held.
func (t *Table[K, T]) current(ctx context.Context, key K) (T, error) {
	if v, ok := t.cache.Load(key); ok {
		return v, nil
	}

	v, err := t.cfg.Load(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound) && t.cfg.Default != nil:
		v = t.cfg.Default(key)
	case errors.Is(err, ErrNotFound):
		var zero T
		return zero, ErrNotFound
	default:
		var zero T
		return zero, &PersistenceError{Table: t.cfg.Name, Key: fmt.Sprint(key), Op: "load", Err: err}
	}

	t.cache.Store(key, v)
	return v, nil
}

// Put replaces the record stored under its key.
func (t *Table[K, T]) Put(ctx context.Context, value T) error {
	key := t.cfg.KeyOf(value)
	value = t.cfg.Clone(value)

	mu := t.lock(key)
	mu.Lock()
	t.cache.Store(key, value)
	err := t.persist(ctx, key, value)
	mu.Unlock()

	if err == nil {
		t.retryDirty(ctx, key)
	}
	return err
}

// Update runs fn on a copy of the record while holding the key lock. An error
// from fn leaves the record untouched and is returned as is. After fn succeeds
// the new value is visible to readers even if saving it fails; in that case a
// *PersistenceError is returned along with the value and the save is retried.
func (t *Table[K, T]) Update(ctx context.Context, key K, fn func(*T) error) (T, error) {
	var zero T

	mu := t.lock(key)
	mu.Lock()
	cur, err := t.current(ctx, key)
	if err != nil {
		mu.Unlock()
		return zero, err
	}

	next := t.cfg.Clone(cur)
	if err = fn(&next); err != nil {
		mu.Unlock()
		return zero, err
	}

	t.cache.Store(key, next)
	saveErr := t.persist(ctx, key, next)
	mu.Unlock()

	out := t.cfg.Clone(next)
	if saveErr != nil {
		return out, saveErr
	}
	t.retryDirty(ctx, key)
	return out, nil
}

// UpdatePair is Update over two distinct keys. Locks are taken in the order
// given by Less so concurrent pairs cannot deadlock.
func (t *Table[K, T]) UpdatePair(ctx context.Context, a K, b K, fn func(x *T, y *T) error) (T, T, error) {
	var zero T
	if a == b {
		return zero, zero, fmt.Errorf("%s: pair update needs two distinct keys", t.cfg.Name)
	}

	first, second := a, b
	if t.cfg.Less != nil && t.cfg.Less(b, a) {
		first, second = b, a
	}
	muFirst, muSecond := t.lock(first), t.lock(second)
	muFirst.Lock()
	muSecond.Lock()
	unlock := func() {
		muSecond.Unlock()
		muFirst.Unlock()
	}

	curA, err := t.current(ctx, a)
	if err != nil {
		unlock()
		return zero, zero, err
	}
	curB, err := t.current(ctx, b)
	if err != nil {
		unlock()
		return zero, zero, err
	}

	nextA, nextB := t.cfg.Clone(curA), t.cfg.Clone(curB)
	if err = fn(&nextA, &nextB); err != nil {
		unlock()
		return zero, zero, err
	}

	t.cache.Store(a, nextA)
	t.cache.Store(b, nextB)

	var saveErr error
	if t.cfg.SaveMany != nil {
		if err = t.cfg.SaveMany(ctx, []T{nextA, nextB}); err != nil {
			t.dirty.Store(a, struct{}{})
			t.dirty.Store(b, struct{}{})
			saveErr = &PersistenceError{Table: t.cfg.Name, Key: fmt.Sprintf("%v,%v", a, b), Op: "save", Err: err}
		} else {
			t.dirty.Delete(a)
			t.dirty.Delete(b)
		}
	} else {
		saveErr = errors.Join(t.persist(ctx, a, nextA), t.persist(ctx, b, nextB))
	}
	unlock()

	outA, outB := t.cfg.Clone(nextA), t.cfg.Clone(nextB)
	if saveErr != nil {
		return outA, outB, saveErr
	}
	t.retryDirty(ctx, a, b)
	return outA, outB, nil
}

// persist must be called with the key lock held.
func (t *Table[K, T]) persist(ctx context.Context, key K, value T) error {
	if err := t.cfg.Save(ctx, value); err != nil {
		t.dirty.Store(key, struct{}{})
		return &PersistenceError{Table: t.cfg.Name, Key: fmt.Sprint(key), Op: "save", Err: err}
	}
	t.dirty.Delete(key)
	return nil
}

// retryDirty replays failed saves once the backend has accepted a write again.
func (t *Table[K, T]) retryDirty(ctx context.Context, skip ...K) {
	if t.dirty.Size() == 0 {
		return
	}
	t.dirty.Range(func(key K, _ struct{}) bool {
		for _, s := range skip {
			if s == key {
				return true
			}
		}
		return t.flushKey(ctx, key) == nil
	})
}

func (t *Table[K, T]) flushKey(ctx context.Context, key K) error {
	mu := t.lock(key)
	mu.Lock()
	defer mu.Unlock()

	if _, ok := t.dirty.Load(key); !ok {
		return nil
	}
	v, ok := t.cache.Load(key)
	if !ok {
		t.dirty.Delete(key)
		return nil
	}
	return t.persist(ctx, key, v)
}

// Flush retries every pending save and reports the ones that still fail.
func (t *Table[K, T]) Flush(ctx context.Context) error {
	var keys []K
	t.dirty.Range(func(key K, _ struct{}) bool {
		keys = append(keys, key)
		return true
	})

	var errs []error
	for _, key := range keys {
		if err := t.flushKey(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pending is the number of records whose latest value is not yet saved.
func (t *Table[K, T]) Pending() int {
	return t.dirty.Size()
}
