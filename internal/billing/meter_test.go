package billing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"funnel-copilot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerCall struct {
	userID    string
	operation string
	direction string
	amount    int64
}

// fakeStore mimics the atomic check-and-decrement contract of the
// Postgres wallet repository.
type fakeStore struct {
	mu        sync.Mutex
	balances  map[string]int64
	ledger    []ledgerCall
	debitErr  error
	ledgerErr error
}

func newFakeStore(balances map[string]int64) *fakeStore {
	if balances == nil {
		balances = make(map[string]int64)
	}
	return &fakeStore{balances: balances}
}

func (f *fakeStore) DebitCredits(ctx context.Context, userID string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.debitErr != nil {
		return f.debitErr
	}
	if amount <= 0 {
		return nil
	}
	if f.balances[userID] < amount {
		return ErrInsufficientCredits
	}
	f.balances[userID] -= amount
	return nil
}

func (f *fakeStore) AddCredits(ctx context.Context, userID string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if amount <= 0 {
		return nil
	}
	f.balances[userID] += amount
	return nil
}

func (f *fakeStore) CreateLedgerEntry(ctx context.Context, userID, operation, direction string, amount int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ledgerErr != nil {
		return "", f.ledgerErr
	}
	f.ledger = append(f.ledger, ledgerCall{userID, operation, direction, amount})
	return "entry-1", nil
}

func (f *fakeStore) balance(userID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID]
}

type fakeCache struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeCache) DeleteBalance(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.UsageEvent
}

func (f *fakePublisher) PublishUsage(ctx context.Context, event models.UsageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func TestMeter_Charge(t *testing.T) {
	ctx := context.Background()

	t.Run("non-positive amounts are no-ops", func(t *testing.T) {
		store := newFakeStore(map[string]int64{"u1": 100})
		m := NewMeter(store, &fakeCache{}, &fakePublisher{})

		require.NoError(t, m.Charge(ctx, "u1", models.OperationChatTurn, 0))
		require.NoError(t, m.Charge(ctx, "u1", models.OperationChatTurn, -5))

		assert.EqualValues(t, 100, store.balance("u1"))
		assert.Empty(t, store.ledger)
	})

	t.Run("successful charge debits and records", func(t *testing.T) {
		store := newFakeStore(map[string]int64{"u1": 100})
		cache := &fakeCache{}
		pub := &fakePublisher{}
		m := NewMeter(store, cache, pub)

		require.NoError(t, m.Charge(ctx, "u1", models.OperationAdCreative, 50))

		assert.EqualValues(t, 50, store.balance("u1"))
		require.Len(t, store.ledger, 1)
		assert.Equal(t, ledgerCall{"u1", models.OperationAdCreative, models.DirectionDebit, 50}, store.ledger[0])
		require.Len(t, pub.events, 1)
		assert.Equal(t, "entry-1", pub.events[0].EntryID)
		assert.Equal(t, []string{"u1"}, cache.deleted)
	})

	t.Run("insufficient balance is a typed failure and leaves the balance alone", func(t *testing.T) {
		store := newFakeStore(map[string]int64{"u1": 100})
		m := NewMeter(store, &fakeCache{}, &fakePublisher{})

		err := m.Charge(ctx, "u1", models.OperationDiagnosis, 500)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientCredits)
		assert.EqualValues(t, 100, store.balance("u1"))
		assert.Empty(t, store.ledger)
	})

	t.Run("transient store errors pass through", func(t *testing.T) {
		transient := errors.New("connection refused")
		store := newFakeStore(map[string]int64{"u1": 100})
		store.debitErr = transient
		m := NewMeter(store, &fakeCache{}, &fakePublisher{})

		err := m.Charge(ctx, "u1", models.OperationChatTurn, 1)

		require.Error(t, err)
		assert.ErrorIs(t, err, transient)
		assert.NotErrorIs(t, err, ErrInsufficientCredits)
	})

	t.Run("ledger failure does not void a successful debit", func(t *testing.T) {
		store := newFakeStore(map[string]int64{"u1": 100})
		store.ledgerErr = errors.New("ledger down")
		pub := &fakePublisher{}
		m := NewMeter(store, &fakeCache{}, pub)

		require.NoError(t, m.Charge(ctx, "u1", models.OperationChatTurn, 1))

		assert.EqualValues(t, 99, store.balance("u1"))
		assert.Empty(t, pub.events)
	})

	t.Run("exact balance drains to zero and the next charge fails", func(t *testing.T) {
		store := newFakeStore(map[string]int64{"u1": 100})
		m := NewMeter(store, &fakeCache{}, &fakePublisher{})

		require.NoError(t, m.Charge(ctx, "u1", models.OperationDiagnosis, 100))
		assert.EqualValues(t, 0, store.balance("u1"))

		err := m.Charge(ctx, "u1", models.OperationDiagnosis, 100)
		assert.ErrorIs(t, err, ErrInsufficientCredits)
		assert.EqualValues(t, 0, store.balance("u1"))
	})
}

func TestMeter_Refund(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore(map[string]int64{"u1": 0})
	m := NewMeter(store, &fakeCache{}, &fakePublisher{})

	require.NoError(t, m.Refund(ctx, "u1", 500))

	assert.EqualValues(t, 500, store.balance("u1"))
	require.Len(t, store.ledger, 1)
	assert.Equal(t, models.OperationRefund, store.ledger[0].operation)
	assert.Equal(t, models.DirectionCredit, store.ledger[0].direction)
}

// Concurrent charges against the same wallet must never drive the
// balance negative; at most floor(balance/amount) of them may succeed.
func TestMeter_ConcurrentCharges(t *testing.T) {
	ctx := context.Background()

	const (
		balance = int64(10)
		amount  = int64(3)
		workers = 20
	)

	store := newFakeStore(map[string]int64{"u1": balance})
	m := NewMeter(store, &fakeCache{}, &fakePublisher{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Charge(ctx, "u1", models.OperationChatTurn, amount); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int(balance/amount), succeeded)
	assert.EqualValues(t, balance-int64(succeeded)*amount, store.balance("u1"))
	assert.GreaterOrEqual(t, store.balance("u1"), int64(0))
}
