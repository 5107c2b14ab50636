package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrClubNotFound  = errors.New("club not found in ledger")
	ErrInvalidAmount = errors.New("credit amount must be positive")
)

// ClubLedger holds club balances. CreditBalance must be an atomic increment so
// editions settling prizes concurrently never lose a credit. key identifies the
// credit: a key already applied is acknowledged without touching the balance.
type ClubLedger interface {
	CreditBalance(ctx context.Context, key uuid.UUID, clubID int, amount int64) error
}

// MemoryLedger is an in-process ledger. Unknown clubs start from zero.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[int]int64
	applied  map[uuid.UUID]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[int]int64), applied: make(map[uuid.UUID]struct{})}
}

func (l *MemoryLedger) CreditBalance(_ context.Context, key uuid.UUID, clubID int, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.applied[key]; ok {
		return nil
	}
	l.applied[key] = struct{}{}
	l.balances[clubID] += amount
	return nil
}

func (l *MemoryLedger) Balance(clubID int) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[clubID]
}
