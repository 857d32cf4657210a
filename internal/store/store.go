// Package store holds orders between webhook ingestion and downstream
// acknowledgment. It is the single source of truth for polling, detail and
// status endpoints; all mutation happens behind one mutex.
package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mrussa/order-bridge/internal/canonical"
)

var ErrNotFound = errors.New("order not found")

// State is an order's lifecycle position: Pending until the downstream first
// reads the detail (or posts a terminal status), Processed afterwards.
type State string

const (
	StatePending   State = "PENDING"
	StateProcessed State = "PROCESSED"
)

// IntegrationStatus is the last status the downstream posted for an order.
type IntegrationStatus struct {
	Status    string `json:"status"`
	FullCode  string `json:"fullCode"`
	Code      string `json:"code"`
	UpdatedAt string `json:"updatedAt"`
}

// Record wraps a canonical order with its lifecycle state.
type Record struct {
	Order      canonical.Order
	State      State
	Status     *IntegrationStatus
	ReceivedAt time.Time
}

// DefaultTerminalStatuses is the status set that migrates a Pending order to
// Processed when posted. It is inferred from upstream naming convention, so
// deployments may override it.
var DefaultTerminalStatuses = []string{
	"CONFIRMED", "DISPATCHED", "DELIVERED", "CONCLUDED", "CANCELLED", "CANCELED",
}

type Store struct {
	mu       sync.RWMutex
	records  map[string]*Record
	pending  []string // Pending ids in insertion order
	terminal map[string]struct{}
	now      func() time.Time
}

func New() *Store {
	return NewWithTerminal(DefaultTerminalStatuses)
}

func NewWithTerminal(statuses []string) *Store {
	s := &Store{
		records:  make(map[string]*Record, 64),
		terminal: make(map[string]struct{}, len(statuses)),
		now:      time.Now,
	}
	for _, st := range statuses {
		if t := strings.ToUpper(strings.TrimSpace(st)); t != "" {
			s.terminal[t] = struct{}{}
		}
	}
	return s
}

// Put upserts by order id. A new id is inserted as Pending; a known id keeps
// its state and position and only has its content replaced, so re-ingestion
// never un-does a downstream acknowledgment.
func (s *Store) Put(o canonical.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[o.ID]; ok {
		rec.Order = o
		return
	}
	s.records[o.ID] = &Record{
		Order:      o,
		State:      StatePending,
		ReceivedAt: s.now().UTC(),
	}
	s.pending = append(s.pending, o.ID)
}

// Get looks an order up in either state.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return copyOf(rec), nil
}

// TakeForDetail is Get with claim semantics: the first fetch of a Pending
// order migrates it to Processed. The returned flag reports whether this call
// performed the migration; repeated fetches still succeed but report false.
func (s *Store) TakeForDetail(id string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, false, ErrNotFound
	}
	moved := false
	if rec.State == StatePending {
		rec.State = StateProcessed
		s.removePending(id)
		moved = true
	}
	return copyOf(rec), moved, nil
}

// ListPending snapshots the Pending records in insertion order.
func (s *Store) ListPending() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.pending))
	for _, id := range s.pending {
		if rec, ok := s.records[id]; ok && rec.State == StatePending {
			out = append(out, copyOf(rec))
		}
	}
	return out
}

// ApplyStatus records a downstream-posted status. A terminal status on a
// Pending order migrates it to Processed in the same call.
func (s *Store) ApplyStatus(id, status, fullCode, code string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}

	up := strings.ToUpper(strings.TrimSpace(status))
	rec.Status = &IntegrationStatus{
		Status:    up,
		FullCode:  fullCode,
		Code:      code,
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if _, terminal := s.terminal[up]; terminal && rec.State == StatePending {
		rec.State = StateProcessed
		s.removePending(id)
	}
	return copyOf(rec), nil
}

// Clear empties both states. Administrative use only.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*Record, 64)
	s.pending = nil
}

// Counts reports occupancy per state.
func (s *Store) Counts() (pending, processed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.State == StatePending {
			pending++
		} else {
			processed++
		}
	}
	return pending, processed
}

func (s *Store) removePending(id string) {
	for i, p := range s.pending {
		if p == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

func copyOf(rec *Record) Record {
	out := *rec
	if rec.Status != nil {
		st := *rec.Status
		out.Status = &st
	}
	return out
}
