// Package dedup filters normalized candidates against the fingerprints
// already stored for an account.
package dedup

import (
	"context"
	"fmt"
	"sync"

	"github.com/cleared-dev/bankmint/internal/id"
	"github.com/cleared-dev/bankmint/internal/importer"
)

// Index answers whether a fingerprint is already stored for an account.
type Index interface {
	HasFingerprint(ctx context.Context, accountID, fingerprint string) (bool, error)
}

// Admitted is a candidate that passed the duplicate check.
type Admitted struct {
	importer.Candidate
	Fingerprint string
}

// Result summarizes one Admit call.
type Result struct {
	Admitted   []Admitted
	Duplicates int
}

// CommitFunc persists admitted candidates. It runs while the account lock
// is held, so the fingerprints it stores are visible to the next Admit.
type CommitFunc func(ctx context.Context, admitted []Admitted) error

// Deduplicator serializes check-and-insert per account.
type Deduplicator struct {
	index Index

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Deduplicator over index.
func New(index Index) *Deduplicator {
	return &Deduplicator{index: index, locks: make(map[string]*sync.Mutex)}
}

func (d *Deduplicator) lockFor(accountID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		d.locks[accountID] = l
	}
	return l
}

// Admit drops candidates whose fingerprint is already stored or repeated
// earlier in the batch, then calls commit with the rest. Two overlapping
// uploads to the same account never both pass the check.
func (d *Deduplicator) Admit(ctx context.Context, accountID string, candidates []importer.Candidate, commit CommitFunc) (Result, error) {
	l := d.lockFor(accountID)
	l.Lock()
	defer l.Unlock()

	var res Result
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		fp := id.Fingerprint(accountID, c.Date, c.Amount, c.NormalizedDescription)
		if seen[fp] {
			res.Duplicates++
			continue
		}
		seen[fp] = true

		exists, err := d.index.HasFingerprint(ctx, accountID, fp)
		if err != nil {
			return Result{}, fmt.Errorf("checking fingerprint for row %d: %w", c.Row, err)
		}
		if exists {
			res.Duplicates++
			continue
		}
		res.Admitted = append(res.Admitted, Admitted{Candidate: c, Fingerprint: fp})
	}

	if commit != nil && len(res.Admitted) > 0 {
		if err := commit(ctx, res.Admitted); err != nil {
			return Result{}, fmt.Errorf("committing %d transactions: %w", len(res.Admitted), err)
		}
	}
	return res, nil
}

// MemoryIndex is an in-memory Index.
type MemoryIndex struct {
	mu  sync.RWMutex
	fps map[string]map[string]bool
}

// NewMemoryIndex creates an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{fps: make(map[string]map[string]bool)}
}

// HasFingerprint implements Index.
func (m *MemoryIndex) HasFingerprint(_ context.Context, accountID, fingerprint string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fps[accountID][fingerprint], nil
}

// Add registers fingerprints for an account.
func (m *MemoryIndex) Add(accountID string, fingerprints ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fps[accountID] == nil {
		m.fps[accountID] = make(map[string]bool)
	}
	for _, fp := range fingerprints {
		m.fps[accountID][fp] = true
	}
}

// Commit returns a CommitFunc that registers admitted fingerprints.
func (m *MemoryIndex) Commit(accountID string) CommitFunc {
	return func(_ context.Context, admitted []Admitted) error {
		fps := make([]string, len(admitted))
		for i, a := range admitted {
			fps[i] = a.Fingerprint
		}
		m.Add(accountID, fps...)
		return nil
	}
}
