package config

import (
	"fmt"
	"sync/atomic"

	"github.com/macropower/pasteflow/api/v1beta1/configs"
	"github.com/macropower/pasteflow/pkg/rule"
)

// Store holds the active [configs.Configuration].
//
// Snapshots returned by [Store.Load] are never mutated: [Store.Update]
// applies changes to a clone and swaps it in.
type Store struct {
	current atomic.Pointer[configs.Configuration]
}

// NewStore creates a [Store] holding cfg.
func NewStore(cfg *configs.Configuration) *Store {
	s := &Store{}
	s.current.Store(cfg)

	return s
}

// Load returns the current snapshot.
func (s *Store) Load() *configs.Configuration {
	return s.current.Load()
}

// Swap replaces the current snapshot with cfg and returns the previous one.
func (s *Store) Swap(cfg *configs.Configuration) *configs.Configuration {
	return s.current.Swap(cfg)
}

// Update applies fn to a clone of the current snapshot and stores the
// result. If fn returns an error, the store is unchanged. Concurrent
// updates are retried against the newer snapshot.
func (s *Store) Update(fn func(*configs.Configuration) error) (*configs.Configuration, error) {
	for {
		old := s.current.Load()
		next := old.Clone()

		err := fn(next)
		if err != nil {
			return old, err
		}

		if s.current.CompareAndSwap(old, next) {
			return next, nil
		}
	}
}

// SetAutoAccept sets the auto-accept flag of a rule in a new snapshot.
func (s *Store) SetAutoAccept(id string, enabled bool) (*configs.Configuration, error) {
	return s.Update(func(c *configs.Configuration) error {
		if !c.SetAutoAccept(id, enabled) {
			return fmt.Errorf("%w: %q", ErrRuleNotFound, id)
		}

		return nil
	})
}

// Rules returns the rules of the current snapshot.
func (s *Store) Rules() []*rule.Rule {
	return s.Load().Rules
}

// Limit returns the suggestion limit of the current snapshot.
func (s *Store) Limit() int {
	return s.Load().Limit()
}
