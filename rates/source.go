package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"

	swap "go-token-swap"
	"go-token-swap/feed"
)

// Source owns the current rate table. It is the single writer: Load replaces
// the snapshot wholesale, readers see either the old table or the fully-new
// one. Everything else reads through Table or RateOf.
type Source struct {
	// feed to fetch raw price observations from
	feed feed.Service

	// defaultFrom / defaultTo seed new tables with the configured defaults
	defaultFrom swap.Symbol
	defaultTo   swap.Symbol

	// lock synchronizes snapshot replacement against readers
	lock sync.RWMutex

	// table the current snapshot, nil until the first successful load
	table *Table

	// loadErr the error from the most recent failed load, nil after success
	loadErr error

	logger log.Logger
}

// NewSource constructs a valid Source. The table is empty until Load
// succeeds for the first time.
func NewSource(f feed.Service, defaultFrom, defaultTo swap.Symbol, logger log.Logger) *Source {
	return &Source{
		feed:        f,
		defaultFrom: defaultFrom,
		defaultTo:   defaultTo,
		logger:      logger,
	}
}

// Load fetches one batch of observations, aggregates it and swaps the new
// table in. On failure the previous snapshot, if any, is kept and the error
// is recorded for callers that need to surface it.
func (s *Source) Load(ctx context.Context) error {
	observations, err := s.feed.Prices(ctx)
	if err != nil {
		s.lock.Lock()
		s.loadErr = err
		s.lock.Unlock()
		return fmt.Errorf("loading rates: %w", err)
	}

	table := NewTable(Aggregate(observations), s.defaultFrom, s.defaultTo)

	s.lock.Lock()
	s.table = table
	s.loadErr = nil
	s.lock.Unlock()

	s.logger.Log("msg", "rate table replaced", "tokens", len(table.tokens))
	return nil
}

// Table returns the current snapshot. ok is false until the first
// successful load.
func (s *Source) Table() (*Table, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.table, s.table != nil
}

// LoadError reports the most recent load failure, nil if the last load
// succeeded or no load has run yet.
func (s *Source) LoadError() error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.loadErr
}

// RateOf looks up a rate in the current snapshot.
func (s *Source) RateOf(symbol swap.Symbol) (swap.Rate, bool) {
	table, ok := s.Table()
	if !ok {
		return 0, false
	}
	return table.RateOf(symbol)
}

// RefreshPeriodically reloads the table on a fixed schedule until ctx is
// cancelled. This is expected to be called from a go-routine.
func (s *Source) RefreshPeriodically(ctx context.Context, every time.Duration) {
	for {
		select {
		case <-time.After(every):
			err := s.Load(ctx)
			if err != nil {
				// Don't return, just log and hope this is a transient error
				s.logger.Log("msg", "periodic refresh failed", "err", err)
			}
		case <-ctx.Done():
			s.logger.Log("msg", "shutting down periodic refresh")
			return
		}
	}
}
