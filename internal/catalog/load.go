package catalog

import (
	"context"
	"errors"
)

// LoadServerData starts a background load and returns immediately.
// Failures are logged; use WithLoadHook or Wait to observe completion.
func (s *Store) LoadServerData() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.loads.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.loads.Done()
		_ = s.Load(s.ctx)
	}()
}

// Wait blocks until every background load started so far has returned.
func (s *Store) Wait() {
	s.loads.Wait()
}

// Load fetches the full book list and replaces all entities with it.
//
// Loads are switch-latest: starting a load cancels the one in flight, and a
// result is applied only if no newer load was started meanwhile. A discarded
// result returns ErrSuperseded. A fetch failure leaves the state unchanged,
// is logged and returned as *FetchError.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	seq := s.clock.Next()
	s.latest = seq
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	s.mu.Unlock()

	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	if s.loadTimeout > 0 {
		var cancelTimeout context.CancelFunc
		loadCtx, cancelTimeout = context.WithTimeout(loadCtx, s.loadTimeout)
		defer cancelTimeout()
	}

	token := s.tokens.Generate()
	log := s.logger.With("load_token", token, "seq", seq)
	log.Debug("loading books")

	books, fetchErr := s.source.FetchAll(loadCtx)

	_, err := s.patch(func(st *State) error {
		if seq != s.latest {
			return ErrSuperseded
		}
		if fetchErr != nil {
			return &FetchError{Token: token, Seq: seq, Err: fetchErr}
		}
		st.Entities = indexBooks(books)
		return nil
	})

	switch {
	case errors.Is(err, ErrSuperseded):
		log.Debug("discarding superseded load", "error", fetchErr)
		return err
	case err != nil:
		log.Error("failed to load books", "error", err)
	default:
		log.Info("books loaded", "count", len(books))
	}

	if s.loadHook != nil {
		s.loadHook(LoadOutcome{Token: token, Seq: seq, Count: len(books), Err: err})
	}
	return err
}
