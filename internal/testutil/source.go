package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/roach88/bookshelf/internal/catalog"
)

// GatedSource is a catalog.Source whose fetches block until the test
// answers them. It lets tests control completion order of concurrent loads.
type GatedSource struct {
	// IgnoreCancel makes fetches wait for Respond even after their context
	// is cancelled, simulating a service that answers late.
	IgnoreCancel bool

	mu      sync.Mutex
	calls   []*Call
	started chan *Call
}

// Call is one pending FetchAll.
type Call struct {
	Index   int
	Ctx     context.Context
	respond chan fetchResult
}

type fetchResult struct {
	books []catalog.Book
	err   error
}

// NewGatedSource creates a GatedSource.
func NewGatedSource() *GatedSource {
	return &GatedSource{started: make(chan *Call, 64)}
}

// FetchAll implements catalog.Source.
func (g *GatedSource) FetchAll(ctx context.Context) ([]catalog.Book, error) {
	g.mu.Lock()
	call := &Call{Index: len(g.calls), Ctx: ctx, respond: make(chan fetchResult, 1)}
	g.calls = append(g.calls, call)
	g.mu.Unlock()

	g.started <- call

	if g.IgnoreCancel {
		r := <-call.respond
		return r.books, r.err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-call.respond:
		return r.books, r.err
	}
}

// Respond completes the call. Only the first response is used.
func (c *Call) Respond(books []catalog.Book, err error) {
	select {
	case c.respond <- fetchResult{books: books, err: err}:
	default:
	}
}

// Next waits for the next FetchAll to start and returns it.
func (g *GatedSource) Next(t testing.TB) *Call {
	t.Helper()
	select {
	case call := <-g.started:
		return call
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for fetch to start")
		return nil
	}
}

// Calls returns how many fetches have started.
func (g *GatedSource) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// FuncSource adapts a function to catalog.Source.
type FuncSource func(ctx context.Context) ([]catalog.Book, error)

// FetchAll implements catalog.Source.
func (f FuncSource) FetchAll(ctx context.Context) ([]catalog.Book, error) {
	return f(ctx)
}
