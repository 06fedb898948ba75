package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/roach88/bookshelf/internal/catalog"
	"github.com/roach88/bookshelf/internal/source"
	"github.com/roach88/bookshelf/internal/store"
)

// session is one CLI invocation's catalog store and preference database.
type session struct {
	catalog *catalog.Store
	prefs   *store.Store
	logger  *slog.Logger

	// loadErr is the outcome of the initial load; set before openSession returns.
	loadErr error
}

// newLogger builds the diagnostic logger. Verbose enables debug level.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openSession opens the preference database, constructs the catalog store and
// waits for its initial load. Errors are reported through f.
func openSession(cmd *cobra.Command, opts *RootOptions, f *OutputFormatter) (*session, error) {
	logger := newLogger(opts.Verbose, cmd.ErrOrStderr())

	tag, err := language.Parse(opts.Locale)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeInvalidLocale, fmt.Sprintf("invalid locale %q", opts.Locale), err)
	}

	prefs, err := store.Open(opts.Database)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStorage, "failed to open database", err)
	}

	s := &session{prefs: prefs, logger: logger}
	st, err := catalog.New(commandContext(cmd), source.Open(opts.Source, nil), prefs,
		catalog.WithLogger(logger),
		catalog.WithLocale(tag),
		catalog.WithLoadTimeout(opts.Timeout),
		catalog.WithLoadHook(func(o catalog.LoadOutcome) {
			s.loadErr = o.Err
		}),
	)
	if err != nil {
		prefs.Close()
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, "failed to create catalog", err)
	}
	s.catalog = st

	// Only the initial background load runs here; Wait orders the hook's
	// write to loadErr before our reads.
	st.Wait()
	f.VerboseLog("catalog ready: %d books, sorted by %s", st.BooksTotal(), st.CurrentSort())
	return s, nil
}

func (s *session) Close() {
	if err := s.catalog.Close(); err != nil {
		s.logger.Error("error closing catalog", "error", err)
	}
	if err := s.prefs.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// requireLoaded reports a failed initial load.
func (s *session) requireLoaded(f *OutputFormatter) error {
	if s.loadErr != nil {
		return f.Fail(ExitFailure, ErrCodeLoadFailed, "failed to load books", s.loadErr)
	}
	return nil
}
