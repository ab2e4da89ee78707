// Package session publishes a logged-in session to the client's local
// stores. Each store is a Sink; which sinks receive a session depends only
// on the user's role (see SinksFor).
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/coachlogin/internal/client/models"
	"github.com/dmitrijs2005/coachlogin/internal/logging"
)

type Sink interface {
	Name() string
	// Write stores the session. A failed Write leaves the sink unchanged.
	Write(ctx context.Context, s *models.Session) error
	// Clear removes whatever Write stored.
	Clear(ctx context.Context) error
}

// SinksFor returns the sinks a session is written to. Client-role users get
// the cookie mirror as well; everyone else only the durable store.
func SinksFor(isClient bool, durable, cookie Sink) []Sink {
	if isClient {
		return []Sink{durable, cookie}
	}
	return []Sink{durable}
}

// WriteError names the sink that failed.
type WriteError struct {
	Sink string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write session to %s: %v", e.Sink, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer writes a session to every sink its role selects. Either all of
// them end up holding the session or none does: when a sink fails, the ones
// already written are cleared again.
type Writer struct {
	durable Sink
	cookie  Sink
	log     logging.Logger
}

func NewWriter(durable, cookie Sink, log logging.Logger) *Writer {
	return &Writer{durable: durable, cookie: cookie, log: log}
}

// Write returns the names of the sinks written. Sinks the role does not
// select are cleared, so a previous session cannot linger in them.
func (w *Writer) Write(ctx context.Context, s *models.Session) ([]string, error) {
	sinks := SinksFor(s.IsClient, w.durable, w.cookie)
	written := make([]Sink, 0, len(sinks))

	for _, sink := range sinks {
		if err := sink.Write(ctx, s); err != nil {
			w.rollback(ctx, written)
			return nil, &WriteError{Sink: sink.Name(), Err: err}
		}
		written = append(written, sink)
	}

	for _, sink := range unselected(sinks, w.durable, w.cookie) {
		if err := sink.Clear(ctx); err != nil {
			w.rollback(ctx, written)
			return nil, &WriteError{Sink: sink.Name(), Err: fmt.Errorf("clear stale session: %w", err)}
		}
	}

	names := make([]string, 0, len(written))
	for _, sink := range written {
		names = append(names, sink.Name())
	}
	return names, nil
}

// Clear removes the session from every sink, whatever the role.
func (w *Writer) Clear(ctx context.Context) error {
	var errs []error
	for _, sink := range []Sink{w.durable, w.cookie} {
		if err := sink.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func unselected(selected []Sink, all ...Sink) []Sink {
	var out []Sink
	for _, sink := range all {
		found := false
		for _, sel := range selected {
			if sel == sink {
				found = true
				break
			}
		}
		if !found {
			out = append(out, sink)
		}
	}
	return out
}

func (w *Writer) rollback(ctx context.Context, written []Sink) {
	// Compensation must run even if the action was cancelled.
	ctx = context.WithoutCancel(ctx)
	for i := len(written) - 1; i >= 0; i-- {
		if err := written[i].Clear(ctx); err != nil {
			w.log.Error(ctx, "session rollback failed", "sink", written[i].Name(), "error", err)
		}
	}
}
