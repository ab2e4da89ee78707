package capture

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/coachlogin/internal/client/models"
)

// FileCamera serves the JPEG at a fixed path on every snapshot. It stands in
// for a device when the still comes from another tool.
type FileCamera struct {
	path string

	mu     sync.Mutex
	opened bool
}

var _ Camera = (*FileCamera)(nil)

func NewFileCamera(path string) *FileCamera {
	return &FileCamera{path: path}
}

func (c *FileCamera) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "open", Err: err}
	}
	if _, err := os.Stat(c.path); err != nil {
		return &Error{Op: "open", Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	c.mu.Lock()
	c.opened = true
	c.mu.Unlock()
	return nil
}

func (c *FileCamera) Snapshot(ctx context.Context) (*models.Frame, error) {
	c.mu.Lock()
	opened := c.opened
	c.mu.Unlock()
	if !opened {
		return nil, &Error{Op: "snapshot", Err: ErrNotReady}
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "snapshot", Err: err}
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, &Error{Op: "snapshot", Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	frame, err := DecodeFrame(data)
	if err != nil {
		return nil, &Error{Op: "snapshot", Err: err}
	}
	return frame, nil
}

func (c *FileCamera) Close() error {
	c.mu.Lock()
	c.opened = false
	c.mu.Unlock()
	return nil
}
