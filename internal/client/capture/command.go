package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/dmitrijs2005/coachlogin/internal/client/models"
)

// DefaultCommand grabs one MJPEG frame from a V4L2 device with ffmpeg.
func DefaultCommand(device string) []string {
	return []string{"ffmpeg", "-loglevel", "error", "-f", "v4l2", "-i", device, "-frames:v", "1", "-f", "mjpeg", "-"}
}

// CommandCamera runs an external capture program per snapshot and reads the
// JPEG it writes to stdout.
type CommandCamera struct {
	name string
	args []string

	mu     sync.Mutex
	opened bool
}

var _ Camera = (*CommandCamera)(nil)

func NewCommandCamera(argv []string) *CommandCamera {
	c := &CommandCamera{}
	if len(argv) > 0 {
		c.name, c.args = argv[0], argv[1:]
	}
	return c
}

func (c *CommandCamera) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "open", Err: err}
	}
	if c.name == "" {
		return &Error{Op: "open", Err: fmt.Errorf("%w: no capture command", ErrUnavailable)}
	}
	if _, err := exec.LookPath(c.name); err != nil {
		return &Error{Op: "open", Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	c.mu.Lock()
	c.opened = true
	c.mu.Unlock()
	return nil
}

func (c *CommandCamera) Snapshot(ctx context.Context) (*models.Frame, error) {
	c.mu.Lock()
	opened := c.opened
	c.mu.Unlock()
	if !opened {
		return nil, &Error{Op: "snapshot", Err: ErrNotReady}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &Error{Op: "snapshot", Err: ctxErr}
		}
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && msg != "" {
			return nil, &Error{Op: "snapshot", Err: fmt.Errorf("%w: %s", ErrUnavailable, msg)}
		}
		return nil, &Error{Op: "snapshot", Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}

	frame, err := DecodeFrame(stdout.Bytes())
	if err != nil {
		return nil, &Error{Op: "snapshot", Err: err}
	}
	return frame, nil
}

func (c *CommandCamera) Close() error {
	c.mu.Lock()
	c.opened = false
	c.mu.Unlock()
	return nil
}
