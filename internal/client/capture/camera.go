// Package capture acquires single JPEG stills for face login.
//
// A Camera is opened when the face dialog opens and closed when it closes.
// Every failure to obtain a frame is reported as *Error, which is never a
// network error: callers can tell "the camera did not give us a picture"
// apart from "the server did not accept it".
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"

	"github.com/dmitrijs2005/coachlogin/internal/client/models"
)

const ContentTypeJPEG = "image/jpeg"

var (
	ErrNotReady     = errors.New("camera not ready")
	ErrUnavailable  = errors.New("camera unavailable")
	ErrInvalidFrame = errors.New("invalid frame")
)

// Error is a capture failure. Op is "open" or "snapshot".
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCaptureError reports whether err came from a camera.
func IsCaptureError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

type Camera interface {
	Open(ctx context.Context) error
	Snapshot(ctx context.Context) (*models.Frame, error)
	Close() error
}

// DecodeFrame checks that data is a JPEG and wraps it in a Frame.
func DecodeFrame(data []byte) (*models.Frame, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidFrame)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	return &models.Frame{
		Data:        data,
		ContentType: ContentTypeJPEG,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
