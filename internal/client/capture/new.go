package capture

import "fmt"

// Options select a camera implementation. ImagePath wins over Command;
// an empty Command falls back to DefaultCommand(Device).
type Options struct {
	ImagePath string
	Command   []string
	Device    string
}

func New(opts Options) (Camera, error) {
	if opts.ImagePath != "" {
		return NewFileCamera(opts.ImagePath), nil
	}
	if len(opts.Command) > 0 {
		return NewCommandCamera(opts.Command), nil
	}
	if opts.Device != "" {
		return NewCommandCamera(DefaultCommand(opts.Device)), nil
	}
	return nil, &Error{Op: "open", Err: fmt.Errorf("%w: no camera configured", ErrUnavailable)}
}
