package models

// Frame is a single JPEG still taken from a camera. It is submitted once
// and then dropped.
type Frame struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Size returns the encoded size in bytes.
func (f *Frame) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}
