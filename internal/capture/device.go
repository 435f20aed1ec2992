// Package capture acquires image frames from an exclusively owned device
// and feeds them to the extraction pipeline as in-memory uploads.
package capture

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrDeviceAccessDenied means the device could not be opened.
	ErrDeviceAccessDenied = errors.New("device access denied")

	// ErrNoFrame means the device has no frame to deliver.
	ErrNoFrame = errors.New("no frame available")
)

// Frame is a single captured image. Name carries an image extension so the
// extraction pipeline can route the frame like an uploaded file.
type Frame struct {
	Name       string
	Data       []byte
	CapturedAt time.Time
}

// Device produces image frames. Open prepares the underlying resource,
// Frame blocks until a frame is available or ctx ends, and Close releases
// the resource. Close must be called on every exit path.
type Device interface {
	Open(ctx context.Context) error
	Frame(ctx context.Context) (Frame, error)
	Close() error
}

// StaticDevice serves a fixed list of frames in order. It backs tests and
// the command line's file-fed capture mode.
type StaticDevice struct {
	mu     sync.Mutex
	frames []Frame
	open   bool
}

// NewStaticDevice creates a device that will deliver the given frames.
func NewStaticDevice(frames ...Frame) *StaticDevice {
	return &StaticDevice{frames: frames}
}

func (d *StaticDevice) Open(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	return nil
}

func (d *StaticDevice) Frame(_ context.Context) (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return Frame{}, errors.New("device is not open")
	}
	if len(d.frames) == 0 {
		return Frame{}, ErrNoFrame
	}
	frame := d.frames[0]
	d.frames = d.frames[1:]
	return frame, nil
}

func (d *StaticDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return nil
}
