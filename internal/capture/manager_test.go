package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	frames  []Frame
	openErr error
	opens   int
	closes  int
}

func (d *fakeDevice) Open(_ context.Context) error {
	d.opens++
	return d.openErr
}

func (d *fakeDevice) Frame(_ context.Context) (Frame, error) {
	if len(d.frames) == 0 {
		return Frame{}, ErrNoFrame
	}
	frame := d.frames[0]
	d.frames = d.frames[1:]
	return frame, nil
}

func (d *fakeDevice) Close() error {
	d.closes++
	return nil
}

func TestManagerAcquireAndCapture(t *testing.T) {
	dev := &fakeDevice{frames: []Frame{{Name: "frame.png", Data: []byte{1}}}}
	m := NewManager(nil)

	session, err := m.Acquire(context.Background(), dev)
	require.NoError(t, err)
	assert.True(t, m.Active())

	frame, err := session.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "frame.png", frame.Name)

	require.NoError(t, session.Close())
	assert.Equal(t, 1, dev.closes)
	assert.False(t, m.Active())
}

func TestManagerSecondAcquireReleasesFirst(t *testing.T) {
	first := &fakeDevice{}
	second := &fakeDevice{}
	m := NewManager(nil)

	sessionA, err := m.Acquire(context.Background(), first)
	require.NoError(t, err)

	_, err = m.Acquire(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, 1, first.closes, "prior device must be released")

	_, err = sessionA.Capture(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")

	// Closing the stale session must not close its device twice or evict
	// the new session.
	require.NoError(t, sessionA.Close())
	assert.Equal(t, 1, first.closes)
	assert.True(t, m.Active())
}

func TestManagerAcquireOpenFailure(t *testing.T) {
	dev := &fakeDevice{openErr: errors.New("camera busy")}
	m := NewManager(nil)

	_, err := m.Acquire(context.Background(), dev)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDeviceAccessDenied))
	assert.Contains(t, err.Error(), "camera busy")
	assert.False(t, m.Active())
}

func TestManagerCaptureFrameReleasesOnEveryPath(t *testing.T) {
	dev := &fakeDevice{frames: []Frame{{Name: "a.png"}}}
	m := NewManager(nil)

	frame, err := m.CaptureFrame(context.Background(), dev)
	require.NoError(t, err)
	assert.Equal(t, "a.png", frame.Name)
	assert.Equal(t, 1, dev.closes)
	assert.False(t, m.Active())

	// Device is now empty, so capture fails, but the release still runs.
	_, err = m.CaptureFrame(context.Background(), dev)
	require.Error(t, err)
	assert.Equal(t, 2, dev.closes)
	assert.False(t, m.Active())
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	dev := &fakeDevice{}
	m := NewManager(nil)

	session, err := m.Acquire(context.Background(), dev)
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	assert.Equal(t, 1, dev.closes)
}

func TestStaticDevice(t *testing.T) {
	dev := NewStaticDevice(
		Frame{Name: "a.png", Data: []byte{1}},
		Frame{Name: "b.png", Data: []byte{2}},
	)

	_, err := dev.Frame(context.Background())
	require.Error(t, err, "frame before open must fail")

	require.NoError(t, dev.Open(context.Background()))

	first, err := dev.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a.png", first.Name)

	second, err := dev.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b.png", second.Name)

	_, err = dev.Frame(context.Background())
	assert.True(t, errors.Is(err, ErrNoFrame))

	require.NoError(t, dev.Close())
}
