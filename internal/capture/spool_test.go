package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpoolDeviceDeliversWrittenImage(t *testing.T) {
	dir := t.TempDir()
	dev := NewSpoolDevice(SpoolConfig{Dir: dir, Debounce: 20 * time.Millisecond})
	require.NoError(t, dev.Open(context.Background()))
	defer dev.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.png"), []byte("pixels"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frame, err := dev.Frame(ctx)
	require.NoError(t, err)
	assert.Equal(t, "scan.png", frame.Name)
	assert.Equal(t, []byte("pixels"), frame.Data)
	assert.False(t, frame.CapturedAt.IsZero())
}

func TestSpoolDeviceIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	dev := NewSpoolDevice(SpoolConfig{Dir: dir, Debounce: 20 * time.Millisecond})
	require.NoError(t, dev.Open(context.Background()))
	defer dev.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.jpg"), []byte("keep"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frame, err := dev.Frame(ctx)
	require.NoError(t, err)
	assert.Equal(t, "page.jpg", frame.Name)
}

func TestSpoolDeviceOpenMissingDir(t *testing.T) {
	dev := NewSpoolDevice(SpoolConfig{Dir: filepath.Join(t.TempDir(), "missing")})

	err := dev.Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not accessible")

	// Through the manager the failure maps to the access-denied category.
	_, err = NewManager(nil).Acquire(context.Background(), dev)
	assert.True(t, errors.Is(err, ErrDeviceAccessDenied))
}

func TestSpoolDeviceFrameBeforeOpen(t *testing.T) {
	dev := NewSpoolDevice(SpoolConfig{Dir: t.TempDir()})

	_, err := dev.Frame(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not open")
}

func TestSpoolDeviceFrameAfterClose(t *testing.T) {
	dev := NewSpoolDevice(SpoolConfig{Dir: t.TempDir()})
	require.NoError(t, dev.Open(context.Background()))
	require.NoError(t, dev.Close())

	_, err := dev.Frame(context.Background())
	assert.True(t, errors.Is(err, ErrNoFrame))
}

func TestSpoolDeviceFrameHonorsContext(t *testing.T) {
	dev := NewSpoolDevice(SpoolConfig{Dir: t.TempDir()})
	require.NoError(t, dev.Open(context.Background()))
	defer dev.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dev.Frame(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
