package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 200 * time.Millisecond

// Extensions the spool watcher picks up (lowercase, without '.').
var spoolExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"bmp":  {},
	"tif":  {},
	"tiff": {},
	"webp": {},
}

// SpoolConfig controls a SpoolDevice.
type SpoolConfig struct {
	// Dir is the hot folder to watch. It must exist when the device opens.
	Dir string
	// Debounce coalesces rapid write bursts for a file before it is read.
	// Defaults to 200ms.
	Debounce time.Duration
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// SpoolDevice is a scanner hot-folder: it watches a directory and delivers
// each newly written image file as a frame. Files with other extensions
// are ignored.
type SpoolDevice struct {
	dir      string
	debounce time.Duration
	logger   *zap.Logger

	watcher   *fsnotify.Watcher
	frames    chan Frame
	done      chan struct{}
	closeOnce sync.Once
}

// NewSpoolDevice creates a spool device from cfg, filling in defaults.
func NewSpoolDevice(cfg SpoolConfig) *SpoolDevice {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpoolDevice{dir: cfg.Dir, debounce: debounce, logger: logger}
}

// Open starts watching the spool directory.
func (d *SpoolDevice) Open(_ context.Context) error {
	info, err := os.Stat(d.dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("spool directory is not accessible: %s", d.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create spool watcher: %w", err)
	}
	if err := watcher.Add(d.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", d.dir, err)
	}

	d.watcher = watcher
	d.frames = make(chan Frame, 16)
	d.done = make(chan struct{})
	go d.watch()

	d.logger.Info("spool device watching", zap.String("dir", d.dir))
	return nil
}

// Frame blocks until the spool delivers a frame, the device closes, or ctx
// ends.
func (d *SpoolDevice) Frame(ctx context.Context) (Frame, error) {
	if d.frames == nil {
		return Frame{}, errors.New("spool device is not open")
	}
	select {
	case frame := <-d.frames:
		return frame, nil
	case <-d.done:
		return Frame{}, ErrNoFrame
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Close stops the watcher. Safe to call more than once.
func (d *SpoolDevice) Close() error {
	d.closeOnce.Do(func() {
		if d.done != nil {
			close(d.done)
		}
	})
	return nil
}

// watch owns the pending set: all event handling and debounced flushing
// happen on this goroutine.
func (d *SpoolDevice) watch() {
	defer d.watcher.Close()

	pending := map[string]struct{}{}
	timer := time.NewTimer(d.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-d.done:
			return
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if !allowedFrame(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			pending[event.Name] = struct{}{}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(d.debounce)
		case <-timer.C:
			for path := range pending {
				delete(pending, path)
				d.emit(path)
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn("spool watcher error", zap.Error(err))
		}
	}
}

// emit reads the spooled file and queues it as a frame. Unreadable or
// still-empty files are skipped.
func (d *SpoolDevice) emit(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		d.logger.Warn("spool file unreadable", zap.String("path", path), zap.Error(err))
		return
	}
	if len(data) == 0 {
		return
	}

	frame := Frame{Name: filepath.Base(path), Data: data, CapturedAt: time.Now()}
	select {
	case d.frames <- frame:
	default:
		d.logger.Warn("spool frame dropped: consumer too slow", zap.String("path", path))
	}
}

func allowedFrame(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	_, ok := spoolExtensions[ext]
	return ok
}
