package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Manager hands out capture sessions and enforces that at most one device
// is active at a time. Acquiring a new session releases the prior one, so
// the underlying stream is never shared.
type Manager struct {
	mu      sync.Mutex
	current *Session
	logger  *zap.Logger
}

// NewManager creates a Manager. A nil logger is replaced with a no-op one.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// Acquire opens dev and returns a session owning it. A previously active
// session is closed first.
func (m *Manager) Acquire(ctx context.Context, dev Device) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.logger.Info("releasing prior capture session")
		if err := m.current.close(); err != nil {
			m.logger.Warn("prior capture session close failed", zap.Error(err))
		}
		m.current = nil
	}

	if err := dev.Open(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceAccessDenied, err)
	}

	session := &Session{device: dev, manager: m}
	m.current = session
	return session, nil
}

// CaptureFrame runs a full acquire, capture, release cycle for a single
// frame. The device is released on every path.
func (m *Manager) CaptureFrame(ctx context.Context, dev Device) (Frame, error) {
	session, err := m.Acquire(ctx, dev)
	if err != nil {
		return Frame{}, err
	}
	defer session.Close()

	return session.Capture(ctx)
}

// Active reports whether a session currently owns a device.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// release clears the active slot if s still owns it.
func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == s {
		m.current = nil
	}
}

// Session is exclusive ownership of an open device.
type Session struct {
	device  Device
	manager *Manager

	mu     sync.Mutex
	closed bool
}

// Capture grabs a single frame from the owned device.
func (s *Session) Capture(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return Frame{}, errors.New("capture session is closed")
	}
	return s.device.Frame(ctx)
}

// Close releases the device and frees the manager's active slot. Calling
// it again is a no-op.
func (s *Session) Close() error {
	err := s.close()
	s.manager.release(s)
	return err
}

// close shuts the device without touching the manager, so Acquire can call
// it while holding the manager lock.
func (s *Session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.device.Close()
}
