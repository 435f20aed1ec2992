package extract

import (
	"sync"
	"time"
)

// Tracker follows one file through the queued -> processing ->
// completed/failed lifecycle. Progress only moves forward: a stale or
// repeated milestone is dropped, and nothing changes after a terminal
// state. All methods are safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	fileID   string
	fileName string
	status   Status
	progress int
	errMsg   string
	onUpdate func(Update)
}

// NewTracker starts a tracker in the queued state. onUpdate, if non-nil,
// fires outside the tracker's lock on every accepted transition.
func NewTracker(fileID, fileName string, onUpdate func(Update)) *Tracker {
	t := &Tracker{
		fileID:   fileID,
		fileName: fileName,
		status:   StatusQueued,
		onUpdate: onUpdate,
	}
	t.emit(t.Snapshot())
	return t
}

// Start moves the file from queued to processing at the first milestone.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.status != StatusQueued {
		t.mu.Unlock()
		return
	}
	t.status = StatusProcessing
	t.progress = ProgressStarted
	u := t.snapshotLocked()
	t.mu.Unlock()
	t.emit(u)
}

// Advance records a milestone. Values at or below the current progress and
// values beyond 100 are ignored, as is any call outside processing.
func (t *Tracker) Advance(progress int) {
	t.mu.Lock()
	if t.status != StatusProcessing || progress <= t.progress || progress > 100 {
		t.mu.Unlock()
		return
	}
	t.progress = progress
	u := t.snapshotLocked()
	t.mu.Unlock()
	t.emit(u)
}

// Complete marks the file done at 100%.
func (t *Tracker) Complete() {
	t.mu.Lock()
	if t.terminalLocked() {
		t.mu.Unlock()
		return
	}
	t.status = StatusCompleted
	t.progress = 100
	u := t.snapshotLocked()
	t.mu.Unlock()
	t.emit(u)
}

// Fail marks the file failed, freezing progress where it was.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	if t.terminalLocked() {
		t.mu.Unlock()
		return
	}
	t.status = StatusFailed
	if err != nil {
		t.errMsg = err.Error()
	}
	u := t.snapshotLocked()
	t.mu.Unlock()
	t.emit(u)
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Update {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) terminalLocked() bool {
	return t.status == StatusCompleted || t.status == StatusFailed
}

func (t *Tracker) snapshotLocked() Update {
	return Update{
		FileID:   t.fileID,
		FileName: t.fileName,
		Status:   t.status,
		Progress: t.progress,
		Error:    t.errMsg,
		At:       time.Now(),
	}
}

func (t *Tracker) emit(u Update) {
	if t.onUpdate != nil {
		t.onUpdate(u)
	}
}
