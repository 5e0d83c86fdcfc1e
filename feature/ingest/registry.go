package ingest

import (
	"sync"
	"time"
)

// RunState is the lifecycle state of a store's sync run.
type RunState string

const (
	// RunStateIdle means no sync has been requested for the store yet.
	RunStateIdle RunState = "idle"
	// RunStateRunning means a sync is currently executing.
	RunStateRunning RunState = "running"
	// RunStateCompleted means the last sync finished without a terminal error.
	RunStateCompleted RunState = "completed"
	// RunStateFailed means the last sync aborted.
	RunStateFailed RunState = "failed"
)

// RunStatus is the externally visible record of a store's last/current run.
// Detached runs are only observable through this record and the logs.
type RunStatus struct {
	StoreID    string     `json:"store_id"`
	State      RunState   `json:"state"`
	StartedAt  time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Report     *Report    `json:"report,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// runRegistry tracks at most one run per store and retains the terminal
// status of the last run until the next one begins. It is the mutual
// exclusion point that keeps two syncs for the same store from overlapping.
type runRegistry struct {
	mu   sync.Mutex
	runs map[string]*RunStatus
}

func newRunRegistry() *runRegistry {
	return &runRegistry{runs: make(map[string]*RunStatus)}
}

// begin transitions the store to running, rejecting the request when a run
// is already in flight.
func (r *runRegistry) begin(storeID string) (*RunStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.runs[storeID]; ok && current.State == RunStateRunning {
		return nil, ErrSyncInProgress
	}

	status := &RunStatus{
		StoreID:   storeID,
		State:     RunStateRunning,
		StartedAt: time.Now().UTC(),
	}
	r.runs[storeID] = status
	return copyStatus(status), nil
}

// finish records the terminal state of the store's run.
func (r *runRegistry) finish(storeID string, report *Report, runErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.runs[storeID]
	if !ok {
		return
	}

	now := time.Now().UTC()
	status.FinishedAt = &now
	status.Report = report
	if runErr != nil {
		status.State = RunStateFailed
		status.Error = runErr.Error()
	} else {
		status.State = RunStateCompleted
	}
}

// status returns a copy of the store's run record, or an idle record when
// the store has never synced.
func (r *runRegistry) status(storeID string) *RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	if status, ok := r.runs[storeID]; ok {
		return copyStatus(status)
	}
	return &RunStatus{StoreID: storeID, State: RunStateIdle}
}

func copyStatus(status *RunStatus) *RunStatus {
	out := *status
	return &out
}
