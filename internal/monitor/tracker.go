package monitor

import (
	"sync"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/models"
)

// HealthTick is one periodic observation of a branch
type HealthTick struct {
	BranchCode string
	NetworkOk  bool
	DatabaseOk bool
	Detail     string
}

// Healthy reports whether both checks passed
func (t HealthTick) Healthy() bool {
	return t.NetworkOk && t.DatabaseOk
}

// errorKindFor classifies a failing tick
func errorKindFor(t HealthTick) string {
	switch {
	case !t.NetworkOk && !t.DatabaseOk:
		return models.ErrorKindBoth
	case !t.NetworkOk:
		return models.ErrorKindNetwork
	case !t.DatabaseOk:
		return models.ErrorKindDatabase
	default:
		return models.ErrorKindUnknown
	}
}

// Decision is the outcome of observing one tick
type Decision struct {
	// SendCritical means the outage crossed the critical threshold and the
	// repeat throttle allows another notification
	SendCritical bool
	// SendRecovery means the branch came back after a critical-length outage
	SendRecovery bool
	// Changed means the persisted state for this branch must be upserted
	Changed bool
	// Cleared means the persisted state for this branch must be deleted
	Cleared bool
	// State is a copy of the tracked state after the tick (zero when Cleared
	// and the branch was healthy all along)
	State          models.BranchMonitorState
	OutageDuration time.Duration
}

// Tracker is the per-branch outage state machine. It holds its map
// explicitly and takes its clock by injection, so thresholds and time are
// fully controllable in tests. Transient blips shorter than the critical
// threshold never alert, and sustained outages are throttled to one
// notification per repeat threshold.
type Tracker struct {
	mu                sync.Mutex
	states            map[string]*models.BranchMonitorState
	clock             func() time.Time
	criticalThreshold time.Duration
	repeatThreshold   time.Duration
}

// NewTracker creates a Tracker with the given thresholds
func NewTracker(criticalThreshold, repeatThreshold time.Duration, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		states:            make(map[string]*models.BranchMonitorState),
		clock:             clock,
		criticalThreshold: criticalThreshold,
		repeatThreshold:   repeatThreshold,
	}
}

// Restore seeds the tracker from persisted state (service restart). Outage
// timers continue from their persisted ProblemStartedAt.
func (tr *Tracker) Restore(states []models.BranchMonitorState) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for i := range states {
		s := states[i]
		tr.states[s.BranchCode] = &s
	}
}

// Observe processes one health tick and decides what to do about it
func (tr *Tracker) Observe(tick HealthTick) Decision {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	now := tr.clock()
	state, tracked := tr.states[tick.BranchCode]

	if tick.Healthy() {
		if !tracked {
			return Decision{}
		}
		// Recovered: emit a recovery notice only if the outage was long
		// enough to have mattered, then forget the branch either way
		outage := now.Sub(state.ProblemStartedAt)
		delete(tr.states, tick.BranchCode)
		return Decision{
			SendRecovery:   outage >= tr.criticalThreshold,
			Cleared:        true,
			State:          *state,
			OutageDuration: outage,
		}
	}

	kind := errorKindFor(tick)

	if !tracked {
		state = &models.BranchMonitorState{
			BranchCode:       tick.BranchCode,
			ErrorKind:        kind,
			ProblemStartedAt: now,
		}
		tr.states[tick.BranchCode] = state
		return Decision{Changed: true, State: *state}
	}

	changed := false
	if state.ErrorKind != kind {
		state.ErrorKind = kind
		changed = true
	}

	outage := now.Sub(state.ProblemStartedAt)
	if outage >= tr.criticalThreshold {
		throttled := state.LastCriticalAlertAt != nil &&
			now.Sub(*state.LastCriticalAlertAt) < tr.repeatThreshold
		if !throttled {
			alertAt := now
			state.LastCriticalAlertAt = &alertAt
			return Decision{
				SendCritical:   true,
				Changed:        true,
				State:          *state,
				OutageDuration: outage,
			}
		}
	}

	return Decision{Changed: changed, State: *state, OutageDuration: outage}
}

// Snapshot returns a copy of all tracked states
func (tr *Tracker) Snapshot() []models.BranchMonitorState {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]models.BranchMonitorState, 0, len(tr.states))
	for _, s := range tr.states {
		out = append(out, *s)
	}
	return out
}
