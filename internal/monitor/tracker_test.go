package monitor

import (
	"testing"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/models"
)

// fakeClock advances only when the test says so
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker() (*Tracker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)}
	tracker := NewTracker(10*time.Minute, 30*time.Minute, clock.Now)
	return tracker, clock
}

func failing(branch string) HealthTick {
	return HealthTick{BranchCode: branch, NetworkOk: false, DatabaseOk: false}
}

func healthy(branch string) HealthTick {
	return HealthTick{BranchCode: branch, NetworkOk: true, DatabaseOk: true}
}

func TestTracker_SustainedOutageScenario(t *testing.T) {
	tracker, clock := newTestTracker()

	// t=0: first failing tick opens the outage, no notification
	d := tracker.Observe(failing("norte"))
	if d.SendCritical || d.SendRecovery {
		t.Error("First failing tick must not notify")
	}
	if !d.Changed {
		t.Error("First failing tick must create tracked state")
	}

	// t=9min: still under the critical threshold
	clock.Advance(9 * time.Minute)
	d = tracker.Observe(failing("norte"))
	if d.SendCritical {
		t.Error("No notification before the 10 minute threshold")
	}

	// t=10min: threshold crossed, exactly one critical notification
	clock.Advance(1 * time.Minute)
	d = tracker.Observe(failing("norte"))
	if !d.SendCritical {
		t.Error("Expected critical notification at 10 minutes")
	}

	// t=15min: throttled, no second notification
	clock.Advance(5 * time.Minute)
	d = tracker.Observe(failing("norte"))
	if d.SendCritical {
		t.Error("Repeat notification must be throttled inside 30 minutes")
	}

	// t=41min: more than 30 minutes since the first alert, notify again
	clock.Advance(26 * time.Minute)
	d = tracker.Observe(failing("norte"))
	if !d.SendCritical {
		t.Error("Expected second critical notification after the repeat threshold")
	}

	// t=50min: health restored after a critical-length outage
	clock.Advance(9 * time.Minute)
	d = tracker.Observe(healthy("norte"))
	if !d.SendRecovery {
		t.Error("Expected recovery notification after a 50 minute outage")
	}
	if !d.Cleared {
		t.Error("Recovered branch must be forgotten")
	}
	if d.OutageDuration != 50*time.Minute {
		t.Errorf("Outage duration = %s, want 50m", d.OutageDuration)
	}

	// Tracker is empty again
	if len(tracker.Snapshot()) != 0 {
		t.Error("No state should remain after recovery")
	}
}

func TestTracker_TransientBlipNeverNotifies(t *testing.T) {
	tracker, clock := newTestTracker()

	d := tracker.Observe(failing("sur"))
	if d.SendCritical || d.SendRecovery {
		t.Error("No notification on first failure")
	}

	// Recovers at t=5min, before the critical threshold
	clock.Advance(5 * time.Minute)
	d = tracker.Observe(healthy("sur"))
	if d.SendCritical || d.SendRecovery {
		t.Error("A blip under 10 minutes must produce zero notifications")
	}
	if !d.Cleared {
		t.Error("State must still be discarded on recovery")
	}
}

func TestTracker_HealthyBranchIsIgnored(t *testing.T) {
	tracker, _ := newTestTracker()

	d := tracker.Observe(healthy("centro"))
	if d.SendCritical || d.SendRecovery || d.Changed || d.Cleared {
		t.Errorf("Healthy untracked branch should be a no-op, got %+v", d)
	}
}

func TestTracker_ErrorKindClassification(t *testing.T) {
	tracker, _ := newTestTracker()

	d := tracker.Observe(HealthTick{BranchCode: "a", NetworkOk: false, DatabaseOk: true})
	if d.State.ErrorKind != models.ErrorKindNetwork {
		t.Errorf("ErrorKind = %s, want NETWORK", d.State.ErrorKind)
	}

	d = tracker.Observe(HealthTick{BranchCode: "b", NetworkOk: true, DatabaseOk: false})
	if d.State.ErrorKind != models.ErrorKindDatabase {
		t.Errorf("ErrorKind = %s, want DATABASE", d.State.ErrorKind)
	}

	d = tracker.Observe(HealthTick{BranchCode: "c", NetworkOk: false, DatabaseOk: false})
	if d.State.ErrorKind != models.ErrorKindBoth {
		t.Errorf("ErrorKind = %s, want BOTH", d.State.ErrorKind)
	}

	// Kind can change while the outage is open
	d = tracker.Observe(HealthTick{BranchCode: "c", NetworkOk: true, DatabaseOk: false})
	if d.State.ErrorKind != models.ErrorKindDatabase {
		t.Errorf("ErrorKind after change = %s, want DATABASE", d.State.ErrorKind)
	}
	if !d.Changed {
		t.Error("Kind change must be flagged for persistence")
	}
}

func TestTracker_RestoreContinuesOutageTimer(t *testing.T) {
	tracker, clock := newTestTracker()

	// A previous process observed the problem 9 minutes ago
	started := clock.Now().Add(-9 * time.Minute)
	tracker.Restore([]models.BranchMonitorState{{
		BranchCode:       "norte",
		ErrorKind:        models.ErrorKindDatabase,
		ProblemStartedAt: started,
	}})

	// One minute later the outage crosses the 10 minute threshold: the timer
	// must not have been reset by the restart
	clock.Advance(1 * time.Minute)
	d := tracker.Observe(HealthTick{BranchCode: "norte", NetworkOk: true, DatabaseOk: false})
	if !d.SendCritical {
		t.Error("Restored outage timer should carry across restarts")
	}
	if d.OutageDuration != 10*time.Minute {
		t.Errorf("Outage duration = %s, want 10m", d.OutageDuration)
	}
}

func TestTracker_IndependentBranches(t *testing.T) {
	tracker, clock := newTestTracker()

	tracker.Observe(failing("norte"))
	clock.Advance(10 * time.Minute)
	tracker.Observe(failing("sur"))

	d := tracker.Observe(failing("norte"))
	if !d.SendCritical {
		t.Error("Branch norte crossed its threshold")
	}
	d = tracker.Observe(failing("sur"))
	if d.SendCritical {
		t.Error("Branch sur just started failing, must not notify yet")
	}

	if len(tracker.Snapshot()) != 2 {
		t.Errorf("Expected 2 tracked branches, got %d", len(tracker.Snapshot()))
	}
}
