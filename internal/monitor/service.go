package monitor

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/catalog"
	"github.com/beachmarket/beachmarketgo/internal/config"
	"github.com/beachmarket/beachmarketgo/internal/models"
	"github.com/beachmarket/beachmarketgo/internal/notify"
	"gorm.io/gorm"
)

// HealthChecker probes one branch
type HealthChecker interface {
	Health(ctx context.Context, branchCode string) (*catalog.HealthResult, error)
}

// Broadcaster pushes live updates to dashboard clients (websocket hub)
type Broadcaster interface {
	Broadcast(message interface{})
}

// Service runs the branch monitoring loop server-side: health ticks, outage
// tracking, alert dispatch. State is persisted so a restart keeps in-flight
// outage timers.
type Service struct {
	db        *gorm.DB
	checker   HealthChecker
	tracker   *Tracker
	senders   []notify.Sender
	cfg       config.MonitorConfig
	broadcast Broadcaster
	stop      chan struct{}
}

// NewService creates the monitoring service
func NewService(db *gorm.DB, checker HealthChecker, senders []notify.Sender, cfg config.MonitorConfig, broadcast Broadcaster) *Service {
	return &Service{
		db:        db,
		checker:   checker,
		tracker:   NewTracker(cfg.CriticalThreshold, cfg.RepeatThreshold, time.Now),
		senders:   senders,
		cfg:       cfg,
		broadcast: broadcast,
		stop:      make(chan struct{}),
	}
}

// Start begins the background monitoring loop
func (s *Service) Start() {
	if !s.cfg.Enabled {
		log.Println("Branch monitor disabled: MONITOR_ENABLED=false")
		return
	}

	// Restore persisted outage state so restarts do not reset timers
	var states []models.BranchMonitorState
	if err := s.db.Find(&states).Error; err != nil {
		log.Printf("⚠️ Monitor: could not restore outage state: %v", err)
	} else if len(states) > 0 {
		s.tracker.Restore(states)
		log.Printf("🔁 Monitor: restored %d in-flight outage(s)", len(states))
	}

	go func() {
		log.Printf("📡 Branch monitor started (tick %s, critical %s, repeat %s)",
			s.cfg.TickInterval, s.cfg.CriticalThreshold, s.cfg.RepeatThreshold)

		ticker := time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runTick()
			case <-s.stop:
				log.Println("🛑 Branch monitor stopped")
				return
			}
		}
	}()
}

// Stop halts the service
func (s *Service) Stop() {
	close(s.stop)
}

// runTick checks every active branch once. Each branch gets its own check
// budget: one slow branch must not eat the time of the branches after it.
func (s *Service) runTick() {
	var branches []models.Branch
	if err := s.db.Where("active = ?", true).Find(&branches).Error; err != nil {
		log.Printf("⚠️ Monitor: failed to list branches: %v", err)
		return
	}

	for _, branch := range branches {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TickInterval)
		s.checkBranch(ctx, branch)
		cancel()
	}
}

func (s *Service) checkBranch(ctx context.Context, branch models.Branch) {
	health, err := s.checker.Health(ctx, branch.Code)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		// The check itself failed (registry unavailable, check budget spent).
		// That says nothing about the branch, so the outage state machine
		// does not advance; the next completed check settles it.
		log.Printf("⚠️ Monitor: health check for %s did not complete: %v", branch.Code, err)
		return
	}

	tick := HealthTick{
		BranchCode: branch.Code,
		NetworkOk:  health.NetworkOk,
		DatabaseOk: health.DatabaseOk,
		Detail:     health.Detail,
	}

	decision := s.tracker.Observe(tick)
	s.persist(ctx, decision)

	if decision.SendCritical {
		s.dispatch(ctx, branch, notify.KindCritical, notify.RenderCritical(notify.CriticalData{
			BranchCode: branch.Code,
			BranchName: branch.Name,
			ErrorKind:  decision.State.ErrorKind,
			Since:      decision.State.ProblemStartedAt,
			Duration:   decision.OutageDuration,
		}))
	}
	if decision.SendRecovery {
		s.dispatch(ctx, branch, notify.KindRecovery, notify.RenderRecovery(notify.RecoveryData{
			BranchCode: branch.Code,
			BranchName: branch.Name,
			Duration:   decision.OutageDuration,
		}))
	}

	if s.broadcast != nil && (decision.Changed || decision.Cleared) {
		s.broadcast.Broadcast(map[string]interface{}{
			"type":       "branch_health",
			"branchCode": branch.Code,
			"healthy":    tick.Healthy(),
			"errorKind":  decision.State.ErrorKind,
			"detail":     tick.Detail,
		})
	}
}

// persist mirrors the tracker decision into the database
func (s *Service) persist(ctx context.Context, decision Decision) {
	switch {
	case decision.Cleared:
		err := s.db.WithContext(ctx).
			Where("branch_code = ?", decision.State.BranchCode).
			Delete(&models.BranchMonitorState{}).Error
		if err != nil {
			log.Printf("⚠️ Monitor: failed to clear state for %s: %v", decision.State.BranchCode, err)
		}
	case decision.Changed:
		state := decision.State
		var existing models.BranchMonitorState
		err := s.db.WithContext(ctx).
			Where("branch_code = ?", state.BranchCode).
			First(&existing).Error
		if err == nil {
			state.ID = existing.ID
			err = s.db.WithContext(ctx).Save(&state).Error
		} else {
			err = s.db.WithContext(ctx).Create(&state).Error
		}
		if err != nil {
			log.Printf("⚠️ Monitor: failed to persist state for %s: %v", state.BranchCode, err)
		}
	}
}

// dispatch sends the rendered message over every channel and logs each
// attempt. A failed send is logged but never retried within the same tick,
// and never rolls back the state transition.
func (s *Service) dispatch(ctx context.Context, branch models.Branch, kind, message string) {
	for _, sender := range s.senders {
		result := sender.Send(ctx, message, nil)
		if !result.Success {
			log.Printf("⚠️ Monitor: %s notification via %s failed: %s (%s)",
				kind, sender.Channel(), result.Detail, result.ErrorKind)
		} else {
			log.Printf("📨 Monitor: %s notification sent via %s for branch %s",
				kind, sender.Channel(), branch.Code)
		}

		payload, _ := json.Marshal(result)
		entry := models.AlertLog{
			BranchCode: branch.Code,
			Kind:       kind,
			Channel:    sender.Channel(),
			Success:    result.Success,
			Payload:    payload,
		}
		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			log.Printf("⚠️ Monitor: failed to log alert: %v", err)
		}
	}
}

// States returns the currently tracked outage states
func (s *Service) States() []models.BranchMonitorState {
	return s.tracker.Snapshot()
}
