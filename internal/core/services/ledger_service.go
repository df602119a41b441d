package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

// Backup receives a nudge whenever durable state changed, so a full
// snapshot can be written off the hot path.
type Backup interface {
	Enqueue()
}

// LedgerService is the progression ledger: it owns the in-memory
// progress state container (XP, level, streak, badges, daily history,
// activity log, lifetime counters) and persists it after every
// mutation. A failed save is reported as a warning and the in-memory
// state stays authoritative for the rest of the session.
type LedgerService struct {
	progressRepo domain.ProgressRepository
	masteryRepo  domain.MasteryRepository
	notifier     domain.Notifier
	backup       Backup

	mu    sync.Mutex
	state *domain.ProgressState
}

func NewLedgerService(progressRepo domain.ProgressRepository, masteryRepo domain.MasteryRepository, notifier domain.Notifier) *LedgerService {
	return &LedgerService{
		progressRepo: progressRepo,
		masteryRepo:  masteryRepo,
		notifier:     notifier,
		state:        domain.NewProgressState(),
	}
}

// AttachBackup wires the snapshot worker in after construction (the
// worker itself needs the fully built service graph).
func (s *LedgerService) AttachBackup(b Backup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backup = b
}

// Load restores the persisted state. An absent record leaves the
// fresh empty container in place.
func (s *LedgerService) Load(ctx context.Context) error {
	state, err := s.progressRepo.Get(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if state != nil {
		if state.Progress == nil {
			state.Progress = domain.NewUserProgress()
		}
		s.state = state
	}
	return nil
}

func (s *LedgerService) persistLocked(ctx context.Context) {
	if err := s.progressRepo.Save(ctx, s.state); err != nil {
		log.Printf("Ledger: failed to persist progress: %v", err)
		s.notifier.Notify("Progress could not be saved; recent changes are at risk.", domain.SeverityWarning)
		return
	}
	if s.backup != nil {
		s.backup.Enqueue()
	}
}

func (s *LedgerService) evaluateBadgesLocked() {
	for _, badge := range domain.EvaluateBadges(s.state) {
		s.notifier.Notify(fmt.Sprintf("Badge unlocked: %s", badge.Name), domain.SeveritySuccess)
	}
}

func (s *LedgerService) grantXPLocked(amount int, date string) {
	if amount <= 0 {
		return
	}

	levelsBefore := s.state.Progress.Level
	s.state.Progress.AddXP(amount)
	s.state.HistoryFor(date).XP += amount

	if s.state.Progress.Level > levelsBefore {
		s.notifier.Notify(fmt.Sprintf("Level up! You reached level %d.", s.state.Progress.Level), domain.SeveritySuccess)
	}
}

// GrantXP adds experience for the given date, applying level-ups
// (multi-level jumps included) and re-evaluating badges.
func (s *LedgerService) GrantXP(ctx context.Context, amount int, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grantXPLocked(amount, date)
	s.evaluateBadgesLocked()
	s.persistLocked(ctx)
}

// AddPracticeTime adds elapsed seconds to the lifetime practice total.
func (s *LedgerService) AddPracticeTime(ctx context.Context, seconds int) {
	if seconds <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Stats.TotalPracticeSeconds += seconds
	s.persistLocked(ctx)
}

// AddReps adds performed repetitions to the lifetime total.
func (s *LedgerService) AddReps(ctx context.Context, reps int) {
	if reps <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Stats.TotalReps += reps
	s.persistLocked(ctx)
}

// RecordStepMastery feeds a finished step into its mastery goal. The
// goal's type decides compatibility: reps goals only accept reps
// steps, hours goals only timer and stopwatch steps. Incompatible or
// zero contributions are silently skipped, never rewarded.
func (s *LedgerService) RecordStepMastery(ctx context.Context, goalID, stepType, stepTitle, date string, reps, seconds int) error {
	goal, err := s.masteryRepo.GetByID(ctx, goalID)
	if err != nil {
		return err
	}

	amount := goal.ContributionFrom(stepType, reps, seconds)
	if amount <= 0 {
		return nil
	}

	goal.Apply(amount)
	if err := s.masteryRepo.Update(ctx, goal); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unit := "reps"
	if goal.Type == domain.MasteryHours {
		unit = "hours"
	}
	s.state.LogActivity(fmt.Sprintf("%s: logged %.2f %s toward %s", stepTitle, amount, unit, goal.Name), time.Now().UTC())
	s.grantXPLocked(domain.XPPerMastery, date)
	s.evaluateBadgesLocked()
	s.persistLocked(ctx)

	return nil
}

// RecordFlowCompletion tallies one flow completion for the date in the
// permanent daily history and grants the given reward. Both the
// session runner (full reward) and the dashboard quick-toggle (reduced
// reward) go through here; toggling a completion off never does.
func (s *LedgerService) RecordFlowCompletion(ctx context.Context, title, date string, xp int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.HistoryFor(date).Flows++
	s.state.LogActivity(fmt.Sprintf("Completed flow: %s", title), time.Now().UTC())
	s.grantXPLocked(xp, date)
	s.evaluateBadgesLocked()
	s.persistLocked(ctx)
}

// RecordPomodoroCompletion counts a finished focus session. The
// today counter resets when the calendar date changed.
func (s *LedgerService) RecordPomodoroCompletion(ctx context.Context, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Stats.LastPomodoroDate != date {
		s.state.Stats.PomodorosToday = 0
		s.state.Stats.LastPomodoroDate = date
	}
	s.state.Stats.PomodorosToday++
	s.state.Stats.PomodorosLifetime++
	s.state.LogActivity("Completed a pomodoro", time.Now().UTC())
	s.grantXPLocked(domain.XPPomodoro, date)
	s.evaluateBadgesLocked()
	s.persistLocked(ctx)
}

// RecordTaskCompletion bumps the lifetime task counter feeding the
// 50-tasks badge.
func (s *LedgerService) RecordTaskCompletion(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Stats.TasksCompleted++
	s.evaluateBadgesLocked()
	s.persistLocked(ctx)
}

// RecordWorkingCreated bumps the workings-created counter.
func (s *LedgerService) RecordWorkingCreated(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Stats.WorkingsCreated++
	s.evaluateBadgesLocked()
	s.persistLocked(ctx)
}

// TouchLogin runs the once-per-day streak update for today's date.
func (s *LedgerService) TouchLogin(ctx context.Context, today string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Progress.TouchLogin(today) {
		return
	}
	s.evaluateBadgesLocked()
	s.persistLocked(ctx)
}

// LogActivity appends a free-form activity line.
func (s *LedgerService) LogActivity(ctx context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.LogActivity(message, time.Now().UTC())
	s.persistLocked(ctx)
}

// ProgressOverview is the read model handed to the UI.
type ProgressOverview struct {
	XP             int                  `json:"xp"`
	Level          int                  `json:"level"`
	NextLevelXP    int                  `json:"next_level_xp"`
	Streak         int                  `json:"streak"`
	LastLoginDate  string               `json:"last_login_date,omitempty"`
	Badges         []string             `json:"badges"`
	Stats          domain.LifetimeStats `json:"stats"`
	FlowsCompleted int                  `json:"flows_completed"`
}

func (s *LedgerService) Overview() ProgressOverview {
	s.mu.Lock()
	defer s.mu.Unlock()

	badges := make([]string, len(s.state.Progress.Badges))
	copy(badges, s.state.Progress.Badges)

	return ProgressOverview{
		XP:             s.state.Progress.XP,
		Level:          s.state.Progress.Level,
		NextLevelXP:    domain.XPThreshold(s.state.Progress.Level),
		Streak:         s.state.Progress.Streak,
		LastLoginDate:  s.state.Progress.LastLoginDate,
		Badges:         badges,
		Stats:          s.state.Stats,
		FlowsCompleted: s.state.TotalFlowCompletions(),
	}
}

// Activity returns a copy of the capped, newest-first activity log.
func (s *LedgerService) Activity() []domain.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ActivityEntry, len(s.state.Activity))
	copy(out, s.state.Activity)
	return out
}

// History returns a copy of the per-day tallies.
func (s *LedgerService) History() map[string]domain.DailyHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.DailyHistoryEntry, len(s.state.History))
	for k, v := range s.state.History {
		out[k] = *v
	}
	return out
}

// StateCopy returns a deep copy of the full container for snapshot
// export.
func (s *LedgerService) StateCopy() *domain.ProgressState {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress := *s.state.Progress
	progress.Badges = append([]string{}, s.state.Progress.Badges...)

	history := make(map[string]*domain.DailyHistoryEntry, len(s.state.History))
	for k, v := range s.state.History {
		entry := *v
		history[k] = &entry
	}

	activity := make([]domain.ActivityEntry, len(s.state.Activity))
	copy(activity, s.state.Activity)

	return &domain.ProgressState{
		Progress: &progress,
		History:  history,
		Activity: activity,
		Stats:    s.state.Stats,
	}
}

// Restore replaces the container wholesale (snapshot import).
func (s *LedgerService) Restore(ctx context.Context, state *domain.ProgressState) {
	if state == nil {
		state = domain.NewProgressState()
	}
	if state.Progress == nil {
		state.Progress = domain.NewUserProgress()
	}
	if state.History == nil {
		state.History = make(map[string]*domain.DailyHistoryEntry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.persistLocked(ctx)
}
