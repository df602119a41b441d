package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
	"github.com/ritmoapp/ritmo-engine/internal/core/timers"
)

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrNotRepsStep     = errors.New("current step does not count reps")
	ErrNotBreathing    = errors.New("current step is not a breathing step")
)

type breathingState struct {
	pattern     domain.BreathingPattern
	phase       string
	secondsLeft int
	cycles      int
}

// session is the transient state of one run. It exists only while the
// run is active and is discarded on completion, skip-to-end or exit;
// nothing here is ever persisted.
type session struct {
	flow      *domain.Flow
	stepIndex int
	paused    bool
	completed bool

	currentReps      int
	elapsedSeconds   int
	remainingSeconds int
	timerDone        bool
	goalReached      bool

	breathing *breathingState
	startedAt time.Time
}

// RunnerService drives a single flow instance step by step. At most
// one session is active at a time; starting a new one discards any
// prior uncommitted session. Step timers run on the named session
// clock, the breathing cycle on its own clock, both at one-second
// resolution with pause implemented as a flag check inside the tick.
type RunnerService struct {
	flowRepo domain.FlowRepository
	ledger   *LedgerService
	notifier domain.Notifier
	patterns []domain.BreathingPattern

	stepClock   *timers.Clock
	breathClock *timers.Clock

	mu   sync.Mutex
	sess *session
}

func NewRunnerService(flowRepo domain.FlowRepository, ledger *LedgerService, notifier domain.Notifier) *RunnerService {
	s := &RunnerService{
		flowRepo:    flowRepo,
		ledger:      ledger,
		notifier:    notifier,
		patterns:    domain.DefaultPatterns(),
		stepClock:   timers.New("session"),
		breathClock: timers.New("breathing"),
	}
	return s
}

// SetPatterns replaces the available breathing patterns (defaults plus
// any user-defined ones from the snapshot).
func (s *RunnerService) SetPatterns(patterns []domain.BreathingPattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = patterns
}

func (s *RunnerService) findPattern(name string) (*domain.BreathingPattern, bool) {
	for i := range s.patterns {
		if s.patterns[i].Name == name {
			return &s.patterns[i], true
		}
	}
	return nil, false
}

// Start begins a session over the flow. A flow with zero steps (or a
// stale index) completes immediately.
func (s *RunnerService) Start(ctx context.Context, flowID string) (SessionView, error) {
	flow, err := s.flowRepo.GetByID(ctx, flowID)
	if err != nil {
		return SessionView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopClocksLocked()
	s.sess = &session{
		flow:      flow,
		startedAt: time.Now().UTC(),
	}

	s.enterStepLocked(ctx)

	return s.viewLocked(), nil
}

// stopClocksLocked cancels both named clocks. Safe to call with no
// session active.
func (s *RunnerService) stopClocksLocked() {
	s.stepClock.Stop()
	s.breathClock.Stop()
}

// enterStepLocked resets per-step transient state for the step the
// index points at and arms the step clock where the type needs one. A
// missing step is treated identically to "no more steps" and triggers
// completion.
func (s *RunnerService) enterStepLocked(ctx context.Context) {
	sess := s.sess

	sess.currentReps = 0
	sess.elapsedSeconds = 0
	sess.remainingSeconds = 0
	sess.timerDone = false
	sess.goalReached = false
	sess.breathing = nil
	s.breathClock.Stop()

	if sess.stepIndex >= len(sess.flow.Steps) || sess.stepIndex < 0 {
		s.finishLocked(ctx)
		return
	}

	step := sess.flow.Steps[sess.stepIndex]

	switch step.Type {
	case domain.StepTimer:
		sess.remainingSeconds = step.Duration * 60
		s.armStepClockLocked()
	case domain.StepStopwatch:
		s.armStepClockLocked()
	default:
		s.stepClock.Stop()
	}
}

// armStepClockLocked binds the clock callback to the session and step
// it was armed for. A tick already waiting on the mutex during a step
// transition would otherwise land one spurious second on the next step.
func (s *RunnerService) armStepClockLocked() {
	sess := s.sess
	idx := sess.stepIndex
	s.stepClock.Start(func() { s.stepTick(sess, idx) })
}

// stepTick is the one-second callback for timer and stopwatch steps.
// Stale ticks (a different session, or a step already advanced past)
// are discarded; while paused the tick is simply a no-op.
func (s *RunnerService) stepTick(sess *session, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess == nil || s.sess != sess || sess.stepIndex != idx || sess.paused || sess.completed {
		return
	}
	if sess.stepIndex >= len(sess.flow.Steps) {
		return
	}

	step := sess.flow.Steps[sess.stepIndex]

	switch step.Type {
	case domain.StepTimer:
		if sess.remainingSeconds <= 0 {
			return
		}
		sess.remainingSeconds--
		if sess.remainingSeconds == 0 && !sess.timerDone {
			sess.timerDone = true
			s.stepClock.Stop()
			s.notifier.Notify(fmt.Sprintf("%s: time is up", step.Title), domain.SeverityInfo)
		}
	case domain.StepStopwatch:
		sess.elapsedSeconds++
		if step.Duration > 0 && !sess.goalReached && sess.elapsedSeconds >= step.Duration*60 {
			sess.goalReached = true
			s.notifier.Notify(fmt.Sprintf("%s: goal reached", step.Title), domain.SeveritySuccess)
		}
	}
}

// breathTick advances the breathing phase cycle once per second. Ticks
// bound to a breathing run that has since been stopped or replaced are
// discarded.
func (s *RunnerService) breathTick(b *breathingState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sess
	if b == nil || sess == nil || sess.paused || sess.breathing != b {
		return
	}
	b.secondsLeft--
	if b.secondsLeft > 0 {
		return
	}

	b.phase = b.pattern.NextPhase(b.phase)
	b.secondsLeft = b.pattern.PhaseDuration(b.phase)
	if b.phase == domain.PhaseInhale {
		b.cycles++
	}
}

// Advance completes the current step: it books the step outcome into
// the ledger (lifetime totals, mastery contribution, flat step XP) and
// moves to the next step or to completion.
func (s *RunnerService) Advance(ctx context.Context) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sess
	if sess == nil || sess.completed {
		return SessionView{}, ErrNoActiveSession
	}

	if sess.stepIndex < len(sess.flow.Steps) {
		s.emitStepOutcomeLocked(ctx)
	}

	sess.stepIndex++
	s.enterStepLocked(ctx)

	return s.viewLocked(), nil
}

// Skip moves past the current step without any outcome: no XP, no
// mastery contribution, no lifetime totals.
func (s *RunnerService) Skip(ctx context.Context) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sess
	if sess == nil || sess.completed {
		return SessionView{}, ErrNoActiveSession
	}

	sess.stepIndex++
	s.enterStepLocked(ctx)

	return s.viewLocked(), nil
}

// Abort exits the session, discarding all transient state. No rewards
// are granted and nothing is persisted.
func (s *RunnerService) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		return ErrNoActiveSession
	}

	s.stopClocksLocked()
	s.sess = nil
	return nil
}

func (s *RunnerService) Pause() error {
	return s.setPaused(true)
}

func (s *RunnerService) Resume() error {
	return s.setPaused(false)
}

func (s *RunnerService) setPaused(paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil || s.sess.completed {
		return ErrNoActiveSession
	}
	s.sess.paused = paused
	return nil
}

// Tap counts one repetition on a reps step. The count may exceed the
// target; only the display caps it.
func (s *RunnerService) Tap() (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sess
	if sess == nil || sess.completed {
		return SessionView{}, ErrNoActiveSession
	}
	if sess.stepIndex >= len(sess.flow.Steps) || sess.flow.Steps[sess.stepIndex].Type != domain.StepReps {
		return SessionView{}, ErrNotRepsStep
	}

	sess.currentReps++
	return s.viewLocked(), nil
}

// StartBreathing begins the cyclic phase sub-machine on a breathing
// step. It runs on its own clock, independent of the step timer, until
// explicitly stopped.
func (s *RunnerService) StartBreathing(patternName string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sess
	if sess == nil || sess.completed {
		return SessionView{}, ErrNoActiveSession
	}
	if sess.stepIndex >= len(sess.flow.Steps) || sess.flow.Steps[sess.stepIndex].Type != domain.StepBreathing {
		return SessionView{}, ErrNotBreathing
	}

	if patternName == "" {
		patternName = sess.flow.Steps[sess.stepIndex].Pattern
	}
	pattern, ok := s.findPattern(patternName)
	if !ok {
		return SessionView{}, domain.ErrPatternNotFound
	}

	b := &breathingState{
		pattern:     *pattern,
		phase:       domain.PhaseInhale,
		secondsLeft: pattern.Inhale,
	}
	sess.breathing = b
	s.breathClock.Start(func() { s.breathTick(b) })

	return s.viewLocked(), nil
}

func (s *RunnerService) StopBreathing() (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		return SessionView{}, ErrNoActiveSession
	}

	s.breathClock.Stop()
	s.sess.breathing = nil
	return s.viewLocked(), nil
}

// emitStepOutcomeLocked books the rewards for advancing off the
// current step. Timer steps are credited with their full configured
// duration regardless of where the countdown stood; stopwatch steps
// with actually elapsed seconds; reps steps with the tapped count,
// falling back to the target when nothing was tapped.
func (s *RunnerService) emitStepOutcomeLocked(ctx context.Context) {
	sess := s.sess
	step := sess.flow.Steps[sess.stepIndex]
	date := domain.DateKey(time.Now())

	reps := 0
	seconds := 0

	switch step.Type {
	case domain.StepTimer:
		seconds = step.Duration * 60
		s.ledger.AddPracticeTime(ctx, seconds)
	case domain.StepStopwatch:
		seconds = sess.elapsedSeconds
		s.ledger.AddPracticeTime(ctx, seconds)
	case domain.StepReps:
		reps = sess.currentReps
		if reps == 0 {
			reps = step.TargetReps
		}
		s.ledger.AddReps(ctx, reps)
	}

	if goalID := sess.flow.StepMasteryID(sess.stepIndex); goalID != "" {
		if err := s.ledger.RecordStepMastery(ctx, goalID, step.Type, step.Title, date, reps, seconds); err != nil {
			// Stale mastery link: the step still advances.
			log.Printf("Runner: mastery progress for goal %s skipped: %v", goalID, err)
		}
	}

	s.ledger.GrantXP(ctx, domain.XPPerStep, date)
}

// finishLocked handles the transition to Completed: flow reward, daily
// counter, activity line, today's checkbox on the flow and the journal
// prompt.
func (s *RunnerService) finishLocked(ctx context.Context) {
	sess := s.sess
	sess.completed = true
	s.stopClocksLocked()

	today := domain.DateKey(time.Now())
	s.ledger.RecordFlowCompletion(ctx, sess.flow.Title, today, domain.XPFlowComplete)

	// Check today's box on the stored definition. A flow deleted
	// mid-session is a silent no-op.
	if flow, err := s.flowRepo.GetByID(ctx, sess.flow.ID); err == nil {
		if !flow.IsCompletedOn(today) {
			flow.ToggleCompletion(today)
			if err := s.flowRepo.Update(ctx, flow); err != nil {
				log.Printf("Runner: could not mark flow %s complete: %v", flow.ID, err)
			}
		}
	}

	s.notifier.Notify(fmt.Sprintf("Flow complete: %s. Write a journal entry?", sess.flow.Title), domain.SeverityPrompt)
}

// BreathingView is the UI projection of the breathing sub-machine.
type BreathingView struct {
	Pattern     string `json:"pattern"`
	Phase       string `json:"phase"`
	SecondsLeft int    `json:"seconds_left"`
	Cycles      int    `json:"cycles"`
}

// SessionView is the UI projection of the runner state.
type SessionView struct {
	Active           bool           `json:"active"`
	Completed        bool           `json:"completed"`
	FlowID           string         `json:"flow_id,omitempty"`
	FlowTitle        string         `json:"flow_title,omitempty"`
	StepIndex        int            `json:"step_index"`
	StepCount        int            `json:"step_count"`
	Step             *domain.Step   `json:"step,omitempty"`
	Paused           bool           `json:"paused"`
	CurrentReps      int            `json:"current_reps"`
	ElapsedSeconds   int            `json:"elapsed_seconds"`
	RemainingSeconds int            `json:"remaining_seconds"`
	GoalReached      bool           `json:"goal_reached"`
	Breathing        *BreathingView `json:"breathing,omitempty"`
}

func (s *RunnerService) viewLocked() SessionView {
	sess := s.sess
	if sess == nil {
		return SessionView{}
	}

	view := SessionView{
		Active:           !sess.completed,
		Completed:        sess.completed,
		FlowID:           sess.flow.ID,
		FlowTitle:        sess.flow.Title,
		StepIndex:        sess.stepIndex,
		StepCount:        len(sess.flow.Steps),
		Paused:           sess.paused,
		CurrentReps:      sess.currentReps,
		ElapsedSeconds:   sess.elapsedSeconds,
		RemainingSeconds: sess.remainingSeconds,
		GoalReached:      sess.goalReached,
	}

	if sess.stepIndex >= 0 && sess.stepIndex < len(sess.flow.Steps) {
		step := sess.flow.Steps[sess.stepIndex]
		view.Step = &step
	}

	if sess.breathing != nil {
		view.Breathing = &BreathingView{
			Pattern:     sess.breathing.pattern.Name,
			Phase:       sess.breathing.phase,
			SecondsLeft: sess.breathing.secondsLeft,
			Cycles:      sess.breathing.cycles,
		}
	}

	return view
}

// State reports the current session (zero-value view when idle).
func (s *RunnerService) State() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}
