package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
	"github.com/ritmoapp/ritmo-engine/internal/core/timers"
)

var ErrInvalidPomodoroMode = errors.New("invalid pomodoro mode")

const (
	PomodoroFocus      = "focus"
	PomodoroShortBreak = "short_break"
	PomodoroLongBreak  = "long_break"

	focusSeconds      = 25 * 60
	shortBreakSeconds = 5 * 60
	longBreakSeconds  = 15 * 60
)

func pomodoroDuration(mode string) (int, error) {
	switch mode {
	case PomodoroFocus:
		return focusSeconds, nil
	case PomodoroShortBreak:
		return shortBreakSeconds, nil
	case PomodoroLongBreak:
		return longBreakSeconds, nil
	default:
		return 0, ErrInvalidPomodoroMode
	}
}

// PomodoroService runs the third named clock. Completed focus
// sessions feed the ledger; breaks do not.
type PomodoroService struct {
	ledger   *LedgerService
	notifier domain.Notifier
	clock    *timers.Clock

	mu        sync.Mutex
	mode      string
	remaining int
	total     int
	running   bool
}

func NewPomodoroService(ledger *LedgerService, notifier domain.Notifier) *PomodoroService {
	return &PomodoroService{
		ledger:    ledger,
		notifier:  notifier,
		clock:     timers.New("pomodoro"),
		mode:      PomodoroFocus,
		remaining: focusSeconds,
		total:     focusSeconds,
	}
}

// Start arms the timer for the mode, replacing any prior run of the
// same clock.
func (s *PomodoroService) Start(mode string) (PomodoroView, error) {
	seconds, err := pomodoroDuration(mode)
	if err != nil {
		return PomodoroView{}, err
	}

	s.mu.Lock()
	s.mode = mode
	s.remaining = seconds
	s.total = seconds
	s.running = true
	s.mu.Unlock()

	s.clock.Start(s.tick)

	return s.State(), nil
}

func (s *PomodoroService) Pause() PomodoroView {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return s.State()
}

// Resume continues a paused countdown. The clock is re-armed here
// because the timer may come back from Stop or a snapshot restore with
// no live ticker; Clock.Start cancels any prior instance, so resuming
// from a plain pause is safe too.
func (s *PomodoroService) Resume() PomodoroView {
	s.mu.Lock()
	resumed := s.remaining > 0
	if resumed {
		s.running = true
	}
	s.mu.Unlock()

	if resumed {
		s.clock.Start(s.tick)
	}

	return s.State()
}

// Stop cancels the clock and resets the current mode's full duration.
func (s *PomodoroService) Stop() PomodoroView {
	s.clock.Stop()

	s.mu.Lock()
	s.running = false
	if seconds, err := pomodoroDuration(s.mode); err == nil {
		s.remaining = seconds
		s.total = seconds
	}
	s.mu.Unlock()
	return s.State()
}

// tick fires every second; while paused it is a no-op (the clock keeps
// running). Hitting zero records the completion and stops the clock.
func (s *PomodoroService) tick() {
	s.mu.Lock()
	if !s.running || s.remaining <= 0 {
		s.mu.Unlock()
		return
	}

	s.remaining--
	finished := s.remaining == 0
	mode := s.mode
	if finished {
		s.running = false
	}
	s.mu.Unlock()

	if !finished {
		return
	}

	s.clock.Stop()

	if mode == PomodoroFocus {
		s.ledger.RecordPomodoroCompletion(context.Background(), domain.DateKey(time.Now()))
		s.notifier.Notify("Pomodoro complete. Take a break.", domain.SeveritySuccess)
	} else {
		s.notifier.Notify("Break is over.", domain.SeverityInfo)
	}
}

// Snapshot exports the persisted sub-state.
func (s *PomodoroService) Snapshot() domain.PomodoroSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.PomodoroSnapshot{
		TimeRemaining: s.remaining,
		TotalTime:     s.total,
		Mode:          s.mode,
		IsRunning:     s.running,
	}
}

// Restore loads a persisted sub-state. The running flag is never
// restored as true: a reloaded timer always comes back paused.
func (s *PomodoroService) Restore(snap domain.PomodoroSnapshot) {
	if _, err := pomodoroDuration(snap.Mode); err != nil {
		return
	}

	s.clock.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = snap.Mode
	s.remaining = snap.TimeRemaining
	s.total = snap.TotalTime
	s.running = false
}

type PomodoroView struct {
	Mode          string `json:"mode"`
	TimeRemaining int    `json:"time_remaining"`
	TotalTime     int    `json:"total_time"`
	IsRunning     bool   `json:"is_running"`
}

func (s *PomodoroService) State() PomodoroView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PomodoroView{
		Mode:          s.mode,
		TimeRemaining: s.remaining,
		TotalTime:     s.total,
		IsRunning:     s.running,
	}
}
