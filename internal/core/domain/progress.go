package domain

import (
	"math"
	"time"
)

const (
	BaseXP          = 100
	LevelMultiplier = 1.5

	XPPerStep       = 10
	XPPerMastery    = 10
	XPFlowComplete  = 100
	XPQuickComplete = 50
	XPPomodoro      = 25
	XPWorkingDay    = 20

	ActivityLogCap = 50
)

// XPThreshold is the XP required to clear the given level. It grows
// geometrically: floor(BaseXP * LevelMultiplier^(level-1)).
func XPThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(BaseXP * math.Pow(LevelMultiplier, float64(level-1))))
}

// UserProgress tracks the current level's accumulated XP (resets on
// level-up, carrying any excess), the consecutive-day login streak and
// the unlocked badge set.
type UserProgress struct {
	XP            int      `json:"xp"`
	Level         int      `json:"level"`
	Streak        int      `json:"streak"`
	LastLoginDate string   `json:"last_login_date,omitempty"`
	Badges        []string `json:"badges"`
}

func NewUserProgress() *UserProgress {
	return &UserProgress{
		Level:  1,
		Badges: []string{},
	}
}

// AddXP grants XP and consumes level thresholds while enough XP is
// accumulated, so one large grant can produce several level-ups.
// It returns the number of levels gained.
func (p *UserProgress) AddXP(amount int) int {
	if amount <= 0 {
		return 0
	}

	p.XP += amount

	gained := 0
	for p.XP >= XPThreshold(p.Level) {
		p.XP -= XPThreshold(p.Level)
		p.Level++
		gained++
	}
	return gained
}

// TouchLogin runs the once-per-day streak update. Consecutive days
// increment the streak; any gap resets it to 1. Calling it again on
// the same day is a no-op.
func (p *UserProgress) TouchLogin(today string) bool {
	if p.LastLoginDate == today {
		return false
	}

	yesterday := ""
	if t, err := ParseDateKey(today); err == nil {
		yesterday = DateKey(t.AddDate(0, 0, -1))
	}

	if p.LastLoginDate == yesterday && p.LastLoginDate != "" {
		p.Streak++
	} else {
		p.Streak = 1
	}

	p.LastLoginDate = today
	return true
}

func (p *UserProgress) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// DailyHistoryEntry is the permanent per-day tally, created lazily on
// the first event of a day. Workings is a reserved counter.
type DailyHistoryEntry struct {
	XP       int `json:"xp"`
	Flows    int `json:"flows"`
	Workings int `json:"workings"`
}

// ActivityEntry is one line of the capped, newest-first activity log.
type ActivityEntry struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// LifetimeStats are append-only counters surviving across days.
type LifetimeStats struct {
	TotalPracticeSeconds int    `json:"total_practice_seconds"`
	TotalReps            int    `json:"total_reps"`
	PomodorosToday       int    `json:"pomodoros_today"`
	PomodorosLifetime    int    `json:"pomodoros_lifetime"`
	LastPomodoroDate     string `json:"last_pomodoro_date,omitempty"`
	TasksCompleted       int    `json:"tasks_completed"`
	WorkingsCreated      int    `json:"workings_created"`
}

// ProgressState is the single state container for everything the
// progression ledger owns. It lives in memory and is persisted as one
// record after each mutation.
type ProgressState struct {
	Progress *UserProgress                 `json:"progress"`
	History  map[string]*DailyHistoryEntry `json:"history"`
	Activity []ActivityEntry               `json:"activity"`
	Stats    LifetimeStats                 `json:"stats"`
}

func NewProgressState() *ProgressState {
	return &ProgressState{
		Progress: NewUserProgress(),
		History:  make(map[string]*DailyHistoryEntry),
		Activity: []ActivityEntry{},
	}
}

// HistoryFor returns the entry for the date, creating it lazily.
func (s *ProgressState) HistoryFor(date string) *DailyHistoryEntry {
	if s.History == nil {
		s.History = make(map[string]*DailyHistoryEntry)
	}
	e, ok := s.History[date]
	if !ok {
		e = &DailyHistoryEntry{}
		s.History[date] = e
	}
	return e
}

// TotalFlowCompletions is the permanent historical tally, summed from
// the daily counters. It is intentionally independent from the flows'
// today-only CompletedDates checkboxes.
func (s *ProgressState) TotalFlowCompletions() int {
	total := 0
	for _, e := range s.History {
		total += e.Flows
	}
	return total
}

// LogActivity prepends an entry, trimming the log to its cap.
func (s *ProgressState) LogActivity(message string, at time.Time) {
	s.Activity = append([]ActivityEntry{{Message: message, Timestamp: at}}, s.Activity...)
	if len(s.Activity) > ActivityLogCap {
		s.Activity = s.Activity[:ActivityLogCap]
	}
}
