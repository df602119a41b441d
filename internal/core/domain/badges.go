package domain

// Badge is one unlockable achievement with its predicate over the
// whole progress snapshot. The catalog is fixed; unlocking is
// idempotent (already-unlocked badges are skipped).
type Badge struct {
	ID        string
	Name      string
	Condition func(s *ProgressState) bool
}

var BadgeCatalog = []Badge{
	{
		ID:   "apprentice",
		Name: "Apprentice (reach level 2)",
		Condition: func(s *ProgressState) bool {
			return s.Progress.Level >= 2
		},
	},
	{
		ID:   "streak-3",
		Name: "Kindling (3 day streak)",
		Condition: func(s *ProgressState) bool {
			return s.Progress.Streak >= 3
		},
	},
	{
		ID:   "streak-7",
		Name: "Steady Flame (7 day streak)",
		Condition: func(s *ProgressState) bool {
			return s.Progress.Streak >= 7
		},
	},
	{
		ID:   "flows-10",
		Name: "Practitioner (10 flows completed)",
		Condition: func(s *ProgressState) bool {
			return s.TotalFlowCompletions() >= 10
		},
	},
	{
		ID:   "first-working",
		Name: "Initiate (first working begun)",
		Condition: func(s *ProgressState) bool {
			return s.Stats.WorkingsCreated >= 1
		},
	},
	{
		ID:   "tasks-50",
		Name: "Finisher (50 tasks completed)",
		Condition: func(s *ProgressState) bool {
			return s.Stats.TasksCompleted >= 50
		},
	},
}

// EvaluateBadges unlocks every newly satisfied badge and returns them.
func EvaluateBadges(s *ProgressState) []Badge {
	var unlocked []Badge
	for _, b := range BadgeCatalog {
		if s.Progress.HasBadge(b.ID) {
			continue
		}
		if b.Condition(s) {
			s.Progress.Badges = append(s.Progress.Badges, b.ID)
			unlocked = append(unlocked, b)
		}
	}
	return unlocked
}
