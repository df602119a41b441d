package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
	"github.com/ritmoapp/ritmo-engine/internal/core/services"
)

type snapshotFixture struct {
	svc      *services.SnapshotService
	flowRepo *MockFlowRepo
	ledger   *services.LedgerService
	pomodoro *services.PomodoroService
}

func newSnapshotFixture() *snapshotFixture {
	flowRepo := NewMockFlowRepo()
	eventRepo := NewMockEventRepo()
	workingRepo := NewMockWorkingRepo()
	ledger, _, masteryRepo, notifier := newTestLedger()
	pomodoro := services.NewPomodoroService(ledger, notifier)
	runner := services.NewRunnerService(flowRepo, ledger, notifier)

	return &snapshotFixture{
		svc:      services.NewSnapshotService(flowRepo, eventRepo, masteryRepo, workingRepo, ledger, pomodoro, runner),
		flowRepo: flowRepo,
		ledger:   ledger,
		pomodoro: pomodoro,
	}
}

func TestSnapshotService_ExportImport(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Full round trip restores collections and progress", func(t *testing.T) {
		source := newSnapshotFixture()

		flow, _ := domain.NewFlow("Routine", "", []domain.Step{{Type: domain.StepStatic, Title: "Sit"}}, domain.Schedule{})
		source.flowRepo.Create(ctx, flow)
		source.ledger.GrantXP(ctx, 160, "2026-03-02")
		source.svc.AddTask("Water the plants")
		source.svc.AddJournalEntry("Day one", "it begins", "")

		snap, err := source.svc.Export(ctx)
		assert.NoError(t, err)
		assert.Len(t, snap.Flows, 1)
		assert.Len(t, snap.Tasks, 1)
		assert.Len(t, snap.Journal, 1)
		assert.Equal(t, 2, snap.Progress.Progress.Level)

		target := newSnapshotFixture()
		assert.NoError(t, target.svc.Import(ctx, snap))

		flows, _ := target.flowRepo.List(ctx)
		assert.Len(t, flows, 1)
		assert.Equal(t, "Routine", flows[0].Title)
		assert.Equal(t, 2, target.ledger.Overview().Level)
		assert.Len(t, target.svc.Tasks(), 1)
		assert.Len(t, target.svc.Journal(), 1)
	})

	t.Run("Success: Import replaces, never merges", func(t *testing.T) {
		target := newSnapshotFixture()
		stale, _ := domain.NewFlow("Stale", "", []domain.Step{{Type: domain.StepStatic, Title: "Old"}}, domain.Schedule{})
		target.flowRepo.Create(ctx, stale)

		assert.NoError(t, target.svc.Import(ctx, &domain.Snapshot{Settings: domain.DefaultSettings()}))

		flows, _ := target.flowRepo.List(ctx)
		assert.Empty(t, flows)
	})

	t.Run("Success: Running pomodoro is imported paused", func(t *testing.T) {
		target := newSnapshotFixture()

		snap := &domain.Snapshot{
			Settings: domain.DefaultSettings(),
			Pomodoro: domain.PomodoroSnapshot{
				TimeRemaining: 300,
				TotalTime:     1500,
				Mode:          services.PomodoroFocus,
				IsRunning:     true,
			},
		}
		assert.NoError(t, target.svc.Import(ctx, snap))

		view := target.pomodoro.State()
		assert.Equal(t, 300, view.TimeRemaining)
		assert.False(t, view.IsRunning)
	})

	t.Run("Success: Nil snapshot resets to defaults", func(t *testing.T) {
		target := newSnapshotFixture()
		target.svc.AddTask("leftover")

		assert.NoError(t, target.svc.Import(ctx, nil))

		assert.Empty(t, target.svc.Tasks())
		assert.Equal(t, domain.DefaultSettings(), target.svc.Settings())
		assert.Len(t, target.svc.Patterns(), len(domain.DefaultPatterns()))
	})
}

func TestSnapshotService_Tasks(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Completing a task counts toward the badge tally", func(t *testing.T) {
		f := newSnapshotFixture()
		task := f.svc.AddTask("Stretch")

		toggled, err := f.svc.ToggleTask(ctx, task.ID)

		assert.NoError(t, err)
		assert.Equal(t, services.TaskDone, toggled.Status)
		assert.NotNil(t, toggled.CompletedAt)
		assert.Equal(t, 1, f.ledger.Overview().Stats.TasksCompleted)
	})

	t.Run("Success: Un-completing keeps the earlier credit", func(t *testing.T) {
		f := newSnapshotFixture()
		task := f.svc.AddTask("Stretch")
		f.svc.ToggleTask(ctx, task.ID)

		toggled, err := f.svc.ToggleTask(ctx, task.ID)

		assert.NoError(t, err)
		assert.Equal(t, services.TaskTodo, toggled.Status)
		assert.Nil(t, toggled.CompletedAt)
		assert.Equal(t, 1, f.ledger.Overview().Stats.TasksCompleted)
	})

	t.Run("Success: Delete removes the card", func(t *testing.T) {
		f := newSnapshotFixture()
		task := f.svc.AddTask("Stretch")

		assert.NoError(t, f.svc.DeleteTask(task.ID))
		assert.Empty(t, f.svc.Tasks())
	})

	t.Run("Fail: Unknown task", func(t *testing.T) {
		f := newSnapshotFixture()

		_, err := f.svc.ToggleTask(ctx, "ghost")
		assert.ErrorIs(t, err, services.ErrTaskNotFound)

		assert.ErrorIs(t, f.svc.DeleteTask("ghost"), services.ErrTaskNotFound)
	})
}

func TestSnapshotService_Patterns(t *testing.T) {
	t.Run("Success: Custom pattern joins the set", func(t *testing.T) {
		f := newSnapshotFixture()

		pattern, err := f.svc.AddPattern("wim hof", 2, 0, 1, 15)

		assert.NoError(t, err)
		assert.Equal(t, "wim hof", pattern.Name)
		assert.Len(t, f.svc.Patterns(), len(domain.DefaultPatterns())+1)
	})

	t.Run("Success: Same name replaces instead of duplicating", func(t *testing.T) {
		f := newSnapshotFixture()
		f.svc.AddPattern("custom", 4, 0, 4, 0)

		_, err := f.svc.AddPattern("custom", 6, 0, 6, 0)

		assert.NoError(t, err)
		assert.Len(t, f.svc.Patterns(), len(domain.DefaultPatterns())+1)
	})

	t.Run("Fail: Invalid durations", func(t *testing.T) {
		f := newSnapshotFixture()

		_, err := f.svc.AddPattern("bad", 0, 0, 4, 0)

		assert.ErrorIs(t, err, domain.ErrInvalidPattern)
	})
}

func TestSnapshotService_Settings(t *testing.T) {
	f := newSnapshotFixture()

	assert.Equal(t, domain.DefaultSettings(), f.svc.Settings())

	updated := f.svc.UpdateSettings(domain.Settings{SoundEnabled: false, HapticsEnabled: true, Theme: "light"})
	assert.Equal(t, "light", updated.Theme)
	assert.False(t, f.svc.Settings().SoundEnabled)

	// A blank theme falls back to the default.
	updated = f.svc.UpdateSettings(domain.Settings{})
	assert.Equal(t, "dark", updated.Theme)
}
