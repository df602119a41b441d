package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

// White-box tests: ticks are injected directly instead of waiting out
// the one-second clocks.

type stubFlowRepo struct {
	mu    sync.Mutex
	store map[string]*domain.Flow
}

func newStubFlowRepo() *stubFlowRepo {
	return &stubFlowRepo{store: make(map[string]*domain.Flow)}
}

func (r *stubFlowRepo) Create(ctx context.Context, flow *domain.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *flow
	r.store[flow.ID] = &clone
	return nil
}

func (r *stubFlowRepo) GetByID(ctx context.Context, id string) (*domain.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.store[id]
	if !ok {
		return nil, domain.ErrFlowNotFound
	}
	clone := *f
	clone.CompletedDates = append([]string{}, f.CompletedDates...)
	return &clone, nil
}

func (r *stubFlowRepo) List(ctx context.Context) ([]*domain.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*domain.Flow, 0, len(r.store))
	for _, f := range r.store {
		clone := *f
		list = append(list, &clone)
	}
	return list, nil
}

func (r *stubFlowRepo) Update(ctx context.Context, flow *domain.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[flow.ID]; !ok {
		return domain.ErrFlowNotFound
	}
	clone := *flow
	clone.CompletedDates = append([]string{}, flow.CompletedDates...)
	r.store[flow.ID] = &clone
	return nil
}

func (r *stubFlowRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

type stubMasteryRepo struct {
	mu    sync.Mutex
	store map[string]*domain.MasteryGoal
}

func newStubMasteryRepo() *stubMasteryRepo {
	return &stubMasteryRepo{store: make(map[string]*domain.MasteryGoal)}
}

func (r *stubMasteryRepo) Create(ctx context.Context, goal *domain.MasteryGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *goal
	r.store[goal.ID] = &clone
	return nil
}

func (r *stubMasteryRepo) GetByID(ctx context.Context, id string) (*domain.MasteryGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.store[id]
	if !ok {
		return nil, domain.ErrMasteryNotFound
	}
	clone := *g
	return &clone, nil
}

func (r *stubMasteryRepo) List(ctx context.Context) ([]*domain.MasteryGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*domain.MasteryGoal, 0, len(r.store))
	for _, g := range r.store {
		clone := *g
		list = append(list, &clone)
	}
	return list, nil
}

func (r *stubMasteryRepo) Update(ctx context.Context, goal *domain.MasteryGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[goal.ID]; !ok {
		return domain.ErrMasteryNotFound
	}
	clone := *goal
	r.store[goal.ID] = &clone
	return nil
}

func (r *stubMasteryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

type stubProgressRepo struct {
	mu    sync.Mutex
	saved *domain.ProgressState
}

func (r *stubProgressRepo) Get(ctx context.Context) (*domain.ProgressState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		return domain.NewProgressState(), nil
	}
	return r.saved, nil
}

func (r *stubProgressRepo) Save(ctx context.Context, state *domain.ProgressState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = state
	return nil
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *stubNotifier) Notify(message, severity string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, severity+": "+message)
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// tickStep injects one second into the current step, the way the armed
// clock callback would deliver it.
func tickStep(r *RunnerService) {
	r.mu.Lock()
	sess := r.sess
	idx := 0
	if sess != nil {
		idx = sess.stepIndex
	}
	r.mu.Unlock()
	r.stepTick(sess, idx)
}

func tickBreath(r *RunnerService) {
	r.mu.Lock()
	var b *breathingState
	if r.sess != nil {
		b = r.sess.breathing
	}
	r.mu.Unlock()
	r.breathTick(b)
}

func newRunnerFixture(t *testing.T, steps []domain.Step) (*RunnerService, *stubFlowRepo, *LedgerService, *domain.Flow) {
	t.Helper()

	flowRepo := newStubFlowRepo()
	masteryRepo := newStubMasteryRepo()
	ledger := NewLedgerService(&stubProgressRepo{}, masteryRepo, &stubNotifier{})
	runner := NewRunnerService(flowRepo, ledger, &stubNotifier{})

	flow, err := domain.NewFlow("Practice", "", steps, domain.Schedule{})
	assert.NoError(t, err)
	assert.NoError(t, flowRepo.Create(context.Background(), flow))

	return runner, flowRepo, ledger, flow
}

func TestRunnerService_TimerAndRepsRun(t *testing.T) {
	ctx := context.Background()
	runner, flowRepo, ledger, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepTimer, Title: "Sit", Duration: 5},
		{Type: domain.StepReps, Title: "Pushups", TargetReps: 12},
	})

	view, err := runner.Start(ctx, flow.ID)
	assert.NoError(t, err)
	assert.True(t, view.Active)
	assert.Equal(t, 0, view.StepIndex)
	assert.Equal(t, 300, view.RemainingSeconds)

	// Ten seconds pass; advancing early still credits the full
	// configured duration.
	for i := 0; i < 10; i++ {
		tickStep(runner)
	}
	assert.Equal(t, 290, runner.State().RemainingSeconds)

	view, err = runner.Advance(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, view.StepIndex)
	assert.Equal(t, 300, ledger.Overview().Stats.TotalPracticeSeconds)

	// No taps: the target count is credited on advance.
	view, err = runner.Advance(ctx)
	assert.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Equal(t, 12, ledger.Overview().Stats.TotalReps)

	// Two step rewards plus the full flow reward.
	overview := ledger.Overview()
	totalXP := overview.XP
	for level := 1; level < overview.Level; level++ {
		totalXP += domain.XPThreshold(level)
	}
	assert.Equal(t, 2*domain.XPPerStep+domain.XPFlowComplete, totalXP)
	assert.Equal(t, 1, ledger.Overview().FlowsCompleted)

	// Completion checks today's box on the stored flow.
	stored, _ := flowRepo.GetByID(ctx, flow.ID)
	assert.Len(t, stored.CompletedDates, 1)
}

func TestRunnerService_TappedRepsOverrideTarget(t *testing.T) {
	ctx := context.Background()
	runner, _, ledger, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepReps, Title: "Pushups", TargetReps: 12},
	})

	runner.Start(ctx, flow.ID)

	for i := 0; i < 15; i++ {
		_, err := runner.Tap()
		assert.NoError(t, err)
	}

	runner.Advance(ctx)

	assert.Equal(t, 15, ledger.Overview().Stats.TotalReps)
}

func TestRunnerService_TimerExpiryDoesNotAutoAdvance(t *testing.T) {
	ctx := context.Background()
	runner, _, _, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepTimer, Title: "Breathe", Duration: 1},
		{Type: domain.StepStatic, Title: "Reflect"},
	})

	runner.Start(ctx, flow.ID)

	for i := 0; i < 60; i++ {
		tickStep(runner)
	}

	view := runner.State()
	assert.Equal(t, 0, view.RemainingSeconds)
	assert.Equal(t, 0, view.StepIndex)
	assert.True(t, view.Active)

	// Extra ticks after expiry change nothing.
	tickStep(runner)
	assert.Equal(t, 0, runner.State().RemainingSeconds)
}

func TestRunnerService_StaleTickIsDiscarded(t *testing.T) {
	ctx := context.Background()
	runner, _, _, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepTimer, Title: "Sit", Duration: 5},
		{Type: domain.StepTimer, Title: "Stretch", Duration: 2},
	})

	runner.Start(ctx, flow.ID)

	runner.mu.Lock()
	sess := runner.sess
	idx := sess.stepIndex
	runner.mu.Unlock()

	// A tick bound to the first step but delivered only after the
	// transition must not shave a second off the next step.
	runner.Advance(ctx)
	assert.Equal(t, 120, runner.State().RemainingSeconds)

	runner.stepTick(sess, idx)
	assert.Equal(t, 120, runner.State().RemainingSeconds)

	// Same for a tick bound to a session that Start has discarded.
	runner.Start(ctx, flow.ID)
	runner.stepTick(sess, idx)
	assert.Equal(t, 300, runner.State().RemainingSeconds)
}

func TestRunnerService_StopwatchCreditsElapsed(t *testing.T) {
	ctx := context.Background()
	runner, _, ledger, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepStopwatch, Title: "Plank"},
	})

	runner.Start(ctx, flow.ID)

	for i := 0; i < 45; i++ {
		tickStep(runner)
	}
	assert.Equal(t, 45, runner.State().ElapsedSeconds)

	runner.Advance(ctx)

	assert.Equal(t, 45, ledger.Overview().Stats.TotalPracticeSeconds)
}

func TestRunnerService_PauseFreezesTicks(t *testing.T) {
	ctx := context.Background()
	runner, _, _, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepTimer, Title: "Sit", Duration: 5},
	})

	runner.Start(ctx, flow.ID)
	assert.NoError(t, runner.Pause())

	for i := 0; i < 10; i++ {
		tickStep(runner)
	}
	assert.Equal(t, 300, runner.State().RemainingSeconds)

	assert.NoError(t, runner.Resume())
	tickStep(runner)
	assert.Equal(t, 299, runner.State().RemainingSeconds)
}

func TestRunnerService_SkipEmitsNothing(t *testing.T) {
	ctx := context.Background()
	runner, _, ledger, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepTimer, Title: "Sit", Duration: 5},
		{Type: domain.StepReps, Title: "Pushups", TargetReps: 12},
	})

	runner.Start(ctx, flow.ID)

	view, err := runner.Skip(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, view.StepIndex)

	view, err = runner.Skip(ctx)
	assert.NoError(t, err)
	assert.True(t, view.Completed)

	// No step outcomes, but reaching the end is still a completion.
	stats := ledger.Overview().Stats
	assert.Equal(t, 0, stats.TotalPracticeSeconds)
	assert.Equal(t, 0, stats.TotalReps)
	assert.Equal(t, 1, ledger.Overview().FlowsCompleted)
}

func TestRunnerService_AbortDiscardsEverything(t *testing.T) {
	ctx := context.Background()
	runner, _, ledger, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepTimer, Title: "Sit", Duration: 5},
	})

	runner.Start(ctx, flow.ID)
	for i := 0; i < 30; i++ {
		tickStep(runner)
	}

	assert.NoError(t, runner.Abort())

	assert.False(t, runner.State().Active)
	assert.Equal(t, 0, ledger.Overview().XP)
	assert.Equal(t, 0, ledger.Overview().Stats.TotalPracticeSeconds)

	assert.ErrorIs(t, runner.Abort(), ErrNoActiveSession)
}

func TestRunnerService_ZeroStepFlowCompletesImmediately(t *testing.T) {
	ctx := context.Background()
	flowRepo := newStubFlowRepo()
	ledger := NewLedgerService(&stubProgressRepo{}, newStubMasteryRepo(), &stubNotifier{})
	runner := NewRunnerService(flowRepo, ledger, &stubNotifier{})

	// A stored flow can end up stepless through imports; the runner
	// must absorb it as instant completion.
	flow := &domain.Flow{ID: "bare", Title: "Bare", Steps: nil, CompletedDates: []string{}}
	flowRepo.Create(ctx, flow)

	view, err := runner.Start(ctx, "bare")

	assert.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Equal(t, 1, ledger.Overview().FlowsCompleted)
}

func TestRunnerService_StartDiscardsPriorSession(t *testing.T) {
	ctx := context.Background()
	runner, _, ledger, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepTimer, Title: "Sit", Duration: 5},
	})

	runner.Start(ctx, flow.ID)
	for i := 0; i < 30; i++ {
		tickStep(runner)
	}

	view, err := runner.Start(ctx, flow.ID)

	assert.NoError(t, err)
	assert.Equal(t, 300, view.RemainingSeconds)
	assert.Equal(t, 0, ledger.Overview().Stats.TotalPracticeSeconds)
}

func TestRunnerService_MasteryLink(t *testing.T) {
	ctx := context.Background()

	flowRepo := newStubFlowRepo()
	masteryRepo := newStubMasteryRepo()
	ledger := NewLedgerService(&stubProgressRepo{}, masteryRepo, &stubNotifier{})
	runner := NewRunnerService(flowRepo, ledger, &stubNotifier{})

	goal, _ := domain.NewMasteryGoal("Pushups", domain.MasteryReps, "", 100)
	masteryRepo.Create(ctx, goal)

	flow, _ := domain.NewFlow("Practice", "", []domain.Step{
		{Type: domain.StepReps, Title: "Pushups", TargetReps: 20, MasteryID: goal.ID},
	}, domain.Schedule{})
	flowRepo.Create(ctx, flow)

	runner.Start(ctx, flow.ID)
	runner.Advance(ctx)

	stored, _ := masteryRepo.GetByID(ctx, goal.ID)
	assert.Equal(t, float64(20), stored.CurrentUnits)
}

func TestRunnerService_StaleMasteryLinkIsNotFatal(t *testing.T) {
	ctx := context.Background()
	runner, _, ledger, _ := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepTimer, Title: "Sit", Duration: 5},
	})

	flow, _ := domain.NewFlow("Practice", "", []domain.Step{
		{Type: domain.StepReps, Title: "Pushups", TargetReps: 10, MasteryID: "deleted-goal"},
	}, domain.Schedule{})
	runner.flowRepo.(*stubFlowRepo).Create(ctx, flow)

	runner.Start(ctx, flow.ID)
	view, err := runner.Advance(ctx)

	assert.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Equal(t, 10, ledger.Overview().Stats.TotalReps)
}

func TestRunnerService_Breathing(t *testing.T) {
	ctx := context.Background()
	runner, _, _, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepBreathing, Title: "Box Breathing", Pattern: "box"},
	})

	runner.Start(ctx, flow.ID)

	t.Run("Success: Step pattern is used when none is named", func(t *testing.T) {
		view, err := runner.StartBreathing("")

		assert.NoError(t, err)
		assert.NotNil(t, view.Breathing)
		assert.Equal(t, "box", view.Breathing.Pattern)
		assert.Equal(t, domain.PhaseInhale, view.Breathing.Phase)
		assert.Equal(t, 4, view.Breathing.SecondsLeft)
	})

	t.Run("Success: Ticks advance the phase cycle", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			tickBreath(runner)
		}

		view := runner.State()
		assert.Equal(t, domain.PhaseHold1, view.Breathing.Phase)
	})

	t.Run("Success: Stop clears the sub-machine", func(t *testing.T) {
		view, err := runner.StopBreathing()

		assert.NoError(t, err)
		assert.Nil(t, view.Breathing)
	})

	t.Run("Fail: Unknown pattern", func(t *testing.T) {
		_, err := runner.StartBreathing("galactic")
		assert.ErrorIs(t, err, domain.ErrPatternNotFound)
	})
}

func TestRunnerService_GuardErrors(t *testing.T) {
	ctx := context.Background()
	runner, _, _, flow := newRunnerFixture(t, []domain.Step{
		{Type: domain.StepTimer, Title: "Sit", Duration: 5},
	})

	t.Run("Fail: Operations without a session", func(t *testing.T) {
		_, err := runner.Advance(ctx)
		assert.ErrorIs(t, err, ErrNoActiveSession)

		_, err = runner.Tap()
		assert.ErrorIs(t, err, ErrNoActiveSession)

		assert.ErrorIs(t, runner.Pause(), ErrNoActiveSession)
	})

	t.Run("Fail: Tap on a non-reps step", func(t *testing.T) {
		runner.Start(ctx, flow.ID)

		_, err := runner.Tap()
		assert.ErrorIs(t, err, ErrNotRepsStep)
	})

	t.Run("Fail: Breathing on a non-breathing step", func(t *testing.T) {
		_, err := runner.StartBreathing("box")
		assert.ErrorIs(t, err, ErrNotBreathing)
	})

	t.Run("Fail: Start with unknown flow", func(t *testing.T) {
		_, err := runner.Start(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})
}
