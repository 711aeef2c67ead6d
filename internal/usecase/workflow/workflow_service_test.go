package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/domain/repositories"
	"github.com/g37/meeting-manager/internal/infrastructure/external/automation"
	usecaseErrors "github.com/g37/meeting-manager/internal/usecase/errors"
)

// fakeActionRepo is an in-memory PendingActionRepository.
type fakeActionRepo struct {
	mu      sync.Mutex
	actions map[uuid.UUID]*entities.PendingAction
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{actions: make(map[uuid.UUID]*entities.PendingAction)}
}

func (r *fakeActionRepo) Create(ctx context.Context, action *entities.PendingAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *action
	r.actions[action.ID] = &cp
	return nil
}

func (r *fakeActionRepo) CreateIfExecutionAbsent(ctx context.Context, action *entities.PendingAction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if action.ExternalExecutionID != nil {
		for _, existing := range r.actions {
			if existing.ExternalExecutionID != nil && *existing.ExternalExecutionID == *action.ExternalExecutionID {
				return false, nil
			}
		}
	}
	cp := *action
	r.actions[action.ID] = &cp
	return true, nil
}

func (r *fakeActionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.PendingAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	action, ok := r.actions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *action
	return &cp, nil
}

func (r *fakeActionRepo) FindByMeeting(ctx context.Context, meetingID string) ([]*entities.PendingAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.PendingAction
	for _, action := range r.actions {
		if action.MeetingID == meetingID {
			cp := *action
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeActionRepo) List(ctx context.Context, filters repositories.PendingActionFilters) ([]*entities.PendingAction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.PendingAction
	for _, action := range r.actions {
		cp := *action
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeActionRepo) Update(ctx context.Context, action *entities.PendingAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[action.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *action
	r.actions[action.ID] = &cp
	return nil
}

func (r *fakeActionRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.ActionStatus, next entities.ActionStatus, mutate func(*entities.PendingAction)) (*entities.PendingAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	action, ok := r.actions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	allowed := false
	for _, st := range from {
		if action.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, entities.ErrInvalidTransition
	}
	action.Status = next
	if mutate != nil {
		mutate(action)
	}
	cp := *action
	return &cp, nil
}

func (r *fakeActionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.actions, id)
	return nil
}

func (r *fakeActionRepo) CountByStatus(ctx context.Context, userID int64) (repositories.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(repositories.StatusCounts)
	for _, action := range r.actions {
		counts[action.Status]++
	}
	return counts, nil
}

func (r *fakeActionRepo) CountOverdue(ctx context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var n int64
	for _, action := range r.actions {
		if action.Overdue(now) {
			n++
		}
	}
	return n, nil
}

type fakeMeetingLoader struct {
	meeting *entities.Meeting
	err     error
}

func (f *fakeMeetingLoader) GetMeeting(ctx context.Context, meetingID string) (*entities.Meeting, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.meeting, nil
}

type fakeAutomation struct {
	available  bool
	triggerErr error
	triggered  []map[string]interface{}
}

func (f *fakeAutomation) Available() bool { return f.available }
func (f *fakeAutomation) GetEvents(ctx context.Context) ([]automation.Event, error) {
	return nil, nil
}
func (f *fakeAutomation) GetEventDetails(ctx context.Context, eventID string) (*automation.Event, error) {
	return nil, nil
}
func (f *fakeAutomation) GetPendingOperations(ctx context.Context, eventID string) ([]automation.Operation, error) {
	return nil, nil
}
func (f *fakeAutomation) TriggerOperation(ctx context.Context, payload map[string]interface{}) error {
	f.triggered = append(f.triggered, payload)
	return f.triggerErr
}

func newTestService(repo *fakeActionRepo) *WorkflowService {
	return NewWorkflowService(repo, &fakeMeetingLoader{}, nil, zap.NewNop(), nil)
}

func seedAction(t *testing.T, repo *fakeActionRepo, status entities.ActionStatus) uuid.UUID {
	t.Helper()
	action := &entities.PendingAction{
		ID:     uuid.New(),
		Title:  "follow up with vendor",
		Status: status,
	}
	if err := repo.Create(context.Background(), action); err != nil {
		t.Fatal(err)
	}
	return action.ID
}

func TestCreateInitialStatus(t *testing.T) {
	repo := newFakeActionRepo()
	svc := newTestService(repo)

	action, err := svc.Create(context.Background(), CreateInput{Title: "draft minutes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Status != entities.ActionStatusNew {
		t.Errorf("status = %q, want NEW without approval", action.Status)
	}

	action, err = svc.Create(context.Background(), CreateInput{Title: "budget signoff", ApprovalRequired: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Status != entities.ActionStatusPendingApproval {
		t.Errorf("status = %q, want PENDING_APPROVAL with approval required", action.Status)
	}
	if action.Priority != entities.PriorityMedium || action.ActionType != entities.ActionTypeTask {
		t.Errorf("defaults not applied: %q %q", action.Priority, action.ActionType)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := newTestService(newFakeActionRepo())
	if _, err := svc.Create(context.Background(), CreateInput{Title: "  "}); !errors.Is(err, usecaseErrors.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestApproveRecordsDecision(t *testing.T) {
	repo := newFakeActionRepo()
	svc := newTestService(repo)
	id := seedAction(t, repo, entities.ActionStatusPendingApproval)

	action, err := svc.Approve(context.Background(), id, 7, "looks good")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Status != entities.ActionStatusApproved {
		t.Errorf("status = %q, want APPROVED", action.Status)
	}
	if action.Decision == nil || !action.Decision.Approved || action.Decision.DecidedByID != 7 {
		t.Errorf("decision not recorded: %+v", action.Decision)
	}
}

func TestApproveWrongStateNoMutation(t *testing.T) {
	repo := newFakeActionRepo()
	svc := newTestService(repo)
	id := seedAction(t, repo, entities.ActionStatusNew)

	if _, err := svc.Approve(context.Background(), id, 7, ""); !errors.Is(err, usecaseErrors.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	action, _ := repo.FindByID(context.Background(), id)
	if action.Status != entities.ActionStatusNew {
		t.Errorf("illegal transition mutated state to %q", action.Status)
	}
	if action.Decision != nil {
		t.Error("illegal transition recorded a decision")
	}
}

func TestRejectRequiresReason(t *testing.T) {
	repo := newFakeActionRepo()
	svc := newTestService(repo)
	id := seedAction(t, repo, entities.ActionStatusPendingApproval)

	if _, err := svc.Reject(context.Background(), id, 7, "   "); !errors.Is(err, usecaseErrors.ErrRejectReasonRequired) {
		t.Fatalf("err = %v, want ErrRejectReasonRequired", err)
	}
	action, _ := repo.FindByID(context.Background(), id)
	if action.Status != entities.ActionStatusPendingApproval {
		t.Errorf("empty-reason reject mutated state to %q", action.Status)
	}

	rejected, err := svc.Reject(context.Background(), id, 7, "not needed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejected.Status != entities.ActionStatusRejected {
		t.Errorf("status = %q, want REJECTED", rejected.Status)
	}
	if rejected.Decision == nil || rejected.Decision.Approved || rejected.Decision.Notes != "not needed" {
		t.Errorf("rejection decision not recorded: %+v", rejected.Decision)
	}
}

func TestCompleteFromApprovedAndActive(t *testing.T) {
	repo := newFakeActionRepo()
	svc := newTestService(repo)

	approved := seedAction(t, repo, entities.ActionStatusApproved)
	action, err := svc.Complete(context.Background(), approved, "done early")
	if err != nil {
		t.Fatalf("complete from APPROVED: %v", err)
	}
	if action.Status != entities.ActionStatusComplete || action.CompletedAt == nil {
		t.Errorf("completion not recorded: %q %v", action.Status, action.CompletedAt)
	}
	if action.CompletionNotes != "done early" {
		t.Errorf("completion notes = %q", action.CompletionNotes)
	}

	active := seedAction(t, repo, entities.ActionStatusActive)
	if _, err := svc.Complete(context.Background(), active, ""); err != nil {
		t.Fatalf("complete from ACTIVE: %v", err)
	}

	fresh := seedAction(t, repo, entities.ActionStatusNew)
	if _, err := svc.Complete(context.Background(), fresh, ""); !errors.Is(err, usecaseErrors.ErrInvalidTransition) {
		t.Fatalf("complete from NEW: err = %v, want ErrInvalidTransition", err)
	}
}

func TestActivateOnlyFromApproved(t *testing.T) {
	repo := newFakeActionRepo()
	svc := newTestService(repo)

	id := seedAction(t, repo, entities.ActionStatusApproved)
	action, err := svc.Activate(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Status != entities.ActionStatusActive {
		t.Errorf("status = %q, want ACTIVE", action.Status)
	}

	pending := seedAction(t, repo, entities.ActionStatusPendingApproval)
	if _, err := svc.Activate(context.Background(), pending); !errors.Is(err, usecaseErrors.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelNonTerminalOnly(t *testing.T) {
	repo := newFakeActionRepo()
	svc := newTestService(repo)

	id := seedAction(t, repo, entities.ActionStatusActive)
	action, err := svc.Cancel(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Status != entities.ActionStatusCancelled || action.CancelledAt == nil {
		t.Errorf("cancellation not recorded: %q %v", action.Status, action.CancelledAt)
	}

	done := seedAction(t, repo, entities.ActionStatusComplete)
	if _, err := svc.Cancel(context.Background(), done); !errors.Is(err, usecaseErrors.ErrInvalidTransition) {
		t.Fatalf("cancel of terminal action: err = %v, want ErrInvalidTransition", err)
	}
}

func TestBulkApprovePartialFailure(t *testing.T) {
	repo := newFakeActionRepo()
	svc := newTestService(repo)

	a := seedAction(t, repo, entities.ActionStatusPendingApproval)
	b := uuid.New() // does not exist
	c := seedAction(t, repo, entities.ActionStatusPendingApproval)

	results := svc.BulkApprove(context.Background(), []uuid.UUID{a, b, c}, 7, "")
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !results[0].OK || results[0].Status != entities.ActionStatusApproved {
		t.Errorf("result a = %+v", results[0])
	}
	if results[1].OK || results[1].Error == "" {
		t.Errorf("missing id must be reported failed, got %+v", results[1])
	}
	if !results[2].OK || results[2].Status != entities.ActionStatusApproved {
		t.Errorf("result c = %+v", results[2])
	}

	for _, id := range []uuid.UUID{a, c} {
		action, _ := repo.FindByID(context.Background(), id)
		if action.Status != entities.ActionStatusApproved {
			t.Errorf("action %s status = %q, want APPROVED", id, action.Status)
		}
	}
}

func TestBulkRejectEmptyReason(t *testing.T) {
	repo := newFakeActionRepo()
	svc := newTestService(repo)
	id := seedAction(t, repo, entities.ActionStatusPendingApproval)

	if _, err := svc.BulkReject(context.Background(), []uuid.UUID{id}, 7, ""); !errors.Is(err, usecaseErrors.ErrRejectReasonRequired) {
		t.Fatalf("err = %v, want ErrRejectReasonRequired", err)
	}
	action, _ := repo.FindByID(context.Background(), id)
	if action.Status != entities.ActionStatusPendingApproval {
		t.Errorf("state mutated to %q", action.Status)
	}
}

func TestCreateFromMeeting(t *testing.T) {
	repo := newFakeActionRepo()
	due := time.Now().Add(48 * time.Hour)
	loader := &fakeMeetingLoader{meeting: &entities.Meeting{
		ID: "primary:42",
		ActionItems: []entities.ActionItem{
			{Title: "send deck", Priority: "high", AssignedTo: "Alice", DueDate: &due},
			{Title: "already done", Completed: true},
			{Title: "book room", Priority: "someday"},
		},
	}}
	svc := NewWorkflowService(repo, loader, nil, zap.NewNop(), nil)

	created, err := svc.CreateFromMeeting(context.Background(), "primary:42", 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("completed items must be skipped, got %d actions", len(created))
	}
	for _, action := range created {
		if action.Status != entities.ActionStatusPendingApproval {
			t.Errorf("meeting-derived action status = %q, want PENDING_APPROVAL", action.Status)
		}
		if action.Source != entities.ActionSourceMeeting {
			t.Errorf("source = %q, want MEETING", action.Source)
		}
	}
	if created[0].Priority != entities.PriorityHigh {
		t.Errorf("priority = %q, want HIGH", created[0].Priority)
	}
	if created[1].Priority != entities.PriorityMedium {
		t.Errorf("unknown priority should default to MEDIUM, got %q", created[1].Priority)
	}
}

func TestCreateFromMeetingNoItems(t *testing.T) {
	loader := &fakeMeetingLoader{meeting: &entities.Meeting{ID: "primary:9"}}
	svc := NewWorkflowService(newFakeActionRepo(), loader, nil, zap.NewNop(), nil)

	if _, err := svc.CreateFromMeeting(context.Background(), "primary:9", 1, 7); !errors.Is(err, usecaseErrors.ErrNoActionItems) {
		t.Fatalf("err = %v, want ErrNoActionItems", err)
	}
}

func TestApproveTriggersAutomation(t *testing.T) {
	repo := newFakeActionRepo()
	auto := &fakeAutomation{available: true}
	svc := NewWorkflowService(repo, &fakeMeetingLoader{}, auto, zap.NewNop(), nil)

	execID := "exec-55"
	action := &entities.PendingAction{
		ID:                  uuid.New(),
		Title:               "update CRM contact",
		Status:              entities.ActionStatusPendingApproval,
		Source:              entities.ActionSourceN8N,
		ExternalExecutionID: &execID,
	}
	if err := repo.Create(context.Background(), action); err != nil {
		t.Fatal(err)
	}

	approved, err := svc.Approve(context.Background(), action.ID, 7, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(auto.triggered) != 1 || auto.triggered[0]["execution_id"] != execID {
		t.Fatalf("trigger payloads = %v", auto.triggered)
	}
	if approved.ExternalWorkflowStatus != "TRIGGERED" {
		t.Errorf("workflow status = %q, want TRIGGERED", approved.ExternalWorkflowStatus)
	}
}

func TestApproveTriggerFailureIsRecordedNotPropagated(t *testing.T) {
	repo := newFakeActionRepo()
	auto := &fakeAutomation{available: true, triggerErr: errors.New("webhook 502")}
	svc := NewWorkflowService(repo, &fakeMeetingLoader{}, auto, zap.NewNop(), nil)

	execID := "exec-56"
	action := &entities.PendingAction{
		ID:                  uuid.New(),
		Title:               "notify channel",
		Status:              entities.ActionStatusPendingApproval,
		Source:              entities.ActionSourceN8N,
		ExternalExecutionID: &execID,
	}
	if err := repo.Create(context.Background(), action); err != nil {
		t.Fatal(err)
	}

	approved, err := svc.Approve(context.Background(), action.ID, 7, "")
	if err != nil {
		t.Fatalf("trigger failure must not fail the approval: %v", err)
	}
	if approved.Status != entities.ActionStatusApproved {
		t.Errorf("status = %q, want APPROVED", approved.Status)
	}
	if approved.ExternalWorkflowStatus != "FAILED" || approved.ExecutionError == "" {
		t.Errorf("trigger failure not recorded: %q %q", approved.ExternalWorkflowStatus, approved.ExecutionError)
	}
}

func TestStatistics(t *testing.T) {
	repo := newFakeActionRepo()
	svc := newTestService(repo)

	seed := func(status entities.ActionStatus, n int) {
		for i := 0; i < n; i++ {
			seedAction(t, repo, status)
		}
	}
	seed(entities.ActionStatusNew, 2)
	seed(entities.ActionStatusPendingApproval, 1)
	seed(entities.ActionStatusActive, 2)
	seed(entities.ActionStatusComplete, 3)
	seed(entities.ActionStatusRejected, 1)
	seed(entities.ActionStatusCancelled, 1)

	stats, err := svc.Statistics(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 10 {
		t.Errorf("total = %d, want 10", stats.Total)
	}
	if stats.Pending != 3 {
		t.Errorf("pending = %d, want 3", stats.Pending)
	}
	if stats.Active != 2 {
		t.Errorf("active = %d, want 2", stats.Active)
	}
	if stats.Completed != 3 || stats.Rejected != 1 {
		t.Errorf("completed = %d rejected = %d", stats.Completed, stats.Rejected)
	}
	if stats.CompletionRate != 30 {
		t.Errorf("completionRate = %v, want 30", stats.CompletionRate)
	}
	// 5 decided (2 active + 3 complete approved-side, 1 rejected): 5/6.
	want := 100 * 5.0 / 6.0
	if stats.ApprovalRate < want-0.001 || stats.ApprovalRate > want+0.001 {
		t.Errorf("approvalRate = %v, want %v", stats.ApprovalRate, want)
	}
}

func TestDeleteMissingAction(t *testing.T) {
	svc := newTestService(newFakeActionRepo())
	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, usecaseErrors.ErrActionNotFound) {
		t.Fatalf("err = %v, want ErrActionNotFound", err)
	}
}
