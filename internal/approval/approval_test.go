package approval

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"rollcall/registry/internal/mailer"
	"rollcall/registry/internal/model"
	"rollcall/registry/internal/repository"
	"rollcall/registry/internal/repository/memory"
)

func seedPending(t *testing.T, store repository.Store, role model.Role, schoolID string) model.Account {
	t.Helper()
	account := model.Account{
		ID:             uuid.NewString(),
		Role:           role,
		FullName:       "Pat Doe",
		Email:          uuid.NewString() + "@example.local",
		PasswordHash:   "x",
		SchoolID:       &schoolID,
		ApprovalStatus: model.ApprovalPending,
		Status:         model.StatusActive,
		CreatedAt:      time.Now().UTC(),
	}
	if err := store.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func TestApprovePendingTeacher(t *testing.T) {
	store := memory.New()
	rec := &mailer.Recorder{}
	wf := NewWorkflow(store, rec)

	teacher := seedPending(t, store, model.RoleTeacher, "school-1")

	result, err := wf.Approve(context.Background(), teacher.ID, "school-1", "admin-1")
	if err != nil {
		t.Fatalf("approve error: %v", err)
	}
	if !regexp.MustCompile(`^TCH-\d{5}\d{2}$`).MatchString(result.GeneratedID) {
		t.Fatalf("unexpected staff id %q", result.GeneratedID)
	}
	if result.Account.ApprovalStatus != model.ApprovalApproved {
		t.Fatalf("expected approved status, got %s", result.Account.ApprovalStatus)
	}
	if result.Account.ApprovedAt == nil || result.Account.ApprovedBy == nil || *result.Account.ApprovedBy != "admin-1" {
		t.Fatalf("expected approval metadata set: %+v", result.Account)
	}
	if result.Account.StaffID == nil || *result.Account.StaffID != result.GeneratedID {
		t.Fatalf("expected staff id persisted")
	}

	sent := rec.Sent()
	if len(sent) != 1 || sent[0].To != teacher.Email {
		t.Fatalf("expected one approval email to %s, got %+v", teacher.Email, sent)
	}
	if !strings.Contains(sent[0].HTML, result.GeneratedID) {
		t.Fatalf("expected generated id in email body")
	}
}

func TestApprovePendingStudent(t *testing.T) {
	store := memory.New()
	wf := NewWorkflow(store, &mailer.Recorder{})

	student := seedPending(t, store, model.RoleStudent, "school-1")

	result, err := wf.Approve(context.Background(), student.ID, "school-1", "admin-1")
	if err != nil {
		t.Fatalf("approve error: %v", err)
	}
	if !regexp.MustCompile(`^STU-\d{6}\d{3}$`).MatchString(result.GeneratedID) {
		t.Fatalf("unexpected registration number %q", result.GeneratedID)
	}
	if result.Account.RegistrationNumber == nil || *result.Account.RegistrationNumber != result.GeneratedID {
		t.Fatalf("expected registration number persisted")
	}
}

func TestApproveTenantMismatch(t *testing.T) {
	store := memory.New()
	wf := NewWorkflow(store, &mailer.Recorder{})

	teacher := seedPending(t, store, model.RoleTeacher, "school-1")

	if _, err := wf.Approve(context.Background(), teacher.ID, "school-2", "admin-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for foreign tenant, got %v", err)
	}
}

func TestApproveAdminAccountRejected(t *testing.T) {
	store := memory.New()
	rec := &mailer.Recorder{}
	wf := NewWorkflow(store, rec)

	admin := seedPending(t, store, model.RoleAdmin, "school-1")

	if _, err := wf.Approve(context.Background(), admin.ID, "school-1", "admin-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for admin account, got %v", err)
	}

	account, err := store.GetAccountByID(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if account.ApprovalStatus != model.ApprovalPending {
		t.Fatalf("expected admin to stay pending, got %s", account.ApprovalStatus)
	}
	if len(rec.Sent()) != 0 {
		t.Fatalf("expected no email, got %+v", rec.Sent())
	}
}

func TestApproveUnknownAccount(t *testing.T) {
	store := memory.New()
	wf := NewWorkflow(store, &mailer.Recorder{})

	if _, err := wf.Approve(context.Background(), uuid.NewString(), "school-1", "admin-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApproveTwiceKeepsFirstIdentifier(t *testing.T) {
	store := memory.New()
	wf := NewWorkflow(store, &mailer.Recorder{})

	teacher := seedPending(t, store, model.RoleTeacher, "school-1")

	first, err := wf.Approve(context.Background(), teacher.ID, "school-1", "admin-1")
	if err != nil {
		t.Fatalf("first approve error: %v", err)
	}
	if _, err := wf.Approve(context.Background(), teacher.ID, "school-1", "admin-1"); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected already decided, got %v", err)
	}

	account, err := store.GetAccountByID(context.Background(), teacher.ID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if account.StaffID == nil || *account.StaffID != first.GeneratedID {
		t.Fatalf("expected first identifier to survive, got %+v", account.StaffID)
	}
}

// collidingStore forces identifier collisions for the first few attempts.
type collidingStore struct {
	repository.Store
	rejects int
	seen    []string
}

func (c *collidingStore) ApproveAccount(ctx context.Context, params repository.ApproveParams) error {
	if params.StaffID != nil {
		c.seen = append(c.seen, *params.StaffID)
	}
	if c.rejects > 0 {
		c.rejects--
		return repository.ErrDuplicate
	}
	return c.Store.ApproveAccount(ctx, params)
}

func TestApproveRetriesOnIdentifierCollision(t *testing.T) {
	inner := memory.New()
	store := &collidingStore{Store: inner, rejects: 2}
	wf := NewWorkflow(store, &mailer.Recorder{})

	teacher := seedPending(t, inner, model.RoleTeacher, "school-1")

	result, err := wf.Approve(context.Background(), teacher.ID, "school-1", "admin-1")
	if err != nil {
		t.Fatalf("approve error: %v", err)
	}
	if len(store.seen) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(store.seen))
	}
	if result.GeneratedID != store.seen[len(store.seen)-1] {
		t.Fatalf("expected last attempted identifier to win")
	}
}

func TestApproveGivesUpAfterBoundedAttempts(t *testing.T) {
	inner := memory.New()
	store := &collidingStore{Store: inner, rejects: maxIDAttempts}
	wf := NewWorkflow(store, &mailer.Recorder{})

	teacher := seedPending(t, inner, model.RoleTeacher, "school-1")

	if _, err := wf.Approve(context.Background(), teacher.ID, "school-1", "admin-1"); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate error after bounded retries, got %v", err)
	}
	if len(store.seen) != maxIDAttempts {
		t.Fatalf("expected %d attempts, got %d", maxIDAttempts, len(store.seen))
	}
}

func TestApproveEmailFailureSurfaces(t *testing.T) {
	store := memory.New()
	rec := &mailer.Recorder{Fail: errors.New("smtp down")}
	wf := NewWorkflow(store, rec)

	teacher := seedPending(t, store, model.RoleTeacher, "school-1")

	_, err := wf.Approve(context.Background(), teacher.ID, "school-1", "admin-1")
	if err == nil {
		t.Fatalf("expected email failure to surface")
	}

	// The state write is not rolled back.
	account, loadErr := store.GetAccountByID(context.Background(), teacher.ID)
	if loadErr != nil {
		t.Fatalf("reload account: %v", loadErr)
	}
	if account.ApprovalStatus != model.ApprovalApproved {
		t.Fatalf("expected account to stay approved, got %s", account.ApprovalStatus)
	}
}
