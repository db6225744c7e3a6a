package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"rollcall/registry/internal/db"
	"rollcall/registry/internal/model"
	"rollcall/registry/internal/repository"
)

func openTestStore(t *testing.T) *repository.Postgres {
	t.Helper()
	url := os.Getenv("REGISTRY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("set REGISTRY_TEST_DATABASE_URL to run")
	}
	if err := db.Migrate(url); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return repository.NewPostgres(pool)
}

func testSchool(suffix string) model.School {
	return model.School{
		ID:          uuid.NewString(),
		SchoolName:  "Test School " + suffix,
		SchoolEmail: "school-" + suffix + "@test.local",
		SchoolCode:  "TS-" + suffix,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestPostgresSchoolUniqueness(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	school := testSchool(suffix)
	if err := store.CreateSchool(ctx, school); err != nil {
		t.Fatalf("create school: %v", err)
	}

	dup := testSchool(uuid.NewString()[:8])
	dup.SchoolEmail = school.SchoolEmail
	if err := store.CreateSchool(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate email: %v", err)
	}

	dup = testSchool(uuid.NewString()[:8])
	dup.SchoolCode = school.SchoolCode
	if err := store.CreateSchool(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate code: %v", err)
	}

	got, err := store.GetSchoolByCode(ctx, school.SchoolCode)
	if err != nil || got.ID != school.ID {
		t.Fatalf("get by code: %v %v", got.ID, err)
	}
}

func TestPostgresApproveIsConditional(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	school := testSchool(suffix)
	if err := store.CreateSchool(ctx, school); err != nil {
		t.Fatalf("create school: %v", err)
	}

	account := model.Account{
		ID:             uuid.NewString(),
		Role:           model.RoleTeacher,
		FullName:       "Pending Teacher",
		Email:          "teacher-" + suffix + "@test.local",
		PasswordHash:   "x",
		SchoolID:       &school.ID,
		ApprovalStatus: model.ApprovalPending,
		Status:         model.StatusActive,
		CreatedAt:      time.Now().UTC(),
	}
	if err := store.CreateAccount(ctx, account); err != nil {
		t.Fatalf("create account: %v", err)
	}

	staffID := "TCH-" + suffix
	params := repository.ApproveParams{
		AccountID:  account.ID,
		SchoolID:   school.ID,
		StaffID:    &staffID,
		ApprovedAt: time.Now().UTC(),
		ApprovedBy: account.ID,
	}
	if err := store.ApproveAccount(ctx, params); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// No longer pending, so a second approval matches no row.
	if err := store.ApproveAccount(ctx, params); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second approve: %v", err)
	}

	got, err := store.GetAccountByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.ApprovalStatus != model.ApprovalApproved || got.StaffID == nil || *got.StaffID != staffID {
		t.Fatalf("approved account: %+v", got)
	}
}

func TestPostgresTenantAccountLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	school := testSchool(suffix)
	other := testSchool(uuid.NewString()[:8])
	for _, s := range []model.School{school, other} {
		if err := store.CreateSchool(ctx, s); err != nil {
			t.Fatalf("create school: %v", err)
		}
	}

	account := model.Account{
		ID:             uuid.NewString(),
		Role:           model.RoleStudent,
		FullName:       "Tenant Student",
		Email:          "student-" + suffix + "@test.local",
		PasswordHash:   "x",
		SchoolID:       &school.ID,
		ApprovalStatus: model.ApprovalPending,
		Status:         model.StatusActive,
		CreatedAt:      time.Now().UTC(),
	}
	if err := store.CreateAccount(ctx, account); err != nil {
		t.Fatalf("create account: %v", err)
	}

	if _, err := store.GetTenantAccount(ctx, account.Email, school.ID, model.RoleStudent); err != nil {
		t.Fatalf("same tenant: %v", err)
	}
	if _, err := store.GetTenantAccount(ctx, account.Email, other.ID, model.RoleStudent); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("cross tenant: %v", err)
	}
	if _, err := store.GetTenantAccount(ctx, account.Email, school.ID, model.RoleAdmin); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("role mismatch: %v", err)
	}
}
