package repository

import (
	"context"
	"errors"
	"time"

	"rollcall/registry/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// ApproveParams is the conditional pending->approved transition. Exactly one
// of StaffID/RegistrationNumber is set for teachers/students; both stay nil
// for admin accounts.
type ApproveParams struct {
	AccountID          string
	SchoolID           string
	StaffID            *string
	RegistrationNumber *string
	ApprovedAt         time.Time
	ApprovedBy         string
}

type Store interface {
	CreateSchool(ctx context.Context, school model.School) error
	GetSchoolByID(ctx context.Context, id string) (model.School, error)
	GetSchoolByEmail(ctx context.Context, email string) (model.School, error)
	GetSchoolByCode(ctx context.Context, code string) (model.School, error)
	// MarkSchoolVerified flips is_verified; ErrNotFound for unknown ids.
	MarkSchoolVerified(ctx context.Context, id string) error
	SearchUnverifiedSchools(ctx context.Context, query string, limit int) ([]model.School, error)

	CreateAccount(ctx context.Context, account model.Account) error
	GetAccountByID(ctx context.Context, id string) (model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (model.Account, error)
	// GetTenantAccount scopes the lookup to a school; roles narrows the match.
	GetTenantAccount(ctx context.Context, email, schoolID string, roles ...model.Role) (model.Account, error)
	ListPendingAccounts(ctx context.Context, schoolID string) ([]model.Account, error)
	// ApproveAccount updates only while approval_status is still 'pending';
	// ErrNotFound when no row matched, ErrDuplicate when the generated
	// identifier collides.
	ApproveAccount(ctx context.Context, params ApproveParams) error
}
