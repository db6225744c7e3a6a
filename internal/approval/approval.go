// Package approval drives the account lifecycle: accounts sign up as pending
// and an admin of the same school moves them to approved, which assigns their
// tenant-scoped identifier and notifies them by email. The rejected state
// exists in the data model but no operation drives it.
package approval

import (
	"context"
	"errors"
	"time"

	"rollcall/registry/internal/mailer"
	"rollcall/registry/internal/model"
	"rollcall/registry/internal/repository"
)

// ErrAlreadyDecided is returned when the account left the pending state
// before this approval landed. The identifier assigned by the first approval
// is never regenerated.
var ErrAlreadyDecided = errors.New("account already approved or rejected")

// maxIDAttempts bounds retries when a generated identifier collides with an
// existing one.
const maxIDAttempts = 5

type Workflow struct {
	store  repository.Store
	mailer mailer.Mailer
	now    func() time.Time
}

func NewWorkflow(store repository.Store, m mailer.Mailer) *Workflow {
	return &Workflow{store: store, mailer: m, now: time.Now}
}

type Result struct {
	Account     model.Account
	GeneratedID string
}

// Approve transitions a pending account of the given school to approved.
// Accounts outside the school are reported as not found so the workflow never
// confirms their existence to another tenant. The update is conditional on
// the account still being pending, so two concurrent approvals cannot both
// assign an identifier.
func (w *Workflow) Approve(ctx context.Context, accountID, schoolID, approverID string) (Result, error) {
	account, err := w.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return Result{}, err
	}
	if account.SchoolID == nil || *account.SchoolID != schoolID {
		return Result{}, repository.ErrNotFound
	}
	if account.ApprovalStatus != model.ApprovalPending {
		return Result{}, ErrAlreadyDecided
	}
	// Only teachers and students carry generated identifiers and pass
	// through the queue; admins never appear in the pending listing.
	if account.Role != model.RoleTeacher && account.Role != model.RoleStudent {
		return Result{}, repository.ErrNotFound
	}

	now := w.now().UTC()
	var generatedID string
	for attempt := 0; ; attempt++ {
		params := repository.ApproveParams{
			AccountID:  accountID,
			SchoolID:   schoolID,
			ApprovedAt: now,
			ApprovedBy: approverID,
		}
		switch account.Role {
		case model.RoleTeacher:
			generatedID = StaffID(now)
			params.StaffID = &generatedID
		case model.RoleStudent:
			generatedID = StudentRegNo(now)
			params.RegistrationNumber = &generatedID
		}

		err = w.store.ApproveAccount(ctx, params)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicate) && attempt+1 < maxIDAttempts {
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race: someone else decided the account after our read.
			return Result{}, ErrAlreadyDecided
		}
		return Result{}, err
	}

	account, err = w.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return Result{}, err
	}

	subject, html := mailer.AccountApproved(account.FullName, account.Role, generatedID)
	if err := w.mailer.Send(ctx, account.Email, subject, html); err != nil {
		// State is committed; the email failure surfaces as a server error.
		return Result{Account: account, GeneratedID: generatedID}, err
	}
	return Result{Account: account, GeneratedID: generatedID}, nil
}
