package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rollcall/registry/internal/model"
)

type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const schoolColumns = `id, school_name, school_email, school_type, school_code, school_phone_number, country, state, school_address, is_verified, created_at`

func (p *Postgres) CreateSchool(ctx context.Context, school model.School) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO schools (`+schoolColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, school.ID, school.SchoolName, school.SchoolEmail, school.SchoolType, school.SchoolCode,
		school.SchoolPhoneNumber, school.Country, school.State, school.SchoolAddress,
		school.IsVerified, school.CreatedAt)
	return mapError(err)
}

func (p *Postgres) GetSchoolByID(ctx context.Context, id string) (model.School, error) {
	return p.getSchool(ctx, `SELECT `+schoolColumns+` FROM schools WHERE id = $1`, id)
}

func (p *Postgres) GetSchoolByEmail(ctx context.Context, email string) (model.School, error) {
	return p.getSchool(ctx, `SELECT `+schoolColumns+` FROM schools WHERE school_email = $1`, email)
}

func (p *Postgres) GetSchoolByCode(ctx context.Context, code string) (model.School, error) {
	return p.getSchool(ctx, `SELECT `+schoolColumns+` FROM schools WHERE school_code = $1`, code)
}

func (p *Postgres) getSchool(ctx context.Context, query string, arg string) (model.School, error) {
	var s model.School
	row := p.pool.QueryRow(ctx, query, arg)
	err := row.Scan(
		&s.ID,
		&s.SchoolName,
		&s.SchoolEmail,
		&s.SchoolType,
		&s.SchoolCode,
		&s.SchoolPhoneNumber,
		&s.Country,
		&s.State,
		&s.SchoolAddress,
		&s.IsVerified,
		&s.CreatedAt,
	)
	return s, mapError(err)
}

func (p *Postgres) MarkSchoolVerified(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE schools SET is_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SearchUnverifiedSchools(ctx context.Context, query string, limit int) ([]model.School, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+schoolColumns+`
		FROM schools
		WHERE is_verified = FALSE
		  AND (school_name ILIKE '%' || $1 || '%' OR school_code ILIKE '%' || $1 || '%')
		ORDER BY school_name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	schools := make([]model.School, 0)
	for rows.Next() {
		var s model.School
		if err := rows.Scan(
			&s.ID,
			&s.SchoolName,
			&s.SchoolEmail,
			&s.SchoolType,
			&s.SchoolCode,
			&s.SchoolPhoneNumber,
			&s.Country,
			&s.State,
			&s.SchoolAddress,
			&s.IsVerified,
			&s.CreatedAt,
		); err != nil {
			return nil, mapError(err)
		}
		schools = append(schools, s)
	}
	return schools, mapError(rows.Err())
}

const accountColumns = `id, role, full_name, email, password_hash, school_id, registration_number, staff_id, approval_status, status, department, phone_number, created_at, approved_at, approved_by`

func (p *Postgres) CreateAccount(ctx context.Context, a model.Account) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, a.ID, a.Role, a.FullName, a.Email, a.PasswordHash, a.SchoolID, a.RegistrationNumber,
		a.StaffID, a.ApprovalStatus, a.Status, a.Department, a.PhoneNumber, a.CreatedAt,
		a.ApprovedAt, a.ApprovedBy)
	return mapError(err)
}

func (p *Postgres) GetAccountByID(ctx context.Context, id string) (model.Account, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (p *Postgres) GetAccountByEmail(ctx context.Context, email string) (model.Account, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (p *Postgres) GetTenantAccount(ctx context.Context, email, schoolID string, roles ...model.Role) (model.Account, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	row := p.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1 AND school_id = $2 AND role = ANY($3)
	`, email, schoolID, names)
	return scanAccount(row)
}

func (p *Postgres) ListPendingAccounts(ctx context.Context, schoolID string) ([]model.Account, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE school_id = $1
		  AND approval_status = 'pending'
		  AND role IN ('teacher', 'student')
		ORDER BY created_at
	`, schoolID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	accounts := make([]model.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, mapError(rows.Err())
}

func (p *Postgres) ApproveAccount(ctx context.Context, params ApproveParams) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE accounts
		SET staff_id            = COALESCE($1, staff_id),
		    registration_number = COALESCE($2, registration_number),
		    approval_status     = 'approved',
		    approved_at         = $3,
		    approved_by         = $4
		WHERE id = $5 AND school_id = $6 AND approval_status = 'pending'
	`, params.StaffID, params.RegistrationNumber, params.ApprovedAt, params.ApprovedBy,
		params.AccountID, params.SchoolID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAccount(row scannable) (model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,
		&a.Role,
		&a.FullName,
		&a.Email,
		&a.PasswordHash,
		&a.SchoolID,
		&a.RegistrationNumber,
		&a.StaffID,
		&a.ApprovalStatus,
		&a.Status,
		&a.Department,
		&a.PhoneNumber,
		&a.CreatedAt,
		&a.ApprovedAt,
		&a.ApprovedBy,
	)
	return a, mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
