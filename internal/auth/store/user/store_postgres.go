package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"shareregistry/internal/auth/models"
	id "shareregistry/pkg/domain"
	"shareregistry/pkg/platform/sentinel"
)

// PostgresStore persists accounts in the users table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, "postgres")}
}

type userRow struct {
	ID                 uuid.UUID     `db:"id"`
	Username           string        `db:"username"`
	Name               string        `db:"name"`
	Email              string        `db:"email"`
	Phone              string        `db:"phone"`
	Role               string        `db:"role"`
	Status             string        `db:"status"`
	PasswordHash       string        `db:"password_hash"`
	ProfileID          uuid.NullUUID `db:"profile_id"`
	MustChangePassword bool          `db:"must_change_password"`
	LastLoginAt        sql.NullTime  `db:"last_login_at"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

const userColumns = `id, username, name, email, phone, role, status, password_hash,
	profile_id, must_change_password, last_login_at, created_at, updated_at`

func toRow(u *models.User) userRow {
	r := userRow{
		ID:                 uuid.UUID(u.ID),
		Username:           u.Username,
		Name:               u.Name,
		Email:              u.Email,
		Phone:              u.Phone,
		Role:               string(u.Role),
		Status:             string(u.Status),
		PasswordHash:       u.PasswordHash,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
	if u.ProfileID != nil {
		r.ProfileID = uuid.NullUUID{UUID: uuid.UUID(*u.ProfileID), Valid: true}
	}
	if u.LastLoginAt != nil {
		r.LastLoginAt = sql.NullTime{Time: *u.LastLoginAt, Valid: true}
	}
	return r
}

func (r userRow) toModel() *models.User {
	u := &models.User{
		ID:                 id.UserID(r.ID),
		Username:           r.Username,
		Name:               r.Name,
		Email:              r.Email,
		Phone:              r.Phone,
		Role:               models.Role(r.Role),
		Status:             models.Status(r.Status),
		PasswordHash:       r.PasswordHash,
		MustChangePassword: r.MustChangePassword,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.ProfileID.Valid {
		p := id.ProfileID(r.ProfileID.UUID)
		u.ProfileID = &p
	}
	if r.LastLoginAt.Valid {
		t := r.LastLoginAt.Time
		u.LastLoginAt = &t
	}
	return u
}

func (s *PostgresStore) Insert(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :username, :name, :email, :phone, :role, :status, :password_hash,
			:profile_id, :must_change_password, :last_login_at, :created_at, :updated_at)`,
		toRow(user))
	if err != nil {
		return classify("insert user", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE users SET
			username = :username, name = :name, email = :email, phone = :phone,
			role = :role, status = :status, password_hash = :password_hash,
			profile_id = :profile_id, must_change_password = :must_change_password,
			last_login_at = :last_login_at, updated_at = :updated_at
		WHERE id = :id`,
		toRow(user))
	if err != nil {
		return classify("update user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("update user", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = lower($1)`, username)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users
		WHERE email <> '' AND lower(email) = lower($1)
		ORDER BY created_at ASC LIMIT 1`, email)
}

func (s *PostgresStore) ListByProfile(ctx context.Context, profileID id.ProfileID) ([]*models.User, error) {
	return s.selectMany(ctx, `SELECT `+userColumns+` FROM users
		WHERE profile_id = $1 ORDER BY created_at ASC, username ASC`, uuid.UUID(profileID))
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.User, error) {
	return s.selectMany(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, username ASC`)
}

func (s *PostgresStore) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify("find user", err)
	}
	return row.toModel(), nil
}

func (s *PostgresStore) selectMany(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classify("list users", err)
	}
	out := make([]*models.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" {
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrConflict, err)
		}
		if pqErr.Code.Class() == "08" {
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
		}
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
