package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/incline-app/incline-backend/internal/models"
)

const (
	pgUniqueViolation    = "23505"
	pgInvalidTextRepr    = "22P02"
	userColumns          = `id, full_name, email, password, role, date_of_birth, course, gender, profile_pic, description, created_at, updated_at`
	publicProfileColumns = `id, full_name, email, role, profile_pic, description`
)

// PostgresStore handles user CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			full_name     VARCHAR(255) NOT NULL DEFAULT '',
			email         VARCHAR(255) UNIQUE NOT NULL,
			password      VARCHAR(255) NOT NULL,
			role          VARCHAR(20)  NOT NULL CHECK (role IN ('student', 'professional')),
			date_of_birth TEXT         NOT NULL DEFAULT '',
			course        TEXT         NOT NULL DEFAULT '',
			gender        TEXT         NOT NULL DEFAULT '',
			profile_pic   TEXT         NOT NULL DEFAULT '',
			description   TEXT         NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// CreateUser inserts a user. The unique email constraint makes concurrent
// signups for the same address fail with models.ErrConflict.
func (s *PostgresStore) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (full_name, email, password, role, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		strings.TrimSpace(nu.FullName), NormalizeEmail(nu.Email), nu.HashedPassword, nu.Role, models.DefaultDescription,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", translatePgError(err))
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email))
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", translatePgError(err))
	}
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", translatePgError(err))
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields of upd. NULL parameters keep the
// current column value.
func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users SET
			date_of_birth = COALESCE($2, date_of_birth),
			course        = COALESCE($3, course),
			gender        = COALESCE($4, gender),
			profile_pic   = COALESCE($5, profile_pic),
			updated_at    = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, upd.DateOfBirth, upd.Course, upd.Gender, upd.ProfilePic,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", translatePgError(err))
	}
	return u, nil
}

// PublicProfiles loads the public view of every existing user in ids.
// Unknown ids are absent from the result.
func (s *PostgresStore) PublicProfiles(ctx context.Context, ids []string) (map[string]models.PublicProfile, error) {
	out := make(map[string]models.PublicProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+publicProfileColumns+` FROM users WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("public profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.PublicProfile
		if err := rows.Scan(&p.ID, &p.FullName, &p.Email, &p.Role, &p.ProfilePic, &p.Description); err != nil {
			return nil, fmt.Errorf("public profiles: scan: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("public profiles: %w", err)
	}
	return out, nil
}

// NormalizeEmail lower-cases and trims an address so lookups and the
// unique constraint are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.Password, &u.Role,
		&u.DateOfBirth, &u.Course, &u.Gender, &u.ProfilePic, &u.Description,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func translatePgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", models.ErrConflict, pgErr.ConstraintName)
		case pgInvalidTextRepr:
			// malformed uuid: no such user can exist
			return models.ErrNotFound
		}
	}
	return err
}
