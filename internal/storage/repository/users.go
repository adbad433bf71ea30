package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

const userColumns = `uid, email, password_hash, is_operator, is_verified,
	first_name, last_name, phone, country, city, address, postal_code,
	avatar_url, description, created_at, last_access_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var lastAccess sql.NullTime
	err := row.Scan(&u.UUID, &u.Email, &u.PasswordHash, &u.IsOperator, &u.IsVerified,
		&u.Profile.FirstName, &u.Profile.LastName, &u.Profile.Phone, &u.Profile.Country,
		&u.Profile.City, &u.Profile.Address, &u.Profile.PostalCode, &u.Profile.AvatarURL,
		&u.Profile.Description, &u.CreatedAt, &lastAccess)
	if err != nil {
		return nil, err
	}
	if lastAccess.Valid {
		u.LastAccessAt = &lastAccess.Time
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя. Повтор email даёт models.ErrDuplicateEmail.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p := user.Profile
	query := `INSERT INTO users (email, password_hash, is_operator, is_verified,
			      first_name, last_name, phone, country, city, address, postal_code,
			      avatar_url, description)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  RETURNING ` + userColumns
	created, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.IsOperator, user.IsVerified,
		p.FirstName, p.LastName, p.Phone, p.Country, p.City, p.Address, p.PostalCode,
		p.AvatarURL, p.Description))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return u, nil
}

// GetUserByID возвращает пользователя по его UID.
func (s *Storage) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return u, nil
}

// TouchLastAccess обновляет время последнего входа.
func (s *Storage) TouchLastAccess(ctx context.Context, userUID string, at time.Time) error {
	const op = "storage.TouchLastAccess"
	if _, err := s.DB.ExecContext(ctx, `UPDATE users SET last_access_at = $2 WHERE uid = $1`, userUID, at); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateProfile меняет только переданные поля профиля.
func (s *Storage) UpdateProfile(ctx context.Context, userUID string, upd models.ProfileUpdate) (*models.User, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET
			      first_name = COALESCE($2, first_name),
			      last_name = COALESCE($3, last_name),
			      phone = COALESCE($4, phone),
			      country = COALESCE($5, country),
			      city = COALESCE($6, city),
			      address = COALESCE($7, address),
			      postal_code = COALESCE($8, postal_code),
			      avatar_url = COALESCE($9, avatar_url),
			      description = COALESCE($10, description)
			  WHERE uid = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID,
		upd.FirstName, upd.LastName, upd.Phone, upd.Country, upd.City, upd.Address,
		upd.PostalCode, upd.AvatarURL, upd.Description))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return u, nil
}

// SetOperator переводит туриста в операторы. false означает, что пользователь уже оператор.
func (s *Storage) SetOperator(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.SetOperator"
	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET is_operator = TRUE WHERE uid = $1 AND is_operator = FALSE`, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// SetVerified помечает пользователя проверенным.
func (s *Storage) SetVerified(ctx context.Context, userUID string) error {
	const op = "storage.SetVerified"
	res, err := s.DB.ExecContext(ctx, `UPDATE users SET is_verified = TRUE WHERE uid = $1`, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}
