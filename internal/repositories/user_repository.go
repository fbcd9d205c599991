package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	intdb "fumotion/internal/db"
	"fumotion/internal/domain"
	"fumotion/internal/domain/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type UserRepository struct {
	DB intdb.DBTX
}

const userColumns = `id, name, email, phone, password_hash, role, status, bio, created_at, updated_at`

func scanUser(rs rowScanner) (models.User, error) {
	var u models.User
	err := rs.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Status, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r UserRepository) Create(ctx context.Context, u *models.User) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, status, bio, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.Status, u.Bio, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email))))
}

func (r UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email))).Scan(&n)
	return n > 0, err
}

// Update applies only the fields present in upd.
func (r UserRepository) Update(ctx context.Context, id int64, upd models.UserUpdate, now time.Time) error {
	sets := []string{}
	args := []any{}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *upd.Phone)
	}
	if upd.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *upd.Bio)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now, id)
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	return err
}

func (r UserRepository) UpdatePassword(ctx context.Context, id int64, hash string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, now, id)
	return err
}

func (r UserRepository) UpdateStatus(ctx context.Context, id int64, status string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET status = ?, updated_at = ? WHERE id = ?`, status, now, id)
	return err
}

// List returns users ordered newest first, optionally matching q on name or email.
func (r UserRepository) List(ctx context.Context, q string, page domain.Pagination) ([]models.User, int, error) {
	where := ""
	args := []any{}
	if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
		where = ` WHERE (LOWER(name) LIKE ? OR email LIKE ?)`
		like := "%" + q + "%"
		args = append(args, like, like)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.PageSize, page.Offset())
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users`+where+` ORDER BY id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return out, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// RatingSummary returns the average rating and number of reviews received.
func (r UserRepository) RatingSummary(ctx context.Context, userID int64) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT AVG(rating), COUNT(*) FROM reviews WHERE reviewee_id = ?`, userID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, count, nil
}

func (r UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
