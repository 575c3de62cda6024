package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/civic-service-desk/internal/model"
	"github.com/iliyamo/civic-service-desk/internal/utils"
)

// UserRepo persists user records in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,reset_token,reset_token_expiry,created_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var resetToken sql.NullString
	var resetExpiry sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &resetToken, &resetExpiry, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	if resetToken.Valid {
		v := resetToken.String
		u.ResetToken = &v
	}
	if resetExpiry.Valid {
		v := resetExpiry.Time
		u.ResetTokenExpiry = &v
	}
	return u, nil
}

// Create hashes the password and inserts a new citizen user, returning
// the stored record. Role is always citizen at registration; admin
// accounts are provisioned out of band.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int) (model.User, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, hash, model.RoleCitizen)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by exact email match. Returns sql.ErrNoRows
// when the address is unknown.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// SetResetToken stores a reset token and its expiry on the user row,
// overwriting any prior token so at most one is outstanding per user.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, token string, expiry time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token=?, reset_token_expiry=? WHERE id=?",
		token, expiry, id)
	return err
}

// ConsumeResetToken atomically redeems a reset token: it finds the user
// holding an unexpired matching token, then in one conditional update
// installs the new password hash and clears the token fields. The WHERE
// clause re-checks the token so a concurrent redeem loses and gets
// ErrResetTokenInvalid, giving at-most-once semantics.
func (r *UserRepo) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE reset_token=? AND reset_token_expiry>? LIMIT 1",
		token, now))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, ErrResetTokenInvalid
		}
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_token=NULL, reset_token_expiry=NULL WHERE id=? AND reset_token=?",
		newHash, u.ID, token)
	if err != nil {
		return model.User{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.User{}, err
	}
	if n == 0 {
		return model.User{}, ErrResetTokenInvalid
	}
	u.PasswordHash = newHash
	u.ResetToken = nil
	u.ResetTokenExpiry = nil
	return u, nil
}
