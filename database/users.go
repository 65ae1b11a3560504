package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"cleancity/models"
)

// GetUser looks up a profile by external identity id.
func (d *Database) GetUser(ctx context.Context, uid string) (*models.UserProfile, error) {
	query := `
		SELECT uid, email, name, role, created_at, last_login
		FROM users
		WHERE uid = ?
	`

	var user models.UserProfile
	err := d.db.QueryRowContext(ctx, query, uid).Scan(
		&user.UID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.LastLogin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", uid, err)
	}

	return &user, nil
}

// UpsertUser creates a profile on first sign-in or refreshes it on every
// subsequent one. Returns the stored profile and whether it was created.
func (d *Database) UpsertUser(ctx context.Context, req *models.UpsertUserRequest) (*models.UserProfile, bool, error) {
	existing, err := d.GetUser(ctx, req.UID)
	if err != nil && err != ErrNotFound {
		return nil, false, err
	}

	if existing != nil {
		if err := d.refreshUser(ctx, req); err != nil {
			return nil, false, err
		}
		user, err := d.GetUser(ctx, req.UID)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}

	name := req.Name
	if name == "" {
		name = "User"
	}

	_, err = d.db.ExecContext(ctx,
		"INSERT INTO users (uid, email, name, role) VALUES (?, ?, ?, ?)",
		req.UID, req.Email, name, models.RoleUser)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user %s: %w", req.UID, err)
	}

	log.Printf("User %s created", req.UID)

	user, err := d.GetUser(ctx, req.UID)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// refreshUser bumps last_login and updates name/email when supplied.
func (d *Database) refreshUser(ctx context.Context, req *models.UpsertUserRequest) error {
	var err error
	if req.Name != "" && req.Email != "" {
		_, err = d.db.ExecContext(ctx,
			"UPDATE users SET last_login = NOW(), name = ?, email = ? WHERE uid = ?",
			req.Name, req.Email, req.UID)
	} else if req.Name != "" {
		_, err = d.db.ExecContext(ctx,
			"UPDATE users SET last_login = NOW(), name = ? WHERE uid = ?",
			req.Name, req.UID)
	} else if req.Email != "" {
		_, err = d.db.ExecContext(ctx,
			"UPDATE users SET last_login = NOW(), email = ? WHERE uid = ?",
			req.Email, req.UID)
	} else {
		_, err = d.db.ExecContext(ctx,
			"UPDATE users SET last_login = NOW() WHERE uid = ?",
			req.UID)
	}
	if err != nil {
		return fmt.Errorf("failed to refresh user %s: %w", req.UID, err)
	}
	return nil
}

// PromoteUser unconditionally grants the admin role. Returns ErrNotFound
// when the uid matched no profile.
func (d *Database) PromoteUser(ctx context.Context, uid string) error {
	result, err := d.db.ExecContext(ctx,
		"UPDATE users SET role = ? WHERE uid = ?", models.RoleAdmin, uid)
	if err != nil {
		return fmt.Errorf("failed to promote user %s: %w", uid, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get status of promotion: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	log.Printf("User %s promoted to admin", uid)
	return nil
}

// IsAdmin reports whether the profile holds the admin role.
func (d *Database) IsAdmin(ctx context.Context, uid string) (bool, error) {
	var role string
	err := d.db.QueryRowContext(ctx, "SELECT role FROM users WHERE uid = ?", uid).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check role for user %s: %w", uid, err)
	}
	return role == models.RoleAdmin, nil
}
