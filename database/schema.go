package database

import (
	"context"
	"fmt"
	"log"
)

// EnsureReportsTable creates the reports table if it doesn't exist.
// The status column is a plain VARCHAR rather than a SQL ENUM so that
// unchecked status values pass through the update path unchanged.
func (d *Database) EnsureReportsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS reports (
			seq INT NOT NULL AUTO_INCREMENT,
			ts TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			complaint_id VARCHAR(32) NOT NULL DEFAULT '',
			category VARCHAR(255) NOT NULL DEFAULT '',
			latitude DOUBLE NULL,
			longitude DOUBLE NULL,
			image LONGTEXT,
			status VARCHAR(32) NOT NULL DEFAULT 'Received',
			contact_name VARCHAR(255),
			contact_phone VARCHAR(64),
			description TEXT,
			upvotes INT NOT NULL DEFAULT 0,
			downvotes INT NOT NULL DEFAULT 0,
			user_id VARCHAR(255),
			PRIMARY KEY (seq),
			INDEX ts_index (ts),
			INDEX status_index (status),
			INDEX user_id_index (user_id)
		)
	`

	_, err := d.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	log.Println("Reports table ensured")
	return nil
}

// EnsureUsersTable creates the users table if it doesn't exist
func (d *Database) EnsureUsersTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			uid VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL DEFAULT '',
			name VARCHAR(255) NOT NULL DEFAULT '',
			role VARCHAR(16) NOT NULL DEFAULT 'user',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (uid)
		)
	`

	_, err := d.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	log.Println("Users table ensured")
	return nil
}

// EnsureSchema creates all tables used by the service
func (d *Database) EnsureSchema(ctx context.Context) error {
	if err := d.EnsureReportsTable(ctx); err != nil {
		return err
	}
	return d.EnsureUsersTable(ctx)
}
