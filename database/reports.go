package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"cleancity/models"
)

// CreateReport persists a new report. The storage id and timestamp are
// assigned here; the complaint id comes from the client and status defaults
// to Received.
func (d *Database) CreateReport(ctx context.Context, req *models.CreateReportRequest) (int64, error) {
	status := req.Status
	if status == "" {
		status = models.StatusReceived
	}

	var lat, lng sql.NullFloat64
	if req.Location != nil {
		lat = sql.NullFloat64{Float64: req.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: req.Location.Lng, Valid: true}
	}

	query := `
		INSERT INTO reports (complaint_id, category, latitude, longitude, image, status,
			contact_name, contact_phone, description, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := d.db.ExecContext(ctx, query,
		req.ComplaintID,
		req.Category,
		lat,
		lng,
		req.Image,
		status,
		req.ContactName,
		req.ContactPhone,
		req.Description,
		req.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report seq: %w", err)
	}

	log.Printf("Report %d saved with complaint id %s", seq, req.ComplaintID)
	return seq, nil
}

// ListReports returns all reports, newest first
func (d *Database) ListReports(ctx context.Context) ([]models.Report, error) {
	query := `
		SELECT seq, ts, complaint_id, category, latitude, longitude, image, status,
			contact_name, contact_phone, description, upvotes, downvotes, user_id
		FROM reports
		ORDER BY ts DESC, seq DESC
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var (
			r            models.Report
			lat, lng     sql.NullFloat64
			image        sql.NullString
			contactName  sql.NullString
			contactPhone sql.NullString
			description  sql.NullString
			userID       sql.NullString
		)
		err := rows.Scan(
			&r.Seq,
			&r.Timestamp,
			&r.ComplaintID,
			&r.Category,
			&lat,
			&lng,
			&image,
			&r.Status,
			&contactName,
			&contactPhone,
			&description,
			&r.Upvotes,
			&r.Downvotes,
			&userID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if lat.Valid && lng.Valid {
			r.Location = &models.LatLng{Lat: lat.Float64, Lng: lng.Float64}
		}
		r.Image = image.String
		r.ContactName = contactName.String
		r.ContactPhone = contactPhone.String
		r.Description = description.String
		r.UserID = userID.String
		reports = append(reports, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

// UpdateReport applies a partial field merge to a report. There is no
// existence check: updating a seq that matches no record is a success.
// The timestamp and vote counters are never part of the merge.
func (d *Database) UpdateReport(ctx context.Context, seq int64, upd *models.ReportUpdate) error {
	sets := []string{}
	args := []interface{}{}

	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.ContactName != nil {
		sets = append(sets, "contact_name = ?")
		args = append(args, *upd.ContactName)
	}
	if upd.ContactPhone != nil {
		sets = append(sets, "contact_phone = ?")
		args = append(args, *upd.ContactPhone)
	}
	if upd.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *upd.Image)
	}
	if upd.Location != nil {
		sets = append(sets, "latitude = ?", "longitude = ?")
		args = append(args, upd.Location.Lat, upd.Location.Lng)
	}

	if len(sets) == 0 {
		// An empty merge changes nothing and succeeds, matching the
		// unchecked update semantics.
		return nil
	}

	query := fmt.Sprintf("UPDATE reports SET %s WHERE seq = ?", strings.Join(sets, ", "))
	args = append(args, seq)

	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update report %d: %w", seq, err)
	}

	log.Printf("Report %d updated (%d fields)", seq, len(sets))
	return nil
}

// DeleteReport permanently removes a report. Returns ErrNotFound when the
// seq matched no record.
func (d *Database) DeleteReport(ctx context.Context, seq int64) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM reports WHERE seq = ?", seq)
	if err != nil {
		return fmt.Errorf("failed to delete report %d: %w", seq, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get status of delete: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	log.Printf("Report %d permanently deleted", seq)
	return nil
}

// Vote atomically increments a vote counter by one. Any type other than
// "up" counts as a downvote. Voting on a nonexistent seq is a silent no-op.
func (d *Database) Vote(ctx context.Context, seq int64, voteType string) error {
	query := "UPDATE reports SET downvotes = downvotes + 1 WHERE seq = ?"
	if voteType == "up" {
		query = "UPDATE reports SET upvotes = upvotes + 1 WHERE seq = ?"
	}

	if _, err := d.db.ExecContext(ctx, query, seq); err != nil {
		return fmt.Errorf("failed to vote on report %d: %w", seq, err)
	}
	return nil
}
