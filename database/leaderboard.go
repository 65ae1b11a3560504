package database

import (
	"context"
	"fmt"

	"cleancity/models"

	"github.com/shopspring/decimal"
)

var pointsPerReport = decimal.NewFromInt(50)

// GetTopScores returns the top reporters by report count. Reporters are
// titled by their profile name when the report carries a user reference,
// falling back to the contact name on the report itself.
func (d *Database) GetTopScores(ctx context.Context, limit int) ([]models.ScoreRecord, error) {
	query := `
		SELECT COALESCE(NULLIF(u.name, ''), NULLIF(r.contact_name, ''), 'Anonymous') AS title,
			COUNT(*) AS cnt
		FROM reports r
		LEFT JOIN users u ON r.user_id = u.uid
		GROUP BY title
		ORDER BY cnt DESC
		LIMIT ?
	`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top scores: %w", err)
	}
	defer rows.Close()

	records := []models.ScoreRecord{}
	place := 1
	for rows.Next() {
		var (
			title string
			cnt   int
		)
		if err := rows.Scan(&title, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		records = append(records, models.ScoreRecord{
			Place:   place,
			Title:   title,
			Reports: cnt,
			Points:  decimal.NewFromInt(int64(cnt)).Mul(pointsPerReport),
		})
		place++
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}

	return records, nil
}
