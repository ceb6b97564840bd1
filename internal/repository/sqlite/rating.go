package sqlite

import (
	"context"
	"fmt"
	"math"

	"github.com/mfreitas/devmarket/pkg/models"
)

// UpsertRating stores or replaces the (client, developer) rating and recomputes
// the developer's cached aggregate inside the same transaction, so
// average_rating and total_ratings can never drift from the ratings table.
func (r *SQLiteRepo) UpsertRating(ctx context.Context, rt *models.Rating) (int64, error) {
	if rt == nil {
		return 0, fmt.Errorf("rating is nil")
	}
	if rt.Rating < 1 || rt.Rating > 5 {
		return 0, fmt.Errorf("rating %d out of range", rt.Rating)
	}

	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO ratings (client_id, developer_id, rating, comment, project_title, created) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id, developer_id) DO UPDATE SET rating=excluded.rating, comment=excluded.comment, project_title=excluded.project_title`,
		rt.ClientID, rt.DeveloperID, rt.Rating, rt.Comment, rt.ProjectTitle, now())
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	var total int64
	var avg float64
	row := tx.QueryRowContext(ctx, `SELECT COUNT(1), COALESCE(AVG(rating), 0) FROM ratings WHERE developer_id = ?`, rt.DeveloperID)
	if err := row.Scan(&total, &avg); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	avg = math.Round(avg*10) / 10

	if _, err := tx.ExecContext(ctx, `UPDATE developer_profiles SET average_rating = ?, total_ratings = ?, updated = ? WHERE account_id = ?`,
		avg, total, now(), rt.DeveloperID); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListRatingsByDeveloper(ctx context.Context, developerID int64) ([]models.Rating, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, client_id, developer_id, rating, comment, project_title, created FROM ratings WHERE developer_id = ? ORDER BY created DESC`, developerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Rating
	for rows.Next() {
		var rt models.Rating
		if err := rows.Scan(&rt.ID, &rt.ClientID, &rt.DeveloperID, &rt.Rating, &rt.Comment, &rt.ProjectTitle, &rt.Created); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}
