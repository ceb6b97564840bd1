package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfreitas/devmarket/pkg/models"
)

func (r *SQLiteRepo) CreateDeveloperProfile(ctx context.Context, p *models.DeveloperProfile) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("developer profile is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO developer_profiles (account_id, bio, skills, languages, hourly_rate, daily_rate, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.Bio, encodeStrings(p.Skills), encodeStrings(p.Languages), p.HourlyRate, p.DailyRate, ts, ts)
	if err != nil {
		return 0, mapDuplicate(err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetDeveloperProfileByAccountID(ctx context.Context, accountID int64) (*models.DeveloperProfile, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, account_id, bio, skills, languages, hourly_rate, daily_rate, average_rating, total_ratings, created, updated FROM developer_profiles WHERE account_id = ?`, accountID)
	var p models.DeveloperProfile
	var skills, languages string
	if err := row.Scan(&p.ID, &p.AccountID, &p.Bio, &skills, &languages, &p.HourlyRate, &p.DailyRate, &p.AverageRating, &p.TotalRatings, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	p.Skills = decodeStrings(skills)
	p.Languages = decodeStrings(languages)

	return &p, nil
}

func (r *SQLiteRepo) UpdateDeveloperProfile(ctx context.Context, p *models.DeveloperProfile) error {
	if p == nil {
		return fmt.Errorf("developer profile is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE developer_profiles SET bio = ?, skills = ?, languages = ?, hourly_rate = ?, daily_rate = ?, updated = ? WHERE account_id = ?`,
		p.Bio, encodeStrings(p.Skills), encodeStrings(p.Languages), p.HourlyRate, p.DailyRate, now(), p.AccountID)
	return err
}
