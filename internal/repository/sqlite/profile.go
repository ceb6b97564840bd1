package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfreitas/devmarket/pkg/models"
)

func (r *SQLiteRepo) CreateProfile(ctx context.Context, p *models.Profile) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("profile is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO profiles (account_id, display_name, avatar_url, location, contact_email, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.DisplayName, p.AvatarURL, p.Location, p.ContactEmail, ts, ts)
	if err != nil {
		return 0, mapDuplicate(err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetProfileByAccountID(ctx context.Context, accountID int64) (*models.Profile, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, account_id, display_name, avatar_url, location, contact_email, created, updated FROM profiles WHERE account_id = ?`, accountID)
	var p models.Profile
	if err := row.Scan(&p.ID, &p.AccountID, &p.DisplayName, &p.AvatarURL, &p.Location, &p.ContactEmail, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &p, nil
}

func (r *SQLiteRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE profiles SET display_name = ?, location = ?, contact_email = ?, updated = ? WHERE account_id = ?`,
		p.DisplayName, p.Location, p.ContactEmail, now(), p.AccountID)
	return err
}

func (r *SQLiteRepo) SetAvatarURL(ctx context.Context, accountID int64, url string) error {
	_, err := r.conn.Exec(ctx, `UPDATE profiles SET avatar_url = ?, updated = ? WHERE account_id = ?`, url, now(), accountID)
	return err
}
