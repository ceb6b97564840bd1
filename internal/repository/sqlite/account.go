package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfreitas/devmarket/pkg/models"
)

func (r *SQLiteRepo) CreateAccount(ctx context.Context, a *models.Account) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("account is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO accounts (email, password_hash, role, created, updated) VALUES (?, ?, ?, ?, ?)`,
		a.Email, a.PasswordHash, a.Role, ts, ts)
	if err != nil {
		return 0, mapDuplicate(err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, password_hash, role, created, updated FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *SQLiteRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, password_hash, role, created, updated FROM accounts WHERE email = ?`, email)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var pw sql.NullString
	if err := row.Scan(&a.ID, &a.Email, &pw, &a.Role, &a.Created, &a.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if pw.Valid {
		a.PasswordHash = pw.String
	}

	return &a, nil
}

func (r *SQLiteRepo) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, email, password_hash, role, created, updated FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var a models.Account
		var pw sql.NullString
		if err := rows.Scan(&a.ID, &a.Email, &pw, &a.Role, &a.Created, &a.Updated); err != nil {
			return nil, err
		}
		if pw.Valid {
			a.PasswordHash = pw.String
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
