package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfreitas/devmarket/pkg/models"
)

const applicationColumns = `id, project_id, developer_id, status, message, created, updated`

func (r *SQLiteRepo) CreateApplication(ctx context.Context, a *models.Application) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("application is nil")
	}
	if a.Status == "" {
		a.Status = models.ApplicationStatusPending
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO applications (project_id, developer_id, status, message, created, updated) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ProjectID, a.DeveloperID, a.Status, a.Message, ts, ts)
	if err != nil {
		return 0, mapDuplicate(err)
	}

	return res.LastInsertId()
}

func scanApplicationRow(row *sql.Row) (*models.Application, error) {
	var a models.Application
	if err := row.Scan(&a.ID, &a.ProjectID, &a.DeveloperID, &a.Status, &a.Message, &a.Created, &a.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &a, nil
}

func (r *SQLiteRepo) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	return scanApplicationRow(row)
}

func (r *SQLiteRepo) GetApplicationByProjectAndDeveloper(ctx context.Context, projectID, developerID int64) (*models.Application, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE project_id = ? AND developer_id = ?`, projectID, developerID)
	return scanApplicationRow(row)
}

func (r *SQLiteRepo) listApplications(ctx context.Context, where string, args ...any) ([]models.Application, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+applicationColumns+` FROM applications`+where+` ORDER BY created DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.DeveloperID, &a.Status, &a.Message, &a.Created, &a.Updated); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) ListApplicationsByProject(ctx context.Context, projectID int64) ([]models.Application, error) {
	return r.listApplications(ctx, ` WHERE project_id = ?`, projectID)
}

func (r *SQLiteRepo) ListApplicationsByDeveloper(ctx context.Context, developerID int64) ([]models.Application, error) {
	return r.listApplications(ctx, ` WHERE developer_id = ?`, developerID)
}

func (r *SQLiteRepo) ListApplications(ctx context.Context) ([]models.Application, error) {
	return r.listApplications(ctx, ``)
}

// TransitionApplicationStatus performs a guarded status update. The WHERE
// clause on the source status makes concurrent conflicting transitions resolve
// to exactly one winner; once accepted or rejected, a row never changes again.
func (r *SQLiteRepo) TransitionApplicationStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE applications SET status = ?, updated = ? WHERE id = ? AND status = ?`, to, now(), id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
