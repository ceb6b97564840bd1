package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mfreitas/devmarket/pkg/models"
	"github.com/mfreitas/devmarket/pkg/repository"
)

const projectColumns = `id, client_id, title, description, project_type, budget_min, budget_max, timeline, required_skills, complexity, status, created, updated`

func (r *SQLiteRepo) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("project is nil")
	}
	if p.Status == "" {
		p.Status = models.ProjectStatusOpen
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO projects (client_id, title, description, project_type, budget_min, budget_max, timeline, required_skills, complexity, status, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClientID, p.Title, p.Description, p.ProjectType, p.BudgetMin, p.BudgetMax, p.Timeline, encodeStrings(p.RequiredSkills), p.Complexity, p.Status, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	var p models.Project
	var skills string
	if err := row.Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &p.ProjectType, &p.BudgetMin, &p.BudgetMax, &p.Timeline, &skills, &p.Complexity, &p.Status, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	p.RequiredSkills = decodeStrings(skills)

	return &p, nil
}

func (r *SQLiteRepo) UpdateProject(ctx context.Context, p *models.Project) error {
	if p == nil {
		return fmt.Errorf("project is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE projects SET title = ?, description = ?, project_type = ?, budget_min = ?, budget_max = ?, timeline = ?, required_skills = ?, complexity = ?, updated = ? WHERE id = ?`,
		p.Title, p.Description, p.ProjectType, p.BudgetMin, p.BudgetMax, p.Timeline, encodeStrings(p.RequiredSkills), p.Complexity, now(), p.ID)
	return err
}

func (r *SQLiteRepo) UpdateProjectStatus(ctx context.Context, id int64, status string) error {
	_, err := r.conn.Exec(ctx, `UPDATE projects SET status = ?, updated = ? WHERE id = ?`, status, now(), id)
	return err
}

// projectFilterClause builds the WHERE clause shared by ListProjects and
// CountProjects. Skill matching looks for the quoted skill inside the stored
// JSON array.
func projectFilterClause(f repository.ProjectFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.ClientID > 0 {
		conds = append(conds, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.Skill != "" {
		conds = append(conds, "required_skills LIKE ?")
		args = append(args, `%"`+f.Skill+`"%`)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *SQLiteRepo) ListProjects(ctx context.Context, f repository.ProjectFilter) ([]models.Project, error) {
	where, args := projectFilterClause(f)
	q := `SELECT ` + projectColumns + ` FROM projects` + where + ` ORDER BY created DESC`
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		var skills string
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &p.ProjectType, &p.BudgetMin, &p.BudgetMax, &p.Timeline, &skills, &p.Complexity, &p.Status, &p.Created, &p.Updated); err != nil {
			return nil, err
		}
		p.RequiredSkills = decodeStrings(skills)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) CountProjects(ctx context.Context, f repository.ProjectFilter) (int64, error) {
	where, args := projectFilterClause(f)
	row := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM projects`+where, args...)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
