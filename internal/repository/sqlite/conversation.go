package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfreitas/devmarket/pkg/models"
)

const conversationColumns = `id, client_id, developer_id, project_id, application_id, subject, status, last_message_at, created, updated`

func (r *SQLiteRepo) CreateConversation(ctx context.Context, c *models.Conversation) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("conversation is nil")
	}
	if c.Status == "" {
		c.Status = models.ConversationStatusActive
	}

	ts := now()
	var appID any
	if c.ApplicationID != nil {
		appID = *c.ApplicationID
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO conversations (client_id, developer_id, project_id, application_id, subject, status, last_message_at, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ClientID, c.DeveloperID, c.ProjectID, appID, c.Subject, c.Status, ts, ts, ts)
	if err != nil {
		return 0, mapDuplicate(err)
	}

	return res.LastInsertId()
}

func scanConversationRow(row *sql.Row) (*models.Conversation, error) {
	var c models.Conversation
	var appID sql.NullInt64
	if err := row.Scan(&c.ID, &c.ClientID, &c.DeveloperID, &c.ProjectID, &appID, &c.Subject, &c.Status, &c.LastMessageAt, &c.Created, &c.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if appID.Valid {
		c.ApplicationID = &appID.Int64
	}

	return &c, nil
}

func (r *SQLiteRepo) GetConversationByID(ctx context.Context, id int64) (*models.Conversation, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id)
	return scanConversationRow(row)
}

// GetConversationByKey matches on the full (client, developer, project) triple.
// Matching on a subset would silently reuse a thread from a different project.
func (r *SQLiteRepo) GetConversationByKey(ctx context.Context, clientID, developerID, projectID int64) (*models.Conversation, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE client_id = ? AND developer_id = ? AND project_id = ?`,
		clientID, developerID, projectID)
	return scanConversationRow(row)
}

func (r *SQLiteRepo) ListConversationsByAccount(ctx context.Context, accountID int64) ([]models.Conversation, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE client_id = ? OR developer_id = ? ORDER BY last_message_at DESC`,
		accountID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var c models.Conversation
		var appID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.ClientID, &c.DeveloperID, &c.ProjectID, &appID, &c.Subject, &c.Status, &c.LastMessageAt, &c.Created, &c.Updated); err != nil {
			return nil, err
		}
		if appID.Valid {
			c.ApplicationID = &appID.Int64
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) TouchConversation(ctx context.Context, id int64) error {
	ts := now()
	_, err := r.conn.Exec(ctx, `UPDATE conversations SET last_message_at = ?, updated = ? WHERE id = ?`, ts, ts, id)
	return err
}
