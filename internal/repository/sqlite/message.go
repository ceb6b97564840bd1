package sqlite

import (
	"context"
	"fmt"

	"github.com/mfreitas/devmarket/pkg/models"
)

func (r *SQLiteRepo) CreateMessage(ctx context.Context, m *models.Message) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("message is nil")
	}

	read := 0
	if m.Read {
		read = 1
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO messages (conversation_id, sender_id, body, read, event_kind, event_ref, created) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ConversationID, m.SenderID, m.Body, read, m.EventKind, m.EventRef, now())
	if err != nil {
		// the partial unique index on (conversation, event_kind, event_ref)
		// turns a repeated notification into ErrDuplicate
		return 0, mapDuplicate(err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListMessagesByConversation(ctx context.Context, conversationID int64, limit, offset int) ([]models.Message, error) {
	q := `SELECT id, conversation_id, sender_id, body, read, event_kind, event_ref, created FROM messages WHERE conversation_id = ? ORDER BY created ASC, id ASC`
	args := []any{conversationID}
	if limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		var read int
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &read, &m.EventKind, &m.EventRef, &m.Created); err != nil {
			return nil, err
		}
		m.Read = read != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) CountMessagesByConversation(ctx context.Context, conversationID int64) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM messages WHERE conversation_id = ?`, conversationID)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *SQLiteRepo) MarkMessagesRead(ctx context.Context, conversationID, readerID int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE messages SET read = 1 WHERE conversation_id = ? AND sender_id != ? AND read = 0`, conversationID, readerID)
	return err
}
