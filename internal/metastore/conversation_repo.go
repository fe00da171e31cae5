package metastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// CreateConversation inserts a new conversation row.
func (s *Store) CreateConversation(ctx context.Context, conv *Conversation) error {
	now := nowUTC()
	conv.CreatedAt, conv.UpdatedAt = now, now

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO conversations (id, kb_id, kb_name, title, created_at, updated_at, message_count)
			VALUES (?, ?, ?, ?, ?, ?, 0)`,
			conv.ID, conv.KBID, conv.KBName, conv.Title, conv.CreatedAt, conv.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}
		return nil
	})
}

// ListConversationsByKB returns every conversation scoped to kbID.
func (s *Store) ListConversationsByKB(ctx context.Context, kbID string) ([]*Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kb_id, kb_name, title, created_at, updated_at, message_count
		FROM conversations WHERE kb_id = ? ORDER BY updated_at DESC`, kbID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AppendMessage inserts a message and increments the conversation's
// message_count/updated_at in one transaction.
func (s *Store) AppendMessage(ctx context.Context, msg *Message) error {
	retrieved, err := json.Marshal(msg.RetrievedDocs)
	if err != nil {
		return fmt.Errorf("marshal retrieved docs: %w", err)
	}
	metadata, err := json.Marshal(msg.Metadata)
	if err != nil {
		return fmt.Errorf("marshal message metadata: %w", err)
	}
	uploaded, err := json.Marshal(msg.UploadedFiles)
	if err != nil {
		return fmt.Errorf("marshal uploaded files: %w", err)
	}
	fileMeta, err := json.Marshal(msg.FileMetadata)
	if err != nil {
		return fmt.Errorf("marshal file metadata: %w", err)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = nowUTC()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO conversation_messages (
				id, conversation_id, role, content, timestamp, confidence, confidence_level,
				response_time_ms, from_cache, is_welcome, error, retrieved_docs, metadata,
				uploaded_files, file_metadata
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.Timestamp, msg.Confidence, msg.ConfidenceLevel,
			msg.ResponseTimeMs, boolToInt(msg.FromCache), boolToInt(msg.IsWelcome), msg.Error,
			string(retrieved), string(metadata), string(uploaded), string(fileMeta))
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE conversations SET message_count = message_count + 1, updated_at = ? WHERE id = ?`,
			nowUTC(), msg.ConversationID)
		if err != nil {
			return fmt.Errorf("bump conversation counters: %w", err)
		}
		return nil
	})
}

// ListMessages returns every message in conversationID, in timestamp order.
func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, timestamp, confidence, confidence_level,
			response_time_ms, from_cache, is_welcome, error, retrieved_docs, metadata,
			uploaded_files, file_metadata
		FROM conversation_messages WHERE conversation_id = ? ORDER BY timestamp ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteConversation removes a conversation and its messages (cascade).
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return wrapNotFound(sql.ErrNoRows, "conversation", id)
		}
		return nil
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanConversation(row scannable) (*Conversation, error) {
	var c Conversation
	if err := row.Scan(&c.ID, &c.KBID, &c.KBName, &c.Title, &c.CreatedAt, &c.UpdatedAt, &c.MessageCount); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanMessage(row scannable) (*Message, error) {
	var m Message
	var retrieved, metadata, uploaded, fileMeta string
	var fromCache, isWelcome int
	if err := row.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Timestamp, &m.Confidence, &m.ConfidenceLevel,
		&m.ResponseTimeMs, &fromCache, &isWelcome, &m.Error, &retrieved, &metadata, &uploaded, &fileMeta); err != nil {
		return nil, err
	}
	m.FromCache = fromCache != 0
	m.IsWelcome = isWelcome != 0
	_ = json.Unmarshal([]byte(retrieved), &m.RetrievedDocs)
	_ = json.Unmarshal([]byte(metadata), &m.Metadata)
	_ = json.Unmarshal([]byte(uploaded), &m.UploadedFiles)
	_ = json.Unmarshal([]byte(fileMeta), &m.FileMetadata)
	return &m, nil
}
