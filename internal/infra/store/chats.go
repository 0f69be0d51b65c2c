package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ProjectAI00/relay/internal/domain"
)

// GetChat retrieves a chat by ID. Returns nil if not found.
func (s *Store) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	var c domain.Chat
	err := s.db.QueryRowContext(ctx, `SELECT id, title, created FROM chats WHERE id = ?`, id).
		Scan(&c.ID, &c.Title, &c.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat %s: %w", id, err)
	}
	return &c, nil
}

// SaveChat creates or updates a chat.
func (s *Store) SaveChat(ctx context.Context, chat *domain.Chat) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chats (id, title, created) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title`,
		chat.ID, chat.Title, chat.Created)
	if err != nil {
		return fmt.Errorf("save chat %s: %w", chat.ID, err)
	}
	return nil
}

// GetSubChat retrieves a sub-chat by ID. Returns nil if not found.
func (s *Store) GetSubChat(ctx context.Context, id string) (*domain.SubChat, error) {
	var sc domain.SubChat
	err := s.db.QueryRowContext(ctx, `
		SELECT id, chat_id, backend, session_id, created FROM sub_chats WHERE id = ?`, id).
		Scan(&sc.ID, &sc.ChatID, &sc.Backend, &sc.SessionID, &sc.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sub-chat %s: %w", id, err)
	}
	return &sc, nil
}

// SaveSubChat creates or updates a sub-chat.
func (s *Store) SaveSubChat(ctx context.Context, subChat *domain.SubChat) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sub_chats (id, chat_id, backend, session_id, created)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			backend = excluded.backend,
			session_id = excluded.session_id`,
		subChat.ID, subChat.ChatID, subChat.Backend, subChat.SessionID, subChat.Created)
	if err != nil {
		return fmt.Errorf("save sub-chat %s: %w", subChat.ID, err)
	}
	return nil
}

// AppendMessage appends a message to a sub-chat's history.
func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	parts, err := json.Marshal(msg.Parts)
	if err != nil {
		return fmt.Errorf("marshal message parts: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, sub_chat_id, role, parts, created) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.SubChatID, string(msg.Role), string(parts), msg.Created)
	if err != nil {
		return fmt.Errorf("append message %s: %w", msg.ID, err)
	}
	return nil
}

// ListMessages retrieves a sub-chat's history in chronological order.
func (s *Store) ListMessages(ctx context.Context, subChatID string) ([]*domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sub_chat_id, role, parts, created
		FROM messages WHERE sub_chat_id = ? ORDER BY created, id`, subChatID)
	if err != nil {
		return nil, fmt.Errorf("list messages of %s: %w", subChatID, err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*domain.Message
	for rows.Next() {
		var m domain.Message
		var role, parts string
		if err := rows.Scan(&m.ID, &m.SubChatID, &role, &parts, &m.Created); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		if err := json.Unmarshal([]byte(parts), &m.Parts); err != nil {
			return nil, fmt.Errorf("unmarshal parts of message %s: %w", m.ID, err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
