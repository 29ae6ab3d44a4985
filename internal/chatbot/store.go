package chatbot

import (
	"context"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
)

// SessionTTL bounds how long an idle conversation is kept.
const SessionTTL = 30 * 24 * time.Hour

const sessionIndexKey = "chat:sessions"

// Message roles stored in a session transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one transcript entry.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Session is a stored conversation.
type Session struct {
	ID            string                  `json:"id"`
	Status        enums.ChatSessionStatus `json:"status"`
	CustomerEmail *string                 `json:"customer_email"`
	CustomerName  *string                 `json:"customer_name"`
	Messages      []Message               `json:"messages"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	EscalatedAt   *time.Time              `json:"escalated_at"`
	ResolvedAt    *time.Time              `json:"resolved_at"`
}

func sessionKey(id string) string {
	return "chat:session:" + id
}

type sessionStore struct {
	kv kvstore.Store
}

func (s sessionStore) get(ctx context.Context, id string) (*Session, bool, error) {
	var session Session
	found, err := kvstore.GetJSON(ctx, s.kv, sessionKey(id), &session)
	if err != nil || !found {
		return nil, false, err
	}
	return &session, true, nil
}

func (s sessionStore) save(ctx context.Context, session *Session) error {
	if err := kvstore.SetJSON(ctx, s.kv, sessionKey(session.ID), session, SessionTTL); err != nil {
		return err
	}
	return s.kv.SAdd(ctx, sessionIndexKey, session.ID)
}

// all loads every indexed session, pruning ids whose documents expired.
func (s sessionStore) all(ctx context.Context) ([]Session, error) {
	ids, err := s.kv.SMembers(ctx, sessionIndexKey)
	if err != nil {
		return nil, err
	}
	sessions := make([]Session, 0, len(ids))
	var stale []string
	for _, id := range ids {
		session, found, err := s.get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			stale = append(stale, id)
			continue
		}
		sessions = append(sessions, *session)
	}
	if len(stale) > 0 {
		if err := s.kv.SRem(ctx, sessionIndexKey, stale...); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}
