package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MilktreeAgency/landco/models"
	"github.com/redis/go-redis/v9"
)

// ChatSessionStore persists chat conversations. Get returns nil and no error
// for an unknown or expired session.
type ChatSessionStore interface {
	Get(ctx context.Context, id string) (*models.ChatSession, error)
	Save(ctx context.Context, session *models.ChatSession) error
}

type RedisChatStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisChatStore(client *redis.Client, ttl time.Duration) *RedisChatStore {
	return &RedisChatStore{client: client, ttl: ttl}
}

func (r *RedisChatStore) getKey(id string) string {
	return fmt.Sprintf("chat:session:%s", id)
}

func (r *RedisChatStore) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	data, err := r.client.Get(ctx, r.getKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session models.ChatSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("decode chat session %s: %w", id, err)
	}
	return &session, nil
}

// Save writes the session and restarts its expiry.
func (r *RedisChatStore) Save(ctx context.Context, session *models.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.getKey(session.ID), data, r.ttl).Err()
}

// MemoryChatStore is the single-instance fallback used without Redis.
type MemoryChatStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	session   models.ChatSession
	expiresAt time.Time
}

func NewMemoryChatStore(ttl time.Duration) *MemoryChatStore {
	return &MemoryChatStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryChatStore) Get(_ context.Context, id string) (*models.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.sessions, id)
		return nil, nil
	}
	s := e.session
	s.Messages = append([]models.ChatMessage(nil), e.session.Messages...)
	return &s, nil
}

func (m *MemoryChatStore) Save(_ context.Context, session *models.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, e := range m.sessions {
		if now.After(e.expiresAt) {
			delete(m.sessions, id)
		}
	}
	s := *session
	s.Messages = append([]models.ChatMessage(nil), session.Messages...)
	m.sessions[session.ID] = memoryEntry{session: s, expiresAt: now.Add(m.ttl)}
	return nil
}
