package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Session is one issued token.
type Session struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

func (s Session) expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}

func SessionFromClaims(c *Claims) Session {
	return Session{
		ID:        c.ID,
		Username:  c.Username,
		IssuedAt:  c.IssuedAt.Unix(),
		ExpiresAt: c.ExpiresAt.Unix(),
	}
}

// SessionStore tracks active sessions and revoked tokens.
type SessionStore interface {
	Register(ctx context.Context, session Session) error
	Active(ctx context.Context, username string) ([]Session, error)
	Revoke(ctx context.Context, session Session) error
	RevokeAll(ctx context.Context, username string) (int, error)
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

func sessionsKey(username string) string {
	return fmt.Sprintf("sessions:%s", username)
}

func blacklistKey(sessionID string) string {
	return fmt.Sprintf("blacklist:%s", sessionID)
}

// RedisSessionStore keeps a hash of sessions per user and a blacklist key per revoked
// token that expires together with the token.
type RedisSessionStore struct {
	redis *redis.Client
	now   func() time.Time
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: client, now: time.Now}
}

func (s *RedisSessionStore) Register(ctx context.Context, session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	key := sessionsKey(session.Username)
	if err := s.redis.HSet(ctx, key, session.ID, string(data)).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return s.redis.ExpireAt(ctx, key, time.Unix(session.ExpiresAt, 0)).Err()
}

func (s *RedisSessionStore) Active(ctx context.Context, username string) ([]Session, error) {
	key := sessionsKey(username)
	entries, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	now := s.now()
	active := make([]Session, 0, len(entries))
	var stale []string
	for id, raw := range entries {
		var session Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil || session.expired(now) {
			stale = append(stale, id)
			continue
		}
		active = append(active, session)
	}

	if len(stale) > 0 {
		sort.Strings(stale)
		if err := s.redis.HDel(ctx, key, stale...).Err(); err != nil {
			return nil, fmt.Errorf("drop expired sessions: %w", err)
		}
	}

	sortSessions(active)
	return active, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, session Session) error {
	key := blacklistKey(session.ID)
	if err := s.redis.Set(ctx, key, "1", 0).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	if err := s.redis.ExpireAt(ctx, key, time.Unix(session.ExpiresAt, 0)).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return s.redis.HDel(ctx, sessionsKey(session.Username), session.ID).Err()
}

func (s *RedisSessionStore) RevokeAll(ctx context.Context, username string) (int, error) {
	sessions, err := s.Active(ctx, username)
	if err != nil {
		return 0, err
	}

	for _, session := range sessions {
		key := blacklistKey(session.ID)
		if err := s.redis.Set(ctx, key, "1", 0).Err(); err != nil {
			return 0, fmt.Errorf("blacklist token: %w", err)
		}
		if err := s.redis.ExpireAt(ctx, key, time.Unix(session.ExpiresAt, 0)).Err(); err != nil {
			return 0, fmt.Errorf("blacklist token: %w", err)
		}
	}

	if err := s.redis.Del(ctx, sessionsKey(username)).Err(); err != nil {
		return 0, fmt.Errorf("clear sessions: %w", err)
	}
	return len(sessions), nil
}

func (s *RedisSessionStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.redis.Exists(ctx, blacklistKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemorySessionStore is used when Redis is not reachable. Sessions do not survive a
// restart and are not shared between instances.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]Session
	revoked  map[string]int64
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]map[string]Session),
		revoked:  make(map[string]int64),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Register(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.sessions[session.Username]
	if !ok {
		byID = make(map[string]Session)
		s.sessions[session.Username] = byID
	}
	byID[session.ID] = session
	return nil
}

func (s *MemorySessionStore) Active(_ context.Context, username string) ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked(username), nil
}

func (s *MemorySessionStore) activeLocked(username string) []Session {
	now := s.now()
	active := make([]Session, 0, len(s.sessions[username]))
	for id, session := range s.sessions[username] {
		if session.expired(now) {
			delete(s.sessions[username], id)
			continue
		}
		active = append(active, session)
	}
	sortSessions(active)
	return active
}

func (s *MemorySessionStore) Revoke(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[session.ID] = session.ExpiresAt
	delete(s.sessions[session.Username], session.ID)
	return nil
}

func (s *MemorySessionStore) RevokeAll(_ context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.activeLocked(username)
	for _, session := range active {
		s.revoked[session.ID] = session.ExpiresAt
	}
	delete(s.sessions, username)
	return len(active), nil
}

func (s *MemorySessionStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.revoked[sessionID]
	if !ok {
		return false, nil
	}
	if s.now().Unix() >= expiresAt {
		delete(s.revoked, sessionID)
		return false, nil
	}
	return true, nil
}

func sortSessions(sessions []Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].IssuedAt != sessions[j].IssuedAt {
			return sessions[i].IssuedAt < sessions[j].IssuedAt
		}
		return sessions[i].ID < sessions[j].ID
	})
}
