package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
)

// SessionStore implements ports.SessionStore on Valkey. Sessions expire after
// the configured TTL; each Save refreshes it, so an active wizard never times
// out mid-flow.
type SessionStore struct {
	client valkey.Client
	ttl    time.Duration
}

// NewSessionStore creates a session store sharing the cache's client.
func NewSessionStore(client valkey.Client, ttlSeconds int) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

func sessionKey(id string) string {
	return "intake:session:" + id
}

// Save serializes the session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, session *domain.IntakeSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	cmd := s.client.Do(ctx,
		s.client.B().Set().Key(sessionKey(session.ID)).Value(string(data)).Ex(s.ttl).Build(),
	)
	return cmd.Error()
}

// Load returns the session, or (nil, nil) when it is missing or expired.
func (s *SessionStore) Load(ctx context.Context, id string) (*domain.IntakeSession, error) {
	cmd := s.client.Do(ctx, s.client.B().Get().Key(sessionKey(id)).Build())
	if err := cmd.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	data, err := cmd.AsBytes()
	if err != nil {
		return nil, err
	}
	var session domain.IntakeSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(sessionKey(id)).Build()).Error()
}
