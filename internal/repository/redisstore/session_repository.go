// Package redisstore is the Redis-backed session driver, for
// deployments where sessions must survive a restart. Sessions are
// stored as JSON under "session:<id>" with a sliding TTL.
package redisstore

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"intellicart-assistant-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "session:"
	sessionTTL = 1 * time.Hour
	opTimeout  = 3 * time.Second
)

type SessionRepository struct {
	rdb *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

// GetOrCreate uses SETNX for the create path so concurrent first turns
// agree on a single stored session.
func (r *SessionRepository) GetOrCreate(sessionID string) *store.Session {
	if s, found := r.Get(sessionID); found {
		return s
	}

	fresh := store.NewSession(sessionID)
	data, err := json.Marshal(fresh)
	if err != nil {
		log.Printf("[ERROR] marshal session %s: %v", sessionID, err)
		return fresh
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	ok, err := r.rdb.SetNX(ctx, keyPrefix+sessionID, data, sessionTTL).Result()
	if err != nil {
		log.Printf("[WARN] redis SETNX %s: %v", sessionID, err)
		return fresh
	}
	if !ok {
		// Lost the race; read back the winner.
		if s, found := r.Get(sessionID); found {
			return s
		}
	}
	return fresh
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := r.rdb.Get(ctx, keyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("[WARN] redis GET %s: %v", sessionID, err)
		return nil, false
	}

	var s store.Session
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("[ERROR] unmarshal session %s: %v", sessionID, err)
		return nil, false
	}
	return &s, true
}

func (r *SessionRepository) Save(session *store.Session) {
	data, err := json.Marshal(session)
	if err != nil {
		log.Printf("[ERROR] marshal session %s: %v", session.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.rdb.Set(ctx, keyPrefix+session.ID, data, sessionTTL).Err(); err != nil {
		log.Printf("[WARN] redis SET %s: %v", session.ID, err)
	}
}

func (r *SessionRepository) Delete(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.rdb.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		log.Printf("[WARN] redis DEL %s: %v", sessionID, err)
	}
}
