package memory

import (
	"intellicart-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Sessions live for the process lifetime; nothing expires them and
	// no janitor runs.
	c := cache.New(cache.NoExpiration, 0)
	return &SessionRepository{
		cache: c,
	}
}

// GetOrCreate relies on cache.Add being atomic: when two turns race on
// a brand-new session id, exactly one insert wins and both turns get
// the same pointer.
func (r *SessionRepository) GetOrCreate(sessionID string) *store.Session {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session)
	}
	fresh := store.NewSession(sessionID)
	if err := r.cache.Add(sessionID, fresh, cache.DefaultExpiration); err != nil {
		// Lost the race; the winner's session is in the cache now.
		if x, found := r.cache.Get(sessionID); found {
			return x.(*store.Session)
		}
	}
	return fresh
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
