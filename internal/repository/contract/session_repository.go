package contract

import (
	"intellicart-assistant-be/pkg/store"
)

// ISessionRepository defines the shopping session store operations.
// Drivers: in-process go-cache (default) and Redis.
type ISessionRepository interface {
	// GetOrCreate returns the session for the id, creating a fresh
	// wizard-stage session atomically when none exists.
	GetOrCreate(sessionID string) *store.Session

	Get(sessionID string) (*store.Session, bool)

	// Save persists the session after a turn mutated it. The memory
	// driver shares pointers so Save is a TTL refresh; the Redis driver
	// serializes.
	Save(session *store.Session)

	Delete(sessionID string)
}
