package redisx

import "time"

const (
	// Client session: hash session:{session_id} -> field per session key (e.g. "basket" -> JSON)
	KeySession = "session:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
