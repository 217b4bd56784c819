package entity

import "time"

// QueueEntry is one player waiting in the matchmaking queue. The queue
// holds at most one entry per player id.
type QueueEntry struct {
	PlayerID   string    `json:"player_id"`
	Name       string    `json:"name"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
