package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hexblast/hexblast-backend/internal/entity"
)

const (
	ActionMatchFound = "match:found"
	ActionTurnUpdate = "turn:update"
	ActionGameOver   = "game:over"
)

// Conn is a live duplex channel to one connected player. The transport
// layer supplies the implementation.
type Conn interface {
	Send(action string, payload any) error
}

// MatchFound is the payload delivered to each player of a fresh pairing.
type MatchFound struct {
	SessionID    string `json:"session_id"`
	OpponentName string `json:"opponent_name"`
	FirstMover   bool   `json:"first_mover"`
}

type sessionCreator interface {
	CreateSession(ctx context.Context, player1, player2 entity.QueueEntry) (*entity.Session, error)
}

// Matchmaker owns the wait queue and the connection registry. One mutex
// guards both: every mutation (join, prune, pair, register, unregister) is
// a single critical section, and pairing attempts are never nested.
type Matchmaker struct {
	logger   *slog.Logger
	sessions sessionCreator
	queueTTL time.Duration

	mu    sync.Mutex
	queue []entity.QueueEntry
	conns map[string]Conn
}

func NewMatchmaker(logger *slog.Logger, sessions sessionCreator, queueTTL time.Duration) *Matchmaker {
	return &Matchmaker{
		logger:   logger.With("component", "matchmaker"),
		sessions: sessions,
		queueTTL: queueTTL,
		conns:    make(map[string]Conn),
	}
}

// Register - records a live connection for the player. A registered
// connection is the sole precondition for a queue entry to be pairable.
func (that *Matchmaker) Register(playerID string, conn Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[playerID] = conn
}

// Unregister - drops the player's connection and, atomically with it, any
// queue entry, so a disconnected player can never be paired.
func (that *Matchmaker) Unregister(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.conns, playerID)

	for i, entry := range that.queue {
		if entry.PlayerID == playerID {
			that.queue = append(that.queue[:i], that.queue[i+1:]...)
			break
		}
	}
}

// JoinQueue - appends the player to the wait queue unless already queued.
func (that *Matchmaker) JoinQueue(playerID, name string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, entry := range that.queue {
		if entry.PlayerID == playerID {
			return
		}
	}

	that.queue = append(that.queue, entity.QueueEntry{
		PlayerID:   playerID,
		Name:       name,
		EnqueuedAt: time.Now(),
	})
}

// Notify - best-effort delivery of one event to one player. A failed send
// degrades to dropping that connection; it is never fatal to the caller.
func (that *Matchmaker) Notify(playerID, action string, payload any) {
	that.mu.Lock()
	conn, ok := that.conns[playerID]
	that.mu.Unlock()

	if !ok {
		return
	}

	if err := conn.Send(action, payload); err != nil {
		that.logger.Error("failed to notify player, dropping connection", "playerID", playerID, "error", err)
		that.Unregister(playerID)
	}
}

// TryMatch - prunes stale entries, then pairs the first two queued players
// in FIFO order that both hold live connections. The matched pair is handed
// to session creation; a creation failure re-enqueues both players at the
// front of the queue instead of dropping them.
//
// When the initiator is part of the matched pair it is normalized to
// player 1 (the first mover); otherwise queue order decides.
func (that *Matchmaker) TryMatch(ctx context.Context, initiatorID string) (*entity.Session, error) {
	first, second, ok := that.takePair(initiatorID)
	if !ok {
		return nil, nil
	}

	session, err := that.sessions.CreateSession(ctx, first, second)
	if err != nil {
		that.requeue(first, second)
		return nil, fmt.Errorf("failed to create session for pair: %w", err)
	}

	that.Notify(first.PlayerID, ActionMatchFound, MatchFound{
		SessionID:    session.ID,
		OpponentName: second.Name,
		FirstMover:   true,
	})
	that.Notify(second.PlayerID, ActionMatchFound, MatchFound{
		SessionID:    session.ID,
		OpponentName: first.Name,
		FirstMover:   false,
	})

	that.logger.Info("players matched", "sessionID", session.ID, "player1", first.PlayerID, "player2", second.PlayerID)

	return session, nil
}

// takePair removes and returns the first pairable entries, in one critical
// section with the staleness prune.
func (that *Matchmaker) takePair(initiatorID string) (entity.QueueEntry, entity.QueueEntry, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.pruneLocked()

	for i := 0; i < len(that.queue); i++ {
		if that.conns[that.queue[i].PlayerID] == nil {
			continue
		}

		for j := i + 1; j < len(that.queue); j++ {
			if that.conns[that.queue[j].PlayerID] == nil {
				continue
			}

			first, second := that.queue[i], that.queue[j]

			// Remove the higher index first so the lower one stays valid.
			that.queue = append(that.queue[:j], that.queue[j+1:]...)
			that.queue = append(that.queue[:i], that.queue[i+1:]...)

			if second.PlayerID == initiatorID {
				first, second = second, first
			}

			return first, second, true
		}
	}

	return entity.QueueEntry{}, entity.QueueEntry{}, false
}

// requeue puts entries back at the front of the queue with a fresh
// timestamp, so a pair bounced by a session creation failure near the TTL
// boundary is retried instead of pruned.
func (that *Matchmaker) requeue(entries ...entity.QueueEntry) {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := time.Now()
	for i := range entries {
		entries[i].EnqueuedAt = now
	}

	that.queue = append(entries, that.queue...)
}

// pruneLocked drops entries with no live connection or older than the TTL.
// Caller holds the lock.
func (that *Matchmaker) pruneLocked() {
	kept := that.queue[:0]
	for _, entry := range that.queue {
		if that.conns[entry.PlayerID] == nil {
			continue
		}
		if that.queueTTL > 0 && time.Since(entry.EnqueuedAt) > that.queueTTL {
			continue
		}
		kept = append(kept, entry)
	}

	that.queue = kept
}

// QueueLen reports the current queue size.
func (that *Matchmaker) QueueLen() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.queue)
}
