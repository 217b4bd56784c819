package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/hexblast/hexblast-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEvent struct {
	action  string
	payload any
}

type fakeConn struct {
	sent     []sentEvent
	failSend error
}

func (that *fakeConn) Send(action string, payload any) error {
	if that.failSend != nil {
		return that.failSend
	}

	that.sent = append(that.sent, sentEvent{action: action, payload: payload})

	return nil
}

type stubSessionCreator struct {
	session *entity.Session
	err     error
	calls   int
}

func (that *stubSessionCreator) CreateSession(_ context.Context, player1, player2 entity.QueueEntry) (*entity.Session, error) {
	that.calls++

	if that.err != nil {
		return nil, that.err
	}

	that.session.Players = [2]*entity.Player{
		{ID: player1.PlayerID, Name: player1.Name},
		{ID: player2.PlayerID, Name: player2.Name},
	}

	return that.session, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func matchFoundOf(t *testing.T, conn *fakeConn) MatchFound {
	t.Helper()

	require.Len(t, conn.sent, 1)
	require.Equal(t, ActionMatchFound, conn.sent[0].action)

	payload, ok := conn.sent[0].payload.(MatchFound)
	require.True(t, ok)

	return payload
}

func TestMatchmaker_TryMatch(t *testing.T) {
	t.Run("Lone player stays queued", func(t *testing.T) {
		// Given: one registered player in the queue
		matchmaker := NewMatchmaker(testLogger(), &stubSessionCreator{}, time.Minute)
		matchmaker.Register("p1", &fakeConn{})
		matchmaker.JoinQueue("p1", "Alice")

		// When: a pairing attempt runs
		session, err := matchmaker.TryMatch(context.Background(), "p1")

		// Then: no pair forms and the player keeps waiting
		require.NoError(t, err)
		assert.Nil(t, session)
		assert.Equal(t, 1, matchmaker.QueueLen())
	})

	t.Run("Pairs the two oldest live entries", func(t *testing.T) {
		// Given: three registered players queued in order
		creator := &stubSessionCreator{session: &entity.Session{ID: "game-1"}}
		matchmaker := NewMatchmaker(testLogger(), creator, time.Minute)

		conn1, conn2, conn3 := &fakeConn{}, &fakeConn{}, &fakeConn{}
		matchmaker.Register("p1", conn1)
		matchmaker.Register("p2", conn2)
		matchmaker.Register("p3", conn3)
		matchmaker.JoinQueue("p1", "Alice")
		matchmaker.JoinQueue("p2", "Bob")
		matchmaker.JoinQueue("p3", "Cleo")

		// When: the third player triggers a pairing attempt
		session, err := matchmaker.TryMatch(context.Background(), "p3")

		// Then: the two oldest entries are paired, the initiator keeps waiting
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, 1, matchmaker.QueueLen())

		// Then: both players hear about the match, first mover flagged once
		found1 := matchFoundOf(t, conn1)
		assert.Equal(t, "game-1", found1.SessionID)
		assert.Equal(t, "Bob", found1.OpponentName)
		assert.True(t, found1.FirstMover)

		found2 := matchFoundOf(t, conn2)
		assert.Equal(t, "Alice", found2.OpponentName)
		assert.False(t, found2.FirstMover)

		assert.Empty(t, conn3.sent)
	})

	t.Run("Initiator in the pair becomes first mover", func(t *testing.T) {
		// Given: two queued players, the younger one initiating
		creator := &stubSessionCreator{session: &entity.Session{ID: "game-2"}}
		matchmaker := NewMatchmaker(testLogger(), creator, time.Minute)

		conn1, conn2 := &fakeConn{}, &fakeConn{}
		matchmaker.Register("p1", conn1)
		matchmaker.Register("p2", conn2)
		matchmaker.JoinQueue("p1", "Alice")
		matchmaker.JoinQueue("p2", "Bob")

		// When: the second player triggers the pairing
		session, err := matchmaker.TryMatch(context.Background(), "p2")

		// Then: the initiator is normalized to player 1
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "p2", session.Players[0].ID)

		found2 := matchFoundOf(t, conn2)
		assert.True(t, found2.FirstMover)

		found1 := matchFoundOf(t, conn1)
		assert.False(t, found1.FirstMover)
	})

	t.Run("Entries without a live connection are skipped", func(t *testing.T) {
		// Given: the oldest queued player has no connection
		creator := &stubSessionCreator{session: &entity.Session{ID: "game-3"}}
		matchmaker := NewMatchmaker(testLogger(), creator, time.Minute)

		conn2, conn3 := &fakeConn{}, &fakeConn{}
		matchmaker.Register("p2", conn2)
		matchmaker.Register("p3", conn3)
		matchmaker.JoinQueue("p1", "Alice")
		matchmaker.JoinQueue("p2", "Bob")
		matchmaker.JoinQueue("p3", "Cleo")

		// When: a pairing attempt runs
		session, err := matchmaker.TryMatch(context.Background(), "p3")

		// Then: the live players pair up and the dead entry is pruned
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "p2", session.Players[0].ID)
		assert.Equal(t, "p3", session.Players[1].ID)
		assert.Equal(t, 0, matchmaker.QueueLen())
	})

	t.Run("Creation failure re-enqueues the pair", func(t *testing.T) {
		// Given: session creation that fails once
		creator := &stubSessionCreator{err: errors.New("storage down")}
		matchmaker := NewMatchmaker(testLogger(), creator, time.Minute)

		conn1, conn2 := &fakeConn{}, &fakeConn{}
		matchmaker.Register("p1", conn1)
		matchmaker.Register("p2", conn2)
		matchmaker.JoinQueue("p1", "Alice")
		matchmaker.JoinQueue("p2", "Bob")

		// Given: both entries close to the TTL boundary
		matchmaker.mu.Lock()
		matchmaker.queue[0].EnqueuedAt = time.Now().Add(-55 * time.Second)
		matchmaker.queue[1].EnqueuedAt = time.Now().Add(-55 * time.Second)
		matchmaker.mu.Unlock()

		// When: the pairing attempt hits the failure
		session, err := matchmaker.TryMatch(context.Background(), "p2")

		// Then: the error surfaces and both players are back in the queue
		require.Error(t, err)
		assert.Nil(t, session)
		assert.Equal(t, 2, matchmaker.QueueLen())
		assert.Empty(t, conn1.sent)
		assert.Empty(t, conn2.sent)

		// Then: the re-enqueued entries carry fresh timestamps
		matchmaker.mu.Lock()
		for _, entry := range matchmaker.queue {
			assert.WithinDuration(t, time.Now(), entry.EnqueuedAt, time.Second)
		}
		matchmaker.mu.Unlock()

		// When: storage recovers and the attempt is retried
		creator.err = nil
		creator.session = &entity.Session{ID: "game-4"}
		session, err = matchmaker.TryMatch(context.Background(), "p2")

		// Then: the same pair matches
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, 0, matchmaker.QueueLen())
	})

	t.Run("Expired entries are pruned", func(t *testing.T) {
		// Given: two registered players, the older entry past its TTL
		creator := &stubSessionCreator{session: &entity.Session{ID: "game-5"}}
		matchmaker := NewMatchmaker(testLogger(), creator, time.Minute)

		matchmaker.Register("p1", &fakeConn{})
		matchmaker.Register("p2", &fakeConn{})
		matchmaker.JoinQueue("p1", "Alice")
		matchmaker.JoinQueue("p2", "Bob")

		matchmaker.mu.Lock()
		matchmaker.queue[0].EnqueuedAt = time.Now().Add(-2 * time.Minute)
		matchmaker.mu.Unlock()

		// When: a pairing attempt runs
		session, err := matchmaker.TryMatch(context.Background(), "p2")

		// Then: the stale entry is gone and no pair forms
		require.NoError(t, err)
		assert.Nil(t, session)
		assert.Equal(t, 1, matchmaker.QueueLen())
		assert.Zero(t, creator.calls)
	})
}

func TestMatchmaker_JoinQueue(t *testing.T) {
	// Given: a player already in the queue
	matchmaker := NewMatchmaker(testLogger(), &stubSessionCreator{}, time.Minute)
	matchmaker.Register("p1", &fakeConn{})
	matchmaker.JoinQueue("p1", "Alice")

	// When: the same player joins again
	matchmaker.JoinQueue("p1", "Alice")

	// Then: the queue holds a single entry
	assert.Equal(t, 1, matchmaker.QueueLen())
}

func TestMatchmaker_Unregister(t *testing.T) {
	// Given: a registered, queued player
	matchmaker := NewMatchmaker(testLogger(), &stubSessionCreator{}, time.Minute)
	matchmaker.Register("p1", &fakeConn{})
	matchmaker.JoinQueue("p1", "Alice")

	// When: the player disconnects
	matchmaker.Unregister("p1")

	// Then: connection and queue entry are both gone
	assert.Equal(t, 0, matchmaker.QueueLen())

	matchmaker.mu.Lock()
	_, stillRegistered := matchmaker.conns["p1"]
	matchmaker.mu.Unlock()
	assert.False(t, stillRegistered)
}

func TestMatchmaker_Notify(t *testing.T) {
	t.Run("Delivers to a registered player", func(t *testing.T) {
		matchmaker := NewMatchmaker(testLogger(), &stubSessionCreator{}, time.Minute)
		conn := &fakeConn{}
		matchmaker.Register("p1", conn)

		matchmaker.Notify("p1", ActionTurnUpdate, "payload")

		require.Len(t, conn.sent, 1)
		assert.Equal(t, ActionTurnUpdate, conn.sent[0].action)
	})

	t.Run("Unknown player is a no-op", func(t *testing.T) {
		matchmaker := NewMatchmaker(testLogger(), &stubSessionCreator{}, time.Minute)

		matchmaker.Notify("ghost", ActionTurnUpdate, "payload")
	})

	t.Run("Failed send drops the connection", func(t *testing.T) {
		// Given: a connection whose sends fail
		matchmaker := NewMatchmaker(testLogger(), &stubSessionCreator{}, time.Minute)
		conn := &fakeConn{failSend: errors.New("broken pipe")}
		matchmaker.Register("p1", conn)
		matchmaker.JoinQueue("p1", "Alice")

		// When: a notification is attempted
		matchmaker.Notify("p1", ActionTurnUpdate, "payload")

		// Then: the player is unregistered and dequeued
		assert.Equal(t, 0, matchmaker.QueueLen())

		matchmaker.mu.Lock()
		_, stillRegistered := matchmaker.conns["p1"]
		matchmaker.mu.Unlock()
		assert.False(t, stillRegistered)
	})
}
