package ws

import "testing"

func newTestClient(player, matchToken string) *Client {
	return &Client{
		playerID:   player,
		matchToken: matchToken,
		send:       make(chan []byte, 4),
	}
}

func TestRegisterReplacesClientAcrossMatches(t *testing.T) {
	h := NewHub()

	first := newTestClient("alice", "match-a")
	h.register(first)
	second := newTestClient("alice", "match-b")
	h.register(second)

	h.mu.RLock()
	_, staleRoom := h.matchRooms["match-a"]
	h.mu.RUnlock()
	if staleRoom {
		t.Error("old match room still exists after player moved to a new match")
	}

	// Broadcasting to the abandoned room must be a no-op, not a send on the
	// replaced client's closed channel.
	h.BroadcastToMatch("match-a", map[string]interface{}{"type": "noop"})

	h.BroadcastToMatch("match-b", map[string]interface{}{"type": "noop"})
	select {
	case <-second.send:
	default:
		t.Error("new client did not receive broadcast on its match")
	}

	if _, open := <-first.send; open {
		t.Error("replaced client's send channel was not closed")
	}
}

func TestRegisterReplacesClientSameMatch(t *testing.T) {
	h := NewHub()

	first := newTestClient("alice", "match-a")
	h.register(first)
	second := newTestClient("alice", "match-a")
	h.register(second)

	h.mu.RLock()
	room := h.matchRooms["match-a"]
	got := room["alice"]
	h.mu.RUnlock()
	if got != second {
		t.Fatal("room does not hold the replacement client")
	}

	h.BroadcastToMatch("match-a", map[string]interface{}{"type": "noop"})
	select {
	case <-second.send:
	default:
		t.Error("replacement client did not receive broadcast")
	}
}

func TestUnregisterAfterReplacementKeepsNewClient(t *testing.T) {
	h := NewHub()

	first := newTestClient("alice", "match-a")
	h.register(first)
	second := newTestClient("alice", "match-a")
	h.register(second)

	// The replaced client's read pump unregisters late; the live client must
	// survive it.
	h.unregister(first)

	h.mu.RLock()
	got := h.clients["alice"]
	h.mu.RUnlock()
	if got != second {
		t.Error("unregister of the replaced client evicted the live client")
	}
}
