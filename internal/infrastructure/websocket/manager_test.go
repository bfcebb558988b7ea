package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway authorizes a fixed set of room/user pairs.
type fakeGateway struct {
	members map[string]bool
	marked  []string
}

func (g *fakeGateway) IsParticipant(_ context.Context, roomID, userID string) bool {
	return g.members[roomID+":"+userID]
}

func (g *fakeGateway) MarkRoomRead(_ context.Context, roomID, readerID string) (int, error) {
	g.marked = append(g.marked, roomID+":"+readerID)
	return 1, nil
}

func newTestClient(userID string, buffer int) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, buffer),
	}
}

func decodeEvent(t *testing.T, payload []byte) Event {
	t.Helper()
	var event Event
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

func TestSendToUserDeliversOnPrivateChannel(t *testing.T) {
	m := NewManager()
	client := newTestClient("alice", 4)
	m.addClient(client)

	require.NoError(t, m.SendToUser("alice", NewEvent(EventNotification, map[string]string{"title": "hi"})))

	event := decodeEvent(t, <-client.Send)
	assert.Equal(t, EventNotification, event.Type)
}

func TestSendToUserUnknownUserReturnsError(t *testing.T) {
	m := NewManager()

	assert.Error(t, m.SendToUser("nobody", Event{Type: EventPong}))
}

func TestBroadcastToRoomReachesSubscribersExceptExcluded(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice", 4)
	bob := newTestClient("bob", 4)
	carol := newTestClient("carol", 4)
	m.addClient(alice)
	m.addClient(bob)
	m.addClient(carol)

	m.JoinRoom("room-1", "alice")
	m.JoinRoom("room-1", "bob")
	// carol never joins

	m.BroadcastToRoom("room-1", NewEvent(EventNewMessage, map[string]string{"content": "x"}), "alice")

	assert.Len(t, bob.Send, 1)
	assert.Len(t, alice.Send, 0)
	assert.Len(t, carol.Send, 0)
}

func TestBroadcastPreservesDeliveryOrder(t *testing.T) {
	m := NewManager()
	bob := newTestClient("bob", 8)
	m.addClient(bob)
	m.JoinRoom("room-1", "bob")

	for i := 0; i < 3; i++ {
		m.BroadcastToRoom("room-1", NewEvent(EventNewMessage, map[string]int{"seq": i}), "")
	}

	for i := 0; i < 3; i++ {
		event := decodeEvent(t, <-bob.Send)
		var payload map[string]int
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, i, payload["seq"])
	}
}

func TestSlowConsumerIsDroppedWithoutStallingOthers(t *testing.T) {
	m := NewManager()
	slow := newTestClient("slow", 1)
	fast := newTestClient("fast", 8)
	m.addClient(slow)
	m.addClient(fast)
	m.JoinRoom("room-1", "slow")
	m.JoinRoom("room-1", "fast")

	// Second event overflows the slow client's buffer and evicts it.
	m.BroadcastToRoom("room-1", NewEvent(EventNewMessage, map[string]int{"seq": 0}), "")
	m.BroadcastToRoom("room-1", NewEvent(EventNewMessage, map[string]int{"seq": 1}), "")

	assert.Error(t, m.SendToUser("slow", Event{Type: EventPong}))
	assert.False(t, m.IsSubscribed("room-1", "slow"))

	assert.NoError(t, m.SendToUser("fast", Event{Type: EventPong}))
	assert.Len(t, fast.Send, 3)
}

func TestJoinRoomRejectedForNonParticipant(t *testing.T) {
	m := NewManager()
	m.Bind(&fakeGateway{members: map[string]bool{"room-1:alice": true}})

	alice := newTestClient("alice", 4)
	mallory := newTestClient("mallory", 4)
	m.addClient(alice)
	m.addClient(mallory)

	join, _ := json.Marshal(Event{Type: EventJoinRoom, Payload: mustRaw(t, RoomEventPayload{RoomID: "room-1"})})
	m.dispatch(alice, join)
	m.dispatch(mallory, join)

	assert.True(t, m.IsSubscribed("room-1", "alice"))
	assert.False(t, m.IsSubscribed("room-1", "mallory"))

	// The rejected client got an error frame.
	event := decodeEvent(t, <-mallory.Send)
	assert.Equal(t, EventError, event.Type)
}

func TestLeaveRoomRemovesSubscription(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice", 4)
	m.addClient(alice)
	m.JoinRoom("room-1", "alice")

	m.LeaveRoom("room-1", "alice")
	assert.False(t, m.IsSubscribed("room-1", "alice"))
}

func TestTypingRelayedOnlyToOtherSubscribers(t *testing.T) {
	m := NewManager()
	m.Bind(&fakeGateway{members: map[string]bool{"room-1:alice": true, "room-1:bob": true}})

	alice := newTestClient("alice", 4)
	bob := newTestClient("bob", 4)
	m.addClient(alice)
	m.addClient(bob)
	m.JoinRoom("room-1", "alice")
	m.JoinRoom("room-1", "bob")

	typing, _ := json.Marshal(Event{Type: EventTypingStart, Payload: mustRaw(t, RoomEventPayload{RoomID: "room-1"})})
	m.dispatch(alice, typing)

	assert.Len(t, bob.Send, 1)
	assert.Len(t, alice.Send, 0)

	event := decodeEvent(t, <-bob.Send)
	assert.Equal(t, EventTypingStart, event.Type)
}

func TestMessageReadDelegatesToGateway(t *testing.T) {
	m := NewManager()
	gateway := &fakeGateway{members: map[string]bool{"room-1:alice": true}}
	m.Bind(gateway)

	alice := newTestClient("alice", 4)
	m.addClient(alice)

	read, _ := json.Marshal(Event{Type: EventMessageRead, Payload: mustRaw(t, RoomEventPayload{RoomID: "room-1"})})
	m.dispatch(alice, read)

	assert.Equal(t, []string{"room-1:alice"}, gateway.marked)
}

func TestDispatchUnknownEventSendsErrorFrame(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice", 4)
	m.addClient(alice)

	m.dispatch(alice, []byte(`{"type":"bogus"}`))

	event := decodeEvent(t, <-alice.Send)
	assert.Equal(t, EventError, event.Type)
}

func TestPingAnswersPong(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice", 4)
	m.addClient(alice)

	m.dispatch(alice, []byte(`{"type":"ping"}`))

	event := decodeEvent(t, <-alice.Send)
	assert.Equal(t, EventPong, event.Type)
}

func TestRemoveClientDropsRoomSubscriptions(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice", 4)
	m.addClient(alice)
	m.JoinRoom("room-1", "alice")

	m.removeClient(alice)

	assert.False(t, m.IsSubscribed("room-1", "alice"))
	assert.Error(t, m.SendToUser("alice", Event{Type: EventPong}))
}

func TestDeliverAfterDisconnectIsNoOp(t *testing.T) {
	m := NewManager()
	alice := newTestClient("alice", 1)
	m.addClient(alice)
	m.JoinRoom("room-1", "alice")

	// BroadcastToRoom snapshots subscribers before delivering; simulate a
	// disconnect landing between the snapshot and the send.
	m.removeClient(alice)
	m.deliver(alice, []byte(`{"type":"pong"}`))

	_, open := <-alice.Send
	assert.False(t, open)
}

func TestSendToUserSurvivesConnectionChurn(t *testing.T) {
	m := NewManager()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					m.SendToUser("alice", Event{Type: EventPong})
				}
			}
		}()
	}

	// Reconnect the same user over and over while deliveries are in flight.
	for i := 0; i < 500; i++ {
		client := newTestClient("alice", 1)
		m.addClient(client)
		m.removeClient(client)
	}

	close(stop)
	wg.Wait()
}

func mustRaw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
