package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cardmarket-backend/internal/pkg/logger"
)

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubOrderingAndReconnect(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	channel := uuid.New().String()

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventTradeOfferCreated, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventTradeOfferUpdated, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventTradeOfferCreated {
		t.Fatalf("first event: want=%s got=%s", SSEEventTradeOfferCreated, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventTradeOfferUpdated {
		t.Fatalf("second event: want=%s got=%s", SSEEventTradeOfferUpdated, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("clientA outbound should be closed after disconnect")
	}
	select {
	case <-clientA.Done():
	default:
		t.Fatalf("clientA done should be closed after disconnect")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventCardPurchased})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventCardPurchased {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventCardPurchased, got.Event)
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	alice := hub.NewSSEClient(uuid.New())
	bob := hub.NewSSEClient(uuid.New())
	hub.AddChannel(alice, alice.UserID.String())
	hub.AddChannel(bob, bob.UserID.String())

	hub.Broadcast(SSEMessage{Channel: bob.UserID.String(), Event: SSEEventCardTransferred})
	if got := recvMessage(t, bob.Outbound, time.Second); got.Event != SSEEventCardTransferred {
		t.Fatalf("bob event: want=%s got=%s", SSEEventCardTransferred, got.Event)
	}
	select {
	case msg := <-alice.Outbound:
		t.Fatalf("alice should not receive bob's event, got %+v", msg)
	default:
	}

	hub.RemoveChannel(bob, bob.UserID.String())
	hub.Broadcast(SSEMessage{Channel: bob.UserID.String(), Event: SSEEventCardTransferred})
	select {
	case msg := <-bob.Outbound:
		t.Fatalf("unsubscribed client received %+v", msg)
	default:
	}
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	ch := client.UserID.String()
	hub.AddChannel(client, ch)

	for i := 0; i < outboundBuffer+5; i++ {
		hub.Broadcast(SSEMessage{Channel: ch, Event: SSEEventCardPurchased, Data: i})
	}
	if n := len(client.Outbound); n != outboundBuffer {
		t.Fatalf("buffered messages: want=%d got=%d", outboundBuffer, n)
	}
}
