package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TopicChannels = "channel_events"
	TopicCart     = "cart_events"
	TopicOrders   = "order_events"
)

const (
	ChannelCreated  = "channel_created"
	ChannelUpdated  = "channel_updated"
	ChannelDeleted  = "channel_deleted"
	CartItemAdded   = "cart_item_added"
	CartItemRemoved = "cart_item_removed"
	OrderCreated    = "order_created"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`

	UserID      uint   `json:"userId,omitempty"`
	ChannelID   uint   `json:"channelId,omitempty"`
	CartItemID  uint   `json:"cartItemId,omitempty"`
	OrderID     uint   `json:"orderId,omitempty"`
	TotalAmount int64  `json:"totalAmount,omitempty"`
	Items       int    `json:"items,omitempty"`
	Name        string `json:"name,omitempty"`
}

func New(typ string) Event {
	return Event{ID: uuid.NewString(), Type: typ, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, ev Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, Event) error { return nil }
func (Nop) Close() error                                         { return nil }

type Recorded struct {
	Topic string
	Key   string
	Event Event
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
	Err    error
}

func (r *Recorder) Publish(_ context.Context, topic, key string, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Recorded{Topic: topic, Key: key, Event: ev})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) OfType(typ string) []Recorded {
	var out []Recorded
	for _, e := range r.Events() {
		if e.Event.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
