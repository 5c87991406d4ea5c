package events

import (
	"time"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/google/uuid"
)

// Handler receives dispatched events.
type Handler func(ev Event)

// Bus is a synchronous publish/subscribe channel. Handlers run on the
// publishing goroutine, in subscription order. Nothing is retained after
// dispatch.
type Bus struct {
	subs   []*Subscription
	nextID uint64
	debug  bool
	logger *log.Logger
	now    func() time.Time
	// dispatching counts nested Publish calls so cancelled subscriptions
	// are compacted only once the outermost dispatch returns.
	dispatching int
}

// Subscription is the handle returned by Subscribe. It is safe to cancel
// from inside a handler.
type Subscription struct {
	id        uint64
	topic     Topic
	handler   Handler
	cancelled bool
	bus       *Bus
}

type NewBusOptions struct {
	// Debug logs every dispatched event.
	Debug bool
	// Logger receives debug output. Defaults to the package logger.
	Logger *log.Logger
	// Now overrides the clock used to stamp events.
	Now func() time.Time
}

func NewBus(opts NewBusOptions) *Bus {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Bus{
		debug:  opts.Debug,
		logger: logger.With("component", "events"),
		now:    now,
	}
}

// Subscribe registers h for a single topic.
func (b *Bus) Subscribe(topic Topic, h Handler) *Subscription {
	b.nextID++
	s := &Subscription{
		id:      b.nextID,
		topic:   topic,
		handler: h,
		bus:     b,
	}
	b.subs = append(b.subs, s)
	return s
}

// SubscribeAll registers h for every topic.
func (b *Bus) SubscribeAll(h Handler) *Subscription {
	return b.Subscribe("", h)
}

// Cancel stops further delivery to the subscription.
func (s *Subscription) Cancel() {
	if s == nil || s.cancelled {
		return
	}
	s.cancelled = true
	s.bus.compact()
}

func (s *Subscription) Cancelled() bool {
	return s.cancelled
}

func (b *Bus) compact() {
	if b.dispatching > 0 {
		return
	}
	live := b.subs[:0]
	for _, s := range b.subs {
		if !s.cancelled {
			live = append(live, s)
		}
	}
	for i := len(live); i < len(b.subs); i++ {
		b.subs[i] = nil
	}
	b.subs = live
}

// Publish stamps ev with an id and timestamp when missing and delivers it.
func (b *Bus) Publish(ev Event) Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = b.now()
	}
	if b.debug {
		b.logger.Debug("Dispatching %s for %s (kind=%s status=%s gen=%d progress=%.2f)", ev.Topic, ev.EntityID, ev.Kind, ev.Status, ev.Generation, ev.Progress)
	}

	b.dispatching++
	// handlers subscribed during dispatch do not see the current event
	subs := b.subs
	for _, s := range subs {
		if s.cancelled {
			continue
		}
		if s.topic != "" && s.topic != ev.Topic {
			continue
		}
		s.handler(ev)
	}
	b.dispatching--
	if b.dispatching == 0 {
		b.compact()
	}
	return ev
}

// SetDebug toggles logging of every dispatched event.
func (b *Bus) SetDebug(debug bool) {
	b.debug = debug
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	n := 0
	for _, s := range b.subs {
		if !s.cancelled {
			n++
		}
	}
	return n
}
