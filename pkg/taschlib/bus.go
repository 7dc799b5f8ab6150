package taschlib

import (
	"io"
	"log"
	"sync"
)

// Subscriber consumes events delivered by a Bus.
type Subscriber interface {
	Handle(Event) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(Event) error

func (f SubscriberFunc) Handle(e Event) error { return f(e) }

// Bus is an EventSink that fans events out to subscribers. Each
// subscriber has its own unbounded queue and goroutine, so Emit never
// blocks on a slow consumer and a failing one is only logged.
type Bus struct {
	l      *log.Logger
	mu     sync.Mutex
	subs   map[int]*subscriber
	next   int
	wg     sync.WaitGroup
	closed bool
}

func NewBus(l *log.Logger) *Bus {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	return &Bus{l: l, subs: make(map[int]*subscriber)}
}

// Subscribe registers s under name. The returned func removes it after
// the events already queued for it have been delivered.
func (b *Bus) Subscribe(name string, s Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}
	sub := &subscriber{
		name: name,
		h:    s,
		l:    b.l,
		wake: make(chan struct{}, 1),
	}
	id := b.next
	b.next++
	b.subs[id] = sub
	b.wg.Add(1)
	safeGo(b.l, &b.wg, "bus "+name, sub.run)
	return func() {
		b.mu.Lock()
		_, ok := b.subs[id]
		delete(b.subs, id)
		b.mu.Unlock()
		if ok {
			sub.close()
		}
	}
}

// Emit queues ev for every subscriber.
func (b *Bus) Emit(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		s.push(ev)
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close drains all queues and waits for the subscribers to finish.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	subs := b.subs
	b.subs = make(map[int]*subscriber)
	b.mu.Unlock()
	for _, s := range subs {
		s.close()
	}
	b.wg.Wait()
}

type subscriber struct {
	name string
	h    Subscriber
	l    *log.Logger

	mu     sync.Mutex
	queue  []Event
	closed bool
	wake   chan struct{}
}

func (s *subscriber) push(ev Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	s.signal()
}

func (s *subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signal()
}

func (s *subscriber) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) run() {
	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		closed := s.closed
		s.mu.Unlock()
		for _, ev := range batch {
			s.deliver(ev)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-s.wake
	}
}

func (s *subscriber) deliver(ev Event) {
	defer recoverLog(s.l, "subscriber "+s.name)
	if err := s.h.Handle(ev); err != nil {
		s.l.Printf("subscriber %s: %s: %v", s.name, ev.Kind, err)
	}
}
