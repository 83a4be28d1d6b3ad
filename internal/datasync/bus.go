package datasync

import "sync"

// Event is a change notification delivered to UI subscribers. Payload is
// a snapshot owned by the bus; subscribers must not mutate it.
type Event struct {
	Topic   string
	Payload any
}

// Bus is the in-process publish/subscribe channel the synchronization
// layer broadcasts on: one topic per entity collection plus a status
// topic. Publish never blocks; a slow subscriber loses its oldest
// buffered event, keeping the latest snapshot flowing.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Event
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]chan Event)}
}

// Subscribe registers for events on topic. The returned cancel function
// removes the subscription and closes the channel.
func (b *Bus) Subscribe(topic string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Event)
	}
	b.subs[topic][id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if subs, ok := b.subs[topic]; ok {
				if _, live := subs[id]; live {
					delete(subs, id)
					close(ch)
				}
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers the payload to every subscriber of topic.
func (b *Bus) Publish(topic string, payload any) {
	ev := Event{Topic: topic, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- ev:
		default:
			// Drop the oldest buffered event in favor of the new one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subs {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
	}
}
