/*
Package signal delivers zero-payload change notifications between views.

PURPOSE:
  When allocations, the team, holidays, vacations, or settings change,
  dependent views must refetch and recompute. Signals carry no payload:
  they mean "please recompute", nothing more. The bus is an injected
  dependency, never ambient global state, so components stay testable.

DELIVERY:
  Publish invokes subscribers synchronously on the calling goroutine,
  matching the single-threaded event-loop model of the calendar view.
  The bus itself is mutex-guarded so test harnesses may publish from
  helper goroutines.
*/
package signal

import "sync"

// Topic identifies one change signal.
type Topic string

const (
	AllocationChanged Topic = "allocation-changed"
	TeamChanged       Topic = "team-changed"
	HolidaysChanged   Topic = "holidays-changed"
	VacationsChanged  Topic = "vacations-changed"
	SettingsChanged   Topic = "settings-changed"
)

type subscriber struct {
	id int
	fn func()
}

// Bus is a minimal topic-keyed observer registry.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers fn for a topic and returns a cancel function.
// Cancel is idempotent.
func (b *Bus) Subscribe(t Topic, fn func()) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[t] = append(b.subs[t], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[t]
		for i, s := range list {
			if s.id == id {
				b.subs[t] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish synchronously notifies every subscriber of the topic.
func (b *Bus) Publish(t Topic) {
	b.mu.Lock()
	list := make([]subscriber, len(b.subs[t]))
	copy(list, b.subs[t])
	b.mu.Unlock()

	for _, s := range list {
		s.fn()
	}
}
