package logbook

import (
	"fmt"
	"sync"
	"time"

	"unibase/internal/game"
)

const DefaultCapacity = 160

type Entry struct {
	At      time.Time `json:"at"`
	Tag     game.Tag  `json:"tag"`
	Message string    `json:"message"`
}

func (e Entry) Line() string {
	return fmt.Sprintf("[%s] [%s] %s", e.At.Format("15:04:05"), e.Tag, e.Message)
}

// Book is safe for one writer and many readers.
type Book struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
	now      func() time.Time
}

func New(capacity int, now func() time.Time) *Book {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &Book{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
		now:      now,
	}
}

func (b *Book) Append(tag game.Tag, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == b.capacity {
		copy(b.entries, b.entries[1:])
		b.entries = b.entries[:len(b.entries)-1]
	}
	b.entries = append(b.entries, Entry{At: b.now(), Tag: tag, Message: message})
}

func (b *Book) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Tail returns at most n of the newest entries, oldest first.
func (b *Book) Tail(n int) []Entry {
	all := b.Entries()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

func (b *Book) Boot() {
	b.Append(game.TagSystem, "Booting Universal Base App simulation…")
	b.Append(game.TagSystem, fmt.Sprintf("Tip: Reach %s Fund to hire your first %s.", game.FormatNumber(game.Units[0].BaseCost), game.Units[0].Name))
}

type Tee []game.LogSink

func (t Tee) Append(tag game.Tag, message string) {
	for _, s := range t {
		if s != nil {
			s.Append(tag, message)
		}
	}
}
