// Package notifier fans out directory reload events to live pages.
package notifier

import (
	"sync"
	"time"
)

// Update describes a directory reload.
type Update struct {
	// Seq increases by one per broadcast.
	Seq uint64
	// Countries is the size of the new directory.
	Countries int
	At        time.Time
}

// Notifier broadcasts updates to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	seq       uint64
	listeners map[chan Update]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Update]struct{}),
	}
}

// Subscribe returns a channel that receives updates.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan Update {
	ch := make(chan Update, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Update) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Listeners returns the number of subscribed listeners.
func (n *Notifier) Listeners() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast announces a reload to every listener and returns the update sent.
// A listener that still holds an unread update is skipped.
func (n *Notifier) Broadcast(countries int) Update {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.seq++
	u := Update{Seq: n.seq, Countries: countries, At: time.Now()}
	for ch := range n.listeners {
		select {
		case ch <- u:
		default:
		}
	}
	return u
}
