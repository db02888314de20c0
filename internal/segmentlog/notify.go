package segmentlog

import "sync"

// Notifier broadcasts "something was appended" to any number of waiters.
// One Notifier is shared by every segment of a stream so a reader can wait
// on all of them at once.
type Notifier struct {
	mu sync.Mutex
	ch chan struct{}
}

func NewNotifier() *Notifier { return &Notifier{ch: make(chan struct{})} }

// Wait returns a channel closed by the next Broadcast. Capture it before
// checking for data to avoid missing a wakeup.
func (n *Notifier) Wait() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch
}

func (n *Notifier) Broadcast() {
	n.mu.Lock()
	close(n.ch)
	n.ch = make(chan struct{})
	n.mu.Unlock()
}
