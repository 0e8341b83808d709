package state

import "sync"

// Alert holds the single transient success message shown in the header.
// Every Set hands out a sequence number so a delayed expiry only clears the
// message it was scheduled for.
type Alert struct {
	mu      sync.Mutex
	message string
	seq     uint64
}

// Set replaces the message and returns its sequence number.
func (a *Alert) Set(message string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	a.message = message
	return a.seq
}

// Message returns the current message, if any.
func (a *Alert) Message() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message, a.message != ""
}

// ClearIf clears the message only if it is still the one numbered seq.
func (a *Alert) ClearIf(seq uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.seq != seq || a.message == "" {
		return false
	}
	a.message = ""
	return true
}

// Clear dismisses the message.
func (a *Alert) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.message = ""
}
