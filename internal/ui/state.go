package ui

import (
	"strings"
	"sync"
	"time"
)

// DefaultNotificationTTL is how long a notification stays visible.
const DefaultNotificationTTL = 4 * time.Second

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a transient message for the user.
type Notification struct {
	ID        int64
	Level     Level
	Message   string
	CreatedAt time.Time
}

// StateOption configures a State.
type StateOption func(*State)

// WithNotificationTTL sets how long notifications live. Zero keeps them
// until removed.
func WithNotificationTTL(d time.Duration) StateOption {
	return func(s *State) { s.ttl = d }
}

// WithNow replaces time.Now.
func WithNow(now func() time.Time) StateOption {
	return func(s *State) { s.now = now }
}

// State is the presentation state shared by the views: the cart drawer,
// the promo code and the notification queue. Safe for concurrent use.
type State struct {
	mu            sync.Mutex
	now           func() time.Time
	ttl           time.Duration
	cartOpen      bool
	promoCode     string
	nextID        int64
	notifications []Notification
}

// NewState returns a closed drawer, no promo code and an empty queue.
func NewState(opts ...StateOption) *State {
	s := &State{now: time.Now, ttl: DefaultNotificationTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *State) OpenCart() {
	s.mu.Lock()
	s.cartOpen = true
	s.mu.Unlock()
}

func (s *State) CloseCart() {
	s.mu.Lock()
	s.cartOpen = false
	s.mu.Unlock()
}

// ToggleCart flips the drawer and returns the new state.
func (s *State) ToggleCart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartOpen = !s.cartOpen
	return s.cartOpen
}

func (s *State) CartOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartOpen
}

// SetPromoCode stores code. A blank code clears it.
func (s *State) SetPromoCode(code string) {
	s.mu.Lock()
	s.promoCode = strings.TrimSpace(code)
	s.mu.Unlock()
}

func (s *State) ClearPromoCode() {
	s.SetPromoCode("")
}

// PromoCode returns the stored code and whether one is set.
func (s *State) PromoCode() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promoCode, s.promoCode != ""
}

// AddNotification queues a message and returns it with its id.
func (s *State) AddNotification(level Level, message string) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n := Notification{ID: s.nextID, Level: level, Message: message, CreatedAt: s.now()}
	s.notifications = append(s.notifications, n)
	return n
}

// RemoveNotification drops the notification with id. It reports whether
// one was found.
func (s *State) RemoveNotification(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return true
		}
	}
	return false
}

func (s *State) ClearNotifications() {
	s.mu.Lock()
	s.notifications = nil
	s.mu.Unlock()
}

// Notifications returns the live notifications, oldest first. Expired ones
// are pruned.
func (s *State) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return append([]Notification(nil), s.notifications...)
}

// Drain returns every queued notification and empties the queue. Expiry
// does not apply: a message queued before a slow request is still shown.
func (s *State) Drain() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications
	s.notifications = nil
	return out
}

func (s *State) pruneLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if now.Sub(n.CreatedAt) < s.ttl {
			kept = append(kept, n)
		}
	}
	s.notifications = kept
}

// Success queues a success notification.
func (s *State) Success(message string) { s.AddNotification(LevelSuccess, message) }

// Error queues an error notification.
func (s *State) Error(message string) { s.AddNotification(LevelError, message) }

// Info queues an informational notification.
func (s *State) Info(message string) { s.AddNotification(LevelInfo, message) }
