package engine

import (
	"fmt"
	"sync"
)

// Notification categories.
const (
	CategoryRent      = "rent"
	CategoryTheft     = "theft"
	CategoryBreakdown = "breakdown"
	CategoryRestock   = "restock"
	CategoryPurchase  = "purchase"
	CategoryStore     = "store"
	CategoryPrice     = "price"
	CategoryWorld     = "world"
	CategoryDebt      = "debt"
)

// Notification is a player-facing message stamped with the in-game time it
// was emitted.
type Notification struct {
	Tick     uint64 `json:"tick"`
	Day      int    `json:"day"`
	Hour     int    `json:"hour"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (n Notification) String() string {
	return fmt.Sprintf("[Day %d, %02d:00] %s", n.Day, n.Hour, n.Message)
}

// NotificationLog keeps the most recent notifications for display.
type NotificationLog struct {
	mu     sync.Mutex
	limit  int
	recent []Notification
}

// NewNotificationLog creates a log retaining at most limit entries.
func NewNotificationLog(limit int) *NotificationLog {
	if limit <= 0 {
		limit = 1
	}
	return &NotificationLog{limit: limit}
}

// Add appends n, dropping the oldest entry beyond the limit.
func (l *NotificationLog) Add(n Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recent = append(l.recent, n)
	if len(l.recent) > l.limit {
		l.recent = l.recent[len(l.recent)-l.limit:]
	}
}

// Recent returns retained notifications, newest first.
func (l *NotificationLog) Recent() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notification, len(l.recent))
	for i, n := range l.recent {
		out[len(l.recent)-1-i] = n
	}
	return out
}

// Sink receives every notification and daily report, unbounded.
type Sink interface {
	RecordNotification(n Notification) error
	RecordDailyReport(r DailyReport) error
}

// notify stamps and queues a notification. Sinks see it once the current
// operation finishes.
func (w *World) notify(category, msg string) {
	n := Notification{
		Tick:     w.time,
		Day:      w.day(),
		Hour:     w.hour(),
		Category: category,
		Message:  msg,
	}
	w.log.Add(n)
	w.pending = append(w.pending, n)
}
