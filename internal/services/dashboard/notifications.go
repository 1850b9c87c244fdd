package dashboard

import "github.com/LeonardoBeccarini/greenpower/internal/model"

// NotificationLog is the append-only, ordered notification sequence of one
// dashboard. Not safe for concurrent use; the Controller guards it.
type NotificationLog struct {
	entries []model.Notification
}

func (l *NotificationLog) Append(n model.Notification) {
	l.entries = append(l.entries, n)
}

func (l *NotificationLog) Len() int { return len(l.entries) }

// Oldest returns the last n entries, oldest first.
func (l *NotificationLog) Oldest(n int) []model.Notification {
	if n <= 0 || len(l.entries) == 0 {
		return []model.Notification{}
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]model.Notification, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}

// Newest returns the last n entries, newest first.
func (l *NotificationLog) Newest(n int) []model.Notification {
	out := l.Oldest(n)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// All returns a copy of every entry.
func (l *NotificationLog) All() []model.Notification {
	return l.Oldest(len(l.entries))
}

func (l *NotificationLog) Clear() {
	l.entries = nil
}
