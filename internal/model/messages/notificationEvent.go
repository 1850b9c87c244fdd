package messages

import "time"

// NotificationEvent is mirrored to observers for every appended notification.
type NotificationEvent struct {
	User      string    `json:"user"`
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
