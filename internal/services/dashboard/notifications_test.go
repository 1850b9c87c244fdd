package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LeonardoBeccarini/greenpower/internal/model"
)

func TestNotificationLogWindows(t *testing.T) {
	var l NotificationLog
	assert.Empty(t, l.Newest(5))
	for _, id := range []string{"a", "b", "c"} {
		l.Append(model.Notification{ID: id})
	}

	assert.Equal(t, []model.Notification{{ID: "c"}, {ID: "b"}}, l.Newest(2))
	assert.Equal(t, []model.Notification{{ID: "b"}, {ID: "c"}}, l.Oldest(2))
	assert.Len(t, l.Newest(10), 3)
	assert.Len(t, l.All(), 3)

	out := l.All()
	out[0].ID = "mutated"
	assert.Equal(t, "a", l.All()[0].ID)

	l.Clear()
	assert.Zero(t, l.Len())
}
