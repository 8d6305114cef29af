package commands

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fabricbot/fabricbot/internal/gateway"
	"github.com/fabricbot/fabricbot/internal/health"
	"github.com/fabricbot/fabricbot/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

// snowflakeAt builds a user ID created at t.
func snowflakeAt(t time.Time) string {
	return fmt.Sprint((t.UnixMilli() - 1420070400000) << 22)
}

type memRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *memRecorder) LogWarn(component, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, component+": "+message)
	return nil
}

func deps() Deps {
	return Deps{
		Started: now.Add(-(26*time.Hour + 3*time.Minute + 1*time.Second)),
		Now:     func() time.Time { return now },
		Roles: identity.RoleTable{
			identity.CategoryAdmin:     "1",
			identity.CategoryModerator: "2",
			identity.CategoryMuted:     "3",
		},
	}
}

func TestUptime(t *testing.T) {
	reply, err := Uptime(deps())(context.Background(), gateway.Message{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Up for 1 day, 2 hours, 3 minutes and 1 second.", reply)
}

func TestUptime_JustStarted(t *testing.T) {
	d := deps()
	d.Started = now.Add(-500 * time.Millisecond)

	reply, err := Uptime(d)(context.Background(), gateway.Message{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "I just started.", reply)
}

func TestRoles(t *testing.T) {
	h := Roles(deps())

	reply, err := h(context.Background(), gateway.Message{RoleIDs: []string{"99", "2", "1"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Your roles: moderator and admin.", reply)

	reply, err = h(context.Background(), gateway.Message{RoleIDs: []string{"99"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "You hold no special roles.", reply)
}

func TestStatus(t *testing.T) {
	d := deps()
	d.Health = health.NewRegistry()
	d.Health.Register("store", health.CheckerFunc(func() health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusOK}
	}))
	d.Health.Register("deleter", health.CheckerFunc(func() health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "1 failed"}
	}))

	reply, err := Status(d)(context.Background(), gateway.Message{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Status: degraded\ndeleter: degraded (1 failed)\nstore: ok", reply)
}

func TestNewAccountWatcher(t *testing.T) {
	rec := &memRecorder{}
	d := deps()
	d.Recorder = rec
	watch := NewAccountWatcher(d)

	watch(context.Background(), gateway.Message{AuthorID: snowflakeAt(now.Add(-25 * time.Hour)), ChannelID: "9"})
	watch(context.Background(), gateway.Message{AuthorID: snowflakeAt(now.Add(-4 * 24 * time.Hour)), ChannelID: "9"})
	watch(context.Background(), gateway.Message{AuthorID: "not-a-snowflake", ChannelID: "9"})

	require.Len(t, rec.entries, 1)
	assert.Contains(t, rec.entries[0], "identity: new account")
	assert.Contains(t, rec.entries[0], "created 1 day and 1 hour ago")
}

func TestRegister(t *testing.T) {
	g := gateway.New(nil, gateway.CleanupPolicy{})
	ch := &replyChannel{}
	g.Register(ch)
	Register(g, deps())

	g.Dispatch(context.Background(), gateway.Message{Channel: "test", Content: "!uptime"})
	g.Dispatch(context.Background(), gateway.Message{Channel: "test", Content: "!status"})
	assert.Equal(t, []string{"Up for 1 day, 2 hours, 3 minutes and 1 second."}, ch.sent)
}
