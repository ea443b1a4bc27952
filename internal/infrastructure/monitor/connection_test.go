package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestMonitor_UnknownBeforeFirstCheck(t *testing.T) {
	m := New(nil)
	assert.False(t, m.IsOnline())
}

func TestMonitor_RefreshAggregatesDependencies(t *testing.T) {
	m := New(nil,
		Dependency{Name: "gateway", Required: true, Check: PingCheck(pingerFunc(func(context.Context) error { return nil }))},
		Dependency{Name: "redis", Check: func(context.Context) (map[string]interface{}, error) {
			return nil, errors.New("connection refused")
		}},
	)
	m.Register(Dependency{Name: "cache", Check: func(context.Context) (map[string]interface{}, error) {
		return map[string]interface{}{"entries": 3}, nil
	}})

	status := m.Refresh(context.Background())
	require.Len(t, status.Components, 3)
	assert.True(t, status.Components["gateway"].Online)
	assert.False(t, status.Components["redis"].Online)
	assert.Equal(t, "connection refused", status.Components["redis"].Error)
	assert.Equal(t, 3, status.Components["cache"].Detail["entries"])

	// optional components do not degrade health
	assert.True(t, m.IsOnline())
}

func TestMonitor_RequiredDependencyFailure(t *testing.T) {
	m := New(nil, Dependency{Name: "postgres", Required: true, Check: PingCheck(pingerFunc(func(context.Context) error {
		return errors.New("down")
	}))})
	m.Refresh(context.Background())
	assert.False(t, m.IsOnline())
}

func TestMonitor_CheckTimeout(t *testing.T) {
	m := New(nil, Dependency{Name: "slow", Required: true, Timeout: 10 * time.Millisecond, Check: PingCheck(pingerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))})
	status := m.Refresh(context.Background())
	assert.False(t, status.Components["slow"].Online)
	assert.Contains(t, status.Components["slow"].Error, "deadline")
}
