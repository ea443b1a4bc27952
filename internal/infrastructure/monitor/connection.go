package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CheckFunc pings a dependency. The detail map is optional.
type CheckFunc func(ctx context.Context) (map[string]interface{}, error)

// Dependency is one registered dependency check.
type Dependency struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Check    CheckFunc
}

// Pinger is satisfied by the gateway, storage and pgx pool clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts a Pinger.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) (map[string]interface{}, error) {
		return nil, p.Ping(ctx)
	}
}

type Monitor struct {
	deps   []Dependency
	status Status
	mu     sync.RWMutex
	logger *zap.Logger
}

func New(logger *zap.Logger, deps ...Dependency) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{deps: deps, logger: logger}
}

// Register adds a dependency; it is picked up by the next Refresh.
func (m *Monitor) Register(p Dependency) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deps = append(m.deps, p)
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh runs every dependency concurrently and replaces the stored status.
func (m *Monitor) Refresh(ctx context.Context) Status {
	m.mu.RLock()
	deps := append([]Dependency(nil), m.deps...)
	previous := m.status
	m.mu.RUnlock()

	results := make([]Component, len(deps))
	var wg sync.WaitGroup
	for i, p := range deps {
		wg.Add(1)
		go func(i int, p Dependency) {
			defer wg.Done()
			results[i] = m.run(ctx, p)
		}(i, p)
	}
	wg.Wait()

	status := Status{Components: make(map[string]Component, len(deps)), LastCheck: time.Now()}
	for i, p := range deps {
		c := results[i]
		status.Components[p.Name] = c
		if was, ok := previous.Components[p.Name]; ok && was.Online != c.Online {
			if c.Online {
				m.logger.Info("dependency recovered", zap.String("component", p.Name))
			} else {
				m.logger.Warn("dependency offline", zap.String("component", p.Name), zap.String("error", c.Error))
			}
		}
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) run(ctx context.Context, p Dependency) Component {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	detail, err := p.Check(checkCtx)
	c := Component{
		Online:   err == nil,
		Required: p.Required,
		Latency:  time.Since(start),
		Detail:   detail,
	}
	if err != nil {
		c.Error = err.Error()
	}
	return c
}
