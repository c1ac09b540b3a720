// Package netprobe is a reference engine.Probe implementation: it
// dials a small set of well-known host:port targets and considers the
// network online if any one succeeds, caching the result for a
// configurable cooldown so Refresh does not dial on every tick.
package netprobe

import (
	"net"
	"sync"
	"time"
)

const (
	defaultTimeout  = 2 * time.Second
	defaultCooldown = 5 * time.Second
)

var defaultTargets = []string{"1.1.1.1:443", "8.8.8.8:443"}

// Config controls Probe dial targets and pacing.
type Config struct {
	Targets    []string
	Timeout    time.Duration
	Cooldown   time.Duration
	DialFunc   func(network, address string, timeout time.Duration) (net.Conn, error)
}

func (c Config) withDefaults() Config {
	if len(c.Targets) == 0 {
		c.Targets = defaultTargets
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Cooldown <= 0 {
		c.Cooldown = defaultCooldown
	}
	if c.DialFunc == nil {
		c.DialFunc = net.DialTimeout
	}

	return c
}

// Probe implements engine.Probe using TCP reachability checks.
type Probe struct {
	cfg Config

	mu       sync.Mutex
	lastRun  int64
	lastOK   bool
	hasRun   bool
}

// New constructs a Probe.
func New(cfg Config) *Probe {
	return &Probe{cfg: cfg.withDefaults()}
}

// Refresh dials the configured targets, one at a time, stopping at
// the first success, unless the cooldown since the last dial has not
// yet elapsed — in which case it returns the cached result.
func (p *Probe) Refresh(nowMs int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasRun && nowMs-p.lastRun < p.cfg.Cooldown.Milliseconds() {
		return p.lastOK
	}

	ok := false
	for _, target := range p.cfg.Targets {
		conn, err := p.cfg.DialFunc("tcp", target, p.cfg.Timeout)
		if err == nil {
			conn.Close()
			ok = true

			break
		}
	}

	p.lastRun = nowMs
	p.lastOK = ok
	p.hasRun = true

	return ok
}
