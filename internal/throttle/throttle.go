package throttle

import (
	"strings"
	"sync"
	"time"
)

// Config tunes a single throttle instance. Two instances exist in the
// application: one gating login attempts, one gating outbound emails.
type Config struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Window      time.Duration `mapstructure:"window"`
}

type entry struct {
	count       int
	windowStart time.Time
}

// Throttle is a sliding fixed-window attempt counter keyed by a normalized
// identity string. State is process-local and lost on restart; it is a
// defense-in-depth heuristic, not the security boundary of record.
type Throttle struct {
	mu      sync.Mutex
	entries map[string]entry
	max     int
	window  time.Duration
	now     func() time.Time
}

func New(config Config) *Throttle {
	return &Throttle{
		entries: make(map[string]entry),
		max:     config.MaxAttempts,
		window:  config.Window,
		now:     time.Now,
	}
}

// NewLoginThrottle returns a throttle with the login defaults
// (5 attempts per 60 seconds) applied to unset config fields.
func NewLoginThrottle(config Config) *Throttle {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	return New(config)
}

// NewEmailThrottle returns a throttle with the email-send defaults
// (3 attempts per 10 minutes) applied to unset config fields.
func NewEmailThrottle(config Config) *Throttle {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Window <= 0 {
		config.Window = 10 * time.Minute
	}
	return New(config)
}

// IsAllowed reports whether key has budget left in the current window.
// An expired window counts as allowed but is not reset here; only the next
// registered attempt resets it.
func (t *Throttle) IsAllowed(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[normalize(key)]
	if !ok {
		return true
	}
	if t.now().Sub(e.windowStart) > t.window {
		return true
	}
	return e.count < t.max
}

// RegisterAttempt records a failed or outbound attempt for key. A stale
// window restarts at (1, now); an active window increments in place.
func (t *Throttle) RegisterAttempt(key string) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	k := normalize(key)
	e, ok := t.entries[k]
	if !ok || now.Sub(e.windowStart) > t.window {
		t.entries[k] = entry{count: 1, windowStart: now}
		return
	}
	e.count++
	t.entries[k] = e
}

// RegisterSuccess clears the window for key. Only the login throttle calls
// this; the email throttle expires by window alone.
func (t *Throttle) RegisterSuccess(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, normalize(key))
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
