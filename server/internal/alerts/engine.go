package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/moneypit/moneypit/server/internal/config"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// RuleReload is the rule name of coefficient reload alerts.
const RuleReload = "coefficient_reload"

// Alert states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"
)

// Alert represents a single alert event.
type Alert struct {
	ID       string `json:"id"`
	RuleName string `json:"rule_name"`
	// Path is the coefficient file the alert is about.
	Path     string `json:"path"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	// Failures counts consecutive failed reloads.
	Failures   int        `json:"failures"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine tracks reload alerts and delivers webhook notifications when they
// fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	webhooks []config.WebhookConfig
	cooldown time.Duration

	mu       sync.Mutex
	active   map[string]*Alert    // key: path
	lastSent map[string]time.Time // last delivery per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
	now      func() time.Time
	wg       sync.WaitGroup
}

// New creates an Engine from the server alert configuration.
// An Engine without webhooks still tracks alerts for the API.
func New(cfg config.AlertsConfig) *Engine {
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Engine{
		webhooks: cfg.Webhooks,
		cooldown: cooldown,
		active:   make(map[string]*Alert),
		lastSent: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// ReloadFailed records a failed reload of path. The first failure fires an
// alert; repeats update it and are re-delivered at most once per cooldown.
func (e *Engine) ReloadFailed(path string, err error) {
	now := e.now()

	e.mu.Lock()
	a, ok := e.active[path]
	if !ok {
		a = &Alert{
			ID:       fmt.Sprintf("%s:%s:%d", RuleReload, path, now.UnixNano()),
			RuleName: RuleReload,
			Path:     path,
			Severity: "critical",
			FiredAt:  now,
			State:    StateFiring,
		}
		e.active[path] = a
	}
	a.Failures++
	a.Message = fmt.Sprintf("[critical] reloading %s failed (%d in a row); still serving the previous coefficients: %v",
		path, a.Failures, err)

	send := now.Sub(e.lastSent[path]) > e.cooldown
	if send {
		e.lastSent[path] = now
	}
	alertCopy := *a
	e.mu.Unlock()

	if !ok {
		slog.Warn("alert fired", "rule", RuleReload, "path", path, "err", err)
	}
	if send {
		e.dispatch(&alertCopy)
	}
}

// ReloadSucceeded resolves the alert for path, if one is firing.
func (e *Engine) ReloadSucceeded(path string) {
	now := e.now()

	e.mu.Lock()
	a, ok := e.active[path]
	if !ok {
		e.mu.Unlock()
		return
	}
	a.State = StateResolved
	a.ResolvedAt = &now
	a.Severity = "info"
	a.Message = fmt.Sprintf("[resolved] %s reloaded successfully after %d failed attempts", path, a.Failures)
	delete(e.active, path)
	delete(e.lastSent, path)

	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
	alertCopy := *a
	e.mu.Unlock()

	slog.Info("alert resolved", "rule", RuleReload, "path", path)
	e.dispatch(&alertCopy)
}

// Firing returns the number of alerts currently firing.
func (e *Engine) Firing() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

// Close waits for in-flight webhook deliveries.
func (e *Engine) Close() {
	e.wg.Wait()
}

func (e *Engine) dispatch(a *Alert) {
	if len(e.webhooks) == 0 {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.deliver(a)
	}()
}
