package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Webhook types.
const (
	WebhookSlack     = "slack"
	WebhookTeams     = "teams"
	WebhookPagerDuty = "pagerduty"
	WebhookHTTP      = "http"
)

// deliver sends a to every configured target. Errors are logged but do not
// affect the caller.
func (e *Engine) deliver(a *Alert) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}
		body, err := payload(wh.Type, a)
		if err != nil {
			slog.Warn("alerts: skipping webhook", "type", wh.Type, "err", err)
			continue
		}
		if err := e.post(url, body); err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type,
				"path", a.Path,
				"err", err,
			)
			continue
		}
		slog.Debug("alerts: webhook delivered", "type", wh.Type, "path", a.Path, "state", a.State)
	}
}

// payload renders a in the body format the target type expects.
func payload(kind string, a *Alert) ([]byte, error) {
	switch kind {
	case WebhookSlack:
		return json.Marshal(map[string]string{
			"text": fmt.Sprintf("*%s* %s", severityLabel(a), a.Message),
		})
	case WebhookTeams:
		return json.Marshal(map[string]any{
			"@type":      "MessageCard",
			"@context":   "http://schema.org/extensions",
			"themeColor": severityColor(a),
			"summary":    a.RuleName,
			"title":      fmt.Sprintf("moneypit alert: %s", a.RuleName),
			"text":       a.Message,
		})
	case WebhookPagerDuty, WebhookHTTP:
		return json.Marshal(map[string]any{"alert": a})
	}
	return nil, fmt.Errorf("unknown webhook type %q", kind)
}

func (e *Engine) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func severityLabel(a *Alert) string {
	if a.State == StateResolved {
		return "[RESOLVED]"
	}
	switch a.Severity {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

func severityColor(a *Alert) string {
	if a.State == StateResolved {
		return "2EB67D"
	}
	switch a.Severity {
	case "critical":
		return "FF4F6A"
	case "warning":
		return "FFAB40"
	default:
		return "00D4FF"
	}
}
