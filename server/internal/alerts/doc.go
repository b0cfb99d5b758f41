// Package alerts raises operator alerts for coefficient reloads and delivers
// them to webhooks. A reload that fails fires a critical alert keyed by the
// file path; the next successful reload of that file resolves it. Webhooks
// are delivered to Teams, Slack, PagerDuty, or generic HTTP targets.
package alerts
