package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier is the outbound alerting collaborator. Implementations are
// best-effort: both methods report success but must never fail the caller.
type Notifier interface {
	SendAlert(ctx context.Context, subject, message string, recipients []string) bool
	SendWebhookMessage(ctx context.Context, text string) bool
}

type WebhookNotifierOptions struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
	Logger  *logrus.Entry
}

func (o *WebhookNotifierOptions) setDefaults() {
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		o.Logger = logrus.NewEntry(l)
	}
}

// WebhookNotifier posts messages to a Teams-style incoming webhook.
// Alerts are flattened into a single webhook message.
type WebhookNotifier struct {
	opts WebhookNotifierOptions
}

func NewWebhookNotifier(opts WebhookNotifierOptions) *WebhookNotifier {
	opts.setDefaults()
	return &WebhookNotifier{opts: opts}
}

func (n *WebhookNotifier) SendAlert(ctx context.Context, subject, message string, recipients []string) bool {
	if len(recipients) == 0 {
		return false
	}
	return n.post(ctx, subject+"\n"+message)
}

func (n *WebhookNotifier) SendWebhookMessage(ctx context.Context, text string) bool {
	return n.post(ctx, text)
}

func (n *WebhookNotifier) post(ctx context.Context, text string) bool {
	if n.opts.URL == "" {
		return false
	}
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.opts.URL, bytes.NewReader(payload))
	if err != nil {
		n.opts.Logger.WithError(err).Warn("notifications: failed to build webhook request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.opts.Client.Do(req)
	if err != nil {
		n.opts.Logger.WithError(err).Warn("notifications: webhook dispatch failed")
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// LogNotifier writes notifications to the log instead of dispatching them.
// Useful as a default when no webhook is configured.
type LogNotifier struct {
	Logger *logrus.Entry
}

func NewLogNotifier(logger *logrus.Entry) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) SendAlert(ctx context.Context, subject, message string, recipients []string) bool {
	n.Logger.WithFields(logrus.Fields{
		"subject":    subject,
		"recipients": recipients,
	}).Info(message)
	return true
}

func (n *LogNotifier) SendWebhookMessage(ctx context.Context, text string) bool {
	n.Logger.Info(text)
	return true
}
