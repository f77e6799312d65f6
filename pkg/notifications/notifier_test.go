package notifications_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgmesh/platform-sdk/pkg/notifications"
)

func TestWebhookNotifier_SendWebhookMessage(t *testing.T) {
	var payloads []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		payloads = append(payloads, payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := notifications.NewWebhookNotifier(notifications.WebhookNotifierOptions{URL: srv.URL})
	ok := n.SendWebhookMessage(context.Background(), "SLA BREACH (RESPONSE): Printer down | Contract CTR-001")
	assert.True(t, ok)
	require.Len(t, payloads, 1)
	assert.Equal(t, map[string]string{"text": "SLA BREACH (RESPONSE): Printer down | Contract CTR-001"}, payloads[0])
}

func TestWebhookNotifier_SendAlert(t *testing.T) {
	var payloads []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		payloads = append(payloads, payload)
	}))
	defer srv.Close()

	n := notifications.NewWebhookNotifier(notifications.WebhookNotifierOptions{URL: srv.URL})
	ok := n.SendAlert(context.Background(), "Subject", "Body", []string{"someone@example.com"})
	assert.True(t, ok)
	require.Len(t, payloads, 1)
	assert.Equal(t, "Subject\nBody", payloads[0]["text"])
}

func TestWebhookNotifier_SendAlert_NoRecipients(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no dispatch expected without recipients")
	}))
	defer srv.Close()

	n := notifications.NewWebhookNotifier(notifications.WebhookNotifierOptions{URL: srv.URL})
	assert.False(t, n.SendAlert(context.Background(), "Subject", "Body", nil))
}

func TestWebhookNotifier_NoURL(t *testing.T) {
	n := notifications.NewWebhookNotifier(notifications.WebhookNotifierOptions{})
	assert.False(t, n.SendWebhookMessage(context.Background(), "anything"))
}

func TestWebhookNotifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := notifications.NewWebhookNotifier(notifications.WebhookNotifierOptions{URL: srv.URL})
	assert.False(t, n.SendWebhookMessage(context.Background(), "anything"))
}
