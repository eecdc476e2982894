package outputs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jdwit/ssh-auth-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplunk_Send(t *testing.T) {
	t.Run("Send events successfully", func(t *testing.T) {
		var receivedEvents []splunkEvent

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Splunk test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			decoder := json.NewDecoder(r.Body)
			for decoder.More() {
				var event splunkEvent
				if err := decoder.Decode(&event); err == nil {
					receivedEvents = append(receivedEvents, event)
				}
			}

			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		splunk := &Splunk{
			client:   server.Client(),
			endpoint: server.URL,
			token:    "test-token",
		}

		events := []splunkEvent{
			{Time: 1234567890, Event: json.RawMessage(`{"ip":"203.0.113.7"}`)},
			{Time: 1234567891, Event: json.RawMessage(`{"ip":"198.51.100.3"}`)},
		}

		splunk.send(context.Background(), events)
		assert.Len(t, receivedEvents, 2)
	})
}

func TestSplunk_SendAlerts(t *testing.T) {
	t.Run("Process alerts", func(t *testing.T) {
		var received []splunkEvent

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decoder := json.NewDecoder(r.Body)
			for decoder.More() {
				var event splunkEvent
				if err := decoder.Decode(&event); err == nil {
					received = append(received, event)
				}
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		splunk := &Splunk{
			client:   server.Client(),
			endpoint: server.URL,
			token:    "test-token",
		}

		alerts := make(chan types.Alert, 2)
		alerts <- types.Alert{IP: "203.0.113.7", Streak: 5, Timestamp: time.Unix(1754475330, 0)}
		alerts <- types.Alert{IP: "198.51.100.3", Streak: 5, Timestamp: time.Unix(1754475390, 0)}
		close(alerts)

		splunk.SendAlerts(context.Background(), alerts)
		require.Len(t, received, 2)
		assert.Equal(t, int64(1754475330), received[0].Time)

		var payload alertEvent
		require.NoError(t, json.Unmarshal(received[1].Event, &payload))
		assert.Equal(t, "198.51.100.3", payload.IP)
		assert.Equal(t, "ssh_consecutive_failures", payload.Type)
	})
}

func TestNewSplunk(t *testing.T) {
	t.Run("Missing endpoint", func(t *testing.T) {
		t.Setenv("SPLUNK_HEC_ENDPOINT", "")
		t.Setenv("SPLUNK_HEC_TOKEN", "token")
		_, err := NewSplunk()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SPLUNK_HEC_ENDPOINT")
	})

	t.Run("Missing token", func(t *testing.T) {
		t.Setenv("SPLUNK_HEC_ENDPOINT", "https://example.com")
		t.Setenv("SPLUNK_HEC_TOKEN", "")
		_, err := NewSplunk()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SPLUNK_HEC_TOKEN")
	})

	t.Run("Valid config", func(t *testing.T) {
		t.Setenv("SPLUNK_HEC_ENDPOINT", "https://example.com")
		t.Setenv("SPLUNK_HEC_TOKEN", "test-token")
		t.Setenv("SPLUNK_SOURCE", "sshd")
		t.Setenv("SPLUNK_SOURCETYPE", "linux_secure")
		t.Setenv("SPLUNK_INDEX", "main")

		splunk, err := NewSplunk()
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", splunk.endpoint)
		assert.Equal(t, "test-token", splunk.token)
		assert.Equal(t, "sshd", splunk.source)
		assert.Equal(t, "linux_secure", splunk.sourcetype)
		assert.Equal(t, "main", splunk.index)
	})
}
