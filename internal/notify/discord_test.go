package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pdfquiz/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiscord_DisabledWithoutURL(t *testing.T) {
	d := NewDiscord("", logger.Nop())
	assert.Nil(t, d)
	assert.NotPanics(t, func() {
		d.Notify(Embed{Title: "ignored"})
		d.Wait()
	})
}

func TestDiscord_Notify(t *testing.T) {
	var (
		mu   sync.Mutex
		got  WebhookPayload
		hits int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		hits++
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	d := NewDiscord(server.URL, logger.Nop())
	d.Notify(ErrorEmbed("Generate", errors.New("quota exceeded")))
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, hits)
	assert.Equal(t, botUsername, got.Username)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "🚨 Generate failed", got.Embeds[0].Title)
	assert.Contains(t, got.Embeds[0].Description, "quota exceeded")
	assert.NotEmpty(t, got.Embeds[0].Timestamp)
}

func TestDiscord_SendReportsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad webhook", http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	err := NewDiscord(server.URL, logger.Nop()).Send(context.Background(), Embed{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
