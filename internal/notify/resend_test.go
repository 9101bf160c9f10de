package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSendPosterReadyPostsAttachment(t *testing.T) {
	poster := filepath.Join(t.TempDir(), "paris_midnight_deadbeef.png")
	require.NoError(t, os.WriteFile(poster, []byte("png-bytes"), 0o644))

	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	client := NewResendClient(ResendOptions{
		APIKey:  "re_test_key",
		From:    "Cartographix <posters@example.com>",
		BaseURL: srv.URL,
		Logger:  zerolog.Nop(),
	})

	err := client.SendPosterReady(context.Background(), PosterReady{
		To:             "user@example.com",
		City:           "Paris",
		Theme:          "Midnight",
		FormatLabel:    "Instagram (1080×1080)",
		DistanceMeters: 10000,
		Landmarks:      []string{"Louvre"},
		AttachmentPath: poster,
	})
	require.NoError(t, err)

	require.Equal(t, "Bearer re_test_key", auth)
	require.Equal(t, []string{"user@example.com"}, got.To)
	require.Contains(t, got.Text, "City: Paris")
	require.Contains(t, got.Text, "Distance: 10 km")
	require.Contains(t, got.HTML, "<strong>Paris</strong>")
	require.Len(t, got.Attachments, 1)
	require.Equal(t, "paris_midnight_deadbeef.png", got.Attachments[0].Filename)

	data, err := base64.StdEncoding.DecodeString(got.Attachments[0].Content)
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), data)
}

func TestSendPosterReadySkipsWithoutAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewResendClient(ResendOptions{BaseURL: srv.URL, Logger: zerolog.Nop()})
	err := client.SendPosterReady(context.Background(), PosterReady{To: "user@example.com", City: "Paris"})
	require.NoError(t, err)
	require.False(t, called)
}

func TestSendPosterReadyUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewResendClient(ResendOptions{APIKey: "k", BaseURL: srv.URL, Logger: zerolog.Nop()})
	err := client.SendPosterReady(context.Background(), PosterReady{To: "user@example.com", City: "Paris"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "422")
}
