package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/vo"
)

func TestText2VideoClientSubmitAndPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/generations":
			var body text2VideoRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "a cat surfing", body.Prompt)
			assert.Equal(t, "5s", body.Duration)
			assert.Equal(t, "video-9", body.Metadata["reference_id"])
			require.NotNil(t, body.Keyframes)
			assert.Equal(t, "https://img/cat.png", body.Keyframes.Frame0.URL)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"gen-1","state":"queued"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/generations/gen-1":
			_, _ = w.Write([]byte(`{"id":"gen-1","state":"completed","assets":{"video":"https://cdn/gen-1.mp4"},"metadata":{"reference_id":"video-9"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewText2VideoClient(srv.URL, "secret", time.Second)
	handle, err := c.Submit(context.Background(), gateway.GenerationRequest{
		ReferenceID: "video-9",
		Params:      vo.GenerationParams{Prompt: "a cat surfing", ImageURL: "https://img/cat.png", Duration: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", handle.JobID)

	result, err := c.Poll(context.Background(), "gen-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "video-9", result.ReferenceID)
	assert.Equal(t, "https://cdn/gen-1.mp4", result.ResultURL)
}

func TestText2VideoClientNormalizeCallback(t *testing.T) {
	c := NewText2VideoClient("http://unused", "", time.Second)

	failed, err := c.NormalizeCallback([]byte(`{"id":"gen-2","state":"failed","failure_reason":"nsfw prompt","metadata":{"reference_id":"video-2"}}`))
	require.NoError(t, err)
	assert.False(t, failed.Success)
	assert.Equal(t, "nsfw prompt", failed.Reason)
	assert.Equal(t, "video-2", failed.ReferenceID)

	_, err = c.NormalizeCallback([]byte(`{"id":"gen-3","state":"dreaming"}`))
	assert.Error(t, err)
}
