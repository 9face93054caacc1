package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/gateway"
	"videogen-service/pkg/errno"
)

func TestTikTokClientSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/post/publish/video/init/", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		var body tiktokInitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PULL_FROM_URL", body.SourceInfo.Source)
		assert.Equal(t, "https://cdn/v.mp4", body.SourceInfo.VideoURL)
		assert.Equal(t, "SELF_ONLY", body.PostInfo.PrivacyLevel)
		_, _ = w.Write([]byte(`{"data":{"publish_id":"v_pub_1"},"error":{"code":"ok","message":""}}`))
	}))
	defer srv.Close()

	c := NewTikTokClient(srv.URL, time.Second)
	handle, err := c.Submit(context.Background(), gateway.PublishRequest{
		AccessToken:  "user-token",
		VideoURL:     "https://cdn/v.mp4",
		Caption:      "hello",
		PrivacyLevel: "SELF_ONLY",
	})
	require.NoError(t, err)
	assert.Equal(t, "v_pub_1", handle.JobID)
}

func TestTikTokClientSubmitErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{},"error":{"code":"spam_risk_too_many_posts","message":"daily cap"}}`))
	}))
	defer srv.Close()

	c := NewTikTokClient(srv.URL, time.Second)
	_, err := c.Submit(context.Background(), gateway.PublishRequest{AccessToken: "t"})
	assert.True(t, errors.Is(err, errno.ErrAdapter))
}

func TestTikTokClientPoll(t *testing.T) {
	body := `{"data":{"status":"PUBLISH_COMPLETE","publicaly_available_post_id":[7301234]},"error":{"code":"ok"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/post/publish/status/fetch/", r.URL.Path)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()
	c := NewTikTokClient(srv.URL, time.Second)

	done, err := c.Poll(context.Background(), "t", "v_pub_1")
	require.NoError(t, err)
	assert.True(t, done.Success)
	assert.Equal(t, "7301234", done.PublicID)

	body = `{"data":{"status":"PROCESSING_DOWNLOAD"},"error":{"code":"ok"}}`
	running, err := c.Poll(context.Background(), "t", "v_pub_1")
	require.NoError(t, err)
	assert.True(t, running.Pending)

	body = `{"data":{"status":"FAILED","fail_reason":"file_format_check_failed"},"error":{"code":"ok"}}`
	failed, err := c.Poll(context.Background(), "t", "v_pub_1")
	require.NoError(t, err)
	assert.False(t, failed.Success)
	assert.Equal(t, "file_format_check_failed", failed.Reason)
}

func TestTikTokClientNormalizeCallback(t *testing.T) {
	c := NewTikTokClient("http://unused", time.Second)

	done, err := c.NormalizeCallback([]byte(`{"event":"post.publish.complete","content":"{\"publish_id\":\"v_pub_1\",\"post_id\":\"88\"}"}`))
	require.NoError(t, err)
	assert.Equal(t, "v_pub_1", done.JobID)
	assert.Equal(t, "88", done.PublicID)
	assert.True(t, done.Success)

	failed, err := c.NormalizeCallback([]byte(`{"event":"post.publish.failed","content":"{\"publish_id\":\"v_pub_2\",\"reason\":\"auth_removed\"}"}`))
	require.NoError(t, err)
	assert.Equal(t, "auth_removed", failed.Reason)

	_, err = c.NormalizeCallback([]byte(`{"event":"post.publish.complete","content":"{}"}`))
	assert.True(t, errors.Is(err, errno.ErrInvalidParam))
}
