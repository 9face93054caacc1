package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/metrics"
)

const tiktokProvider = "tiktok"

// TikTokClient TikTok内容发布接口（PULL_FROM_URL 直接发布）
type TikTokClient struct {
	http *jsonClient
}

var _ gateway.PublishGateway = (*TikTokClient)(nil)

func NewTikTokClient(baseURL string, timeout time.Duration) *TikTokClient {
	return &TikTokClient{http: newJSONClient(baseURL, timeout)}
}

type tiktokError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

func (e *tiktokError) failed() bool {
	return e != nil && e.Code != "" && e.Code != "ok"
}

type tiktokInitRequest struct {
	PostInfo struct {
		Title        string `json:"title"`
		PrivacyLevel string `json:"privacy_level"`
	} `json:"post_info"`
	SourceInfo struct {
		Source   string `json:"source"`
		VideoURL string `json:"video_url"`
	} `json:"source_info"`
}

type tiktokInitResponse struct {
	Data struct {
		PublishID string `json:"publish_id"`
	} `json:"data"`
	Error *tiktokError `json:"error"`
}

type tiktokStatusResponse struct {
	Data struct {
		Status     string  `json:"status"` // PROCESSING_UPLOAD, PROCESSING_DOWNLOAD, SEND_TO_USER_INBOX, PUBLISH_COMPLETE, FAILED
		FailReason string  `json:"fail_reason"`
		PostIDs    []int64 `json:"publicaly_available_post_id"`
	} `json:"data"`
	Error *tiktokError `json:"error"`
}

// tiktokWebhook content 字段本身是JSON字符串
type tiktokWebhook struct {
	Event   string `json:"event"`
	Content string `json:"content"`
}

type tiktokWebhookContent struct {
	PublishID string `json:"publish_id"`
	PostID    string `json:"post_id"`
	Reason    string `json:"reason"`
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func (c *TikTokClient) Submit(ctx context.Context, req gateway.PublishRequest) (handle vo.JobHandle, err error) {
	defer func() { metrics.ObserveProviderCall(tiktokProvider, "submit", err) }()

	var body tiktokInitRequest
	body.PostInfo.Title = req.Caption
	body.PostInfo.PrivacyLevel = req.PrivacyLevel
	body.SourceInfo.Source = "PULL_FROM_URL"
	body.SourceInfo.VideoURL = req.VideoURL

	var resp tiktokInitResponse
	if err := c.http.do(ctx, http.MethodPost, "/v2/post/publish/video/init/", bearer(req.AccessToken), body, &resp); err != nil {
		return vo.JobHandle{}, submitError(err)
	}
	if resp.Error.failed() {
		return vo.JobHandle{}, errno.Errorf(errno.ErrAdapter, "tiktok rejected: %s %s", resp.Error.Code, resp.Error.Message)
	}
	if resp.Data.PublishID == "" {
		return vo.JobHandle{}, errno.Errorf(errno.ErrAdapter, "tiktok returned no publish id")
	}
	return vo.JobHandle{JobID: resp.Data.PublishID}, nil
}

func (c *TikTokClient) Poll(ctx context.Context, accessToken, publishID string) (result *vo.JobResult, err error) {
	defer func() { metrics.ObserveProviderCall(tiktokProvider, "poll", err) }()

	var resp tiktokStatusResponse
	body := map[string]string{"publish_id": publishID}
	if err := c.http.do(ctx, http.MethodPost, "/v2/post/publish/status/fetch/", bearer(accessToken), body, &resp); err != nil {
		return nil, err
	}
	if resp.Error.failed() {
		return nil, errno.Errorf(errno.ErrAdapter, "tiktok status: %s %s", resp.Error.Code, resp.Error.Message)
	}
	switch resp.Data.Status {
	case "PUBLISH_COMPLETE":
		result = &vo.JobResult{JobID: publishID, Success: true}
		if len(resp.Data.PostIDs) > 0 {
			result.PublicID = strconv.FormatInt(resp.Data.PostIDs[0], 10)
		}
		return result, nil
	case "FAILED":
		return vo.Failed(publishID, resp.Data.FailReason), nil
	default:
		return vo.StillRunning(publishID), nil
	}
}

func (c *TikTokClient) NormalizeCallback(payload []byte) (*vo.JobResult, error) {
	var hook tiktokWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, errno.NewBizError(errno.ErrInvalidParam, err)
	}
	var content tiktokWebhookContent
	if err := json.Unmarshal([]byte(hook.Content), &content); err != nil {
		return nil, errno.NewBizError(errno.ErrInvalidParam, err)
	}
	if strings.TrimSpace(content.PublishID) == "" {
		return nil, errno.Errorf(errno.ErrInvalidParam, "tiktok webhook carries no publish_id")
	}
	switch hook.Event {
	case "post.publish.complete", "post.publish.publicly_available":
		return &vo.JobResult{JobID: content.PublishID, Success: true, PublicID: content.PostID}, nil
	case "post.publish.failed":
		return vo.Failed(content.PublishID, content.Reason), nil
	default:
		return nil, errno.Errorf(errno.ErrInvalidParam, "unsupported tiktok event %q", hook.Event)
	}
}
