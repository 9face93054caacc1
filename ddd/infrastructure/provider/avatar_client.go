package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/metrics"
)

// AvatarClient 数字人口播视频生成服务
type AvatarClient struct {
	http   *jsonClient
	apiKey string
}

var _ gateway.GenerationGateway = (*AvatarClient)(nil)

func NewAvatarClient(baseURL, apiKey string, timeout time.Duration) *AvatarClient {
	return &AvatarClient{http: newJSONClient(baseURL, timeout), apiKey: apiKey}
}

type avatarGenerateRequest struct {
	Title       string `json:"title,omitempty"`
	Script      string `json:"script"`
	AvatarID    string `json:"avatar_id,omitempty"`
	VoiceID     string `json:"voice_id,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	ProductRef  string `json:"product_ref,omitempty"`
	CallbackID  string `json:"callback_id"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type avatarError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type avatarGenerateResponse struct {
	Error *avatarError `json:"error"`
	Data  struct {
		VideoID string `json:"video_id"`
	} `json:"data"`
}

type avatarStatusResponse struct {
	Data struct {
		VideoID  string       `json:"video_id"`
		Status   string       `json:"status"` // pending, waiting, processing, completed, failed
		VideoURL string       `json:"video_url"`
		Error    *avatarError `json:"error"`
	} `json:"data"`
}

type avatarCallback struct {
	EventType string `json:"event_type"` // avatar_video.success / avatar_video.fail
	EventData struct {
		VideoID    string `json:"video_id"`
		URL        string `json:"url"`
		CallbackID string `json:"callback_id"`
		Msg        string `json:"msg"`
	} `json:"event_data"`
}

func (c *AvatarClient) Provider() vo.ProviderType { return vo.ProviderAvatar }

func (c *AvatarClient) headers() map[string]string {
	return map[string]string{"X-Api-Key": c.apiKey}
}

func (c *AvatarClient) Submit(ctx context.Context, req gateway.GenerationRequest) (handle vo.JobHandle, err error) {
	defer func() { metrics.ObserveProviderCall(vo.ProviderAvatar.String(), "submit", err) }()

	body := avatarGenerateRequest{
		Title:       req.Params.Title,
		Script:      req.Params.Script,
		AvatarID:    req.Params.AvatarID,
		VoiceID:     req.Params.VoiceID,
		AspectRatio: req.Params.AspectRatio,
		ProductRef:  req.Params.ProductRef,
		CallbackID:  req.ReferenceID,
		CallbackURL: req.CallbackURL,
	}
	var resp avatarGenerateResponse
	if err := c.http.do(ctx, http.MethodPost, "/v2/video/generate", c.headers(), body, &resp); err != nil {
		return vo.JobHandle{}, submitError(err)
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return vo.JobHandle{}, errno.Errorf(errno.ErrAdapter, "avatar rejected: %s", resp.Error.Message)
	}
	if resp.Data.VideoID == "" {
		return vo.JobHandle{}, errno.Errorf(errno.ErrAdapter, "avatar returned no video id")
	}
	return vo.JobHandle{JobID: resp.Data.VideoID}, nil
}

func (c *AvatarClient) Poll(ctx context.Context, jobID string) (result *vo.JobResult, err error) {
	defer func() { metrics.ObserveProviderCall(vo.ProviderAvatar.String(), "poll", err) }()

	var resp avatarStatusResponse
	path := "/v1/video_status.get?video_id=" + url.QueryEscape(jobID)
	if err := c.http.do(ctx, http.MethodGet, path, c.headers(), nil, &resp); err != nil {
		return nil, err
	}
	switch strings.ToLower(resp.Data.Status) {
	case "completed":
		return vo.Succeeded(jobID, resp.Data.VideoURL), nil
	case "failed":
		reason := ""
		if resp.Data.Error != nil {
			reason = resp.Data.Error.Message
		}
		return vo.Failed(jobID, reason), nil
	default:
		return vo.StillRunning(jobID), nil
	}
}

func (c *AvatarClient) NormalizeCallback(payload []byte) (*vo.JobResult, error) {
	var cb avatarCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, errno.NewBizError(errno.ErrInvalidParam, err)
	}
	var result *vo.JobResult
	switch cb.EventType {
	case "avatar_video.success":
		result = vo.Succeeded(cb.EventData.VideoID, cb.EventData.URL)
	case "avatar_video.fail":
		result = vo.Failed(cb.EventData.VideoID, cb.EventData.Msg)
	default:
		return nil, errno.Errorf(errno.ErrInvalidParam, "unknown avatar event %q", cb.EventType)
	}
	result.ReferenceID = cb.EventData.CallbackID
	if result.ReferenceID == "" && result.JobID == "" {
		return nil, errno.Errorf(errno.ErrInvalidParam, "avatar callback carries no identifiers")
	}
	return result, nil
}

// submitError 提交阶段的错误统一归为适配器错误，超时单独区分
func submitError(err error) error {
	if ctxErr := contextError(err); ctxErr != nil {
		return errno.NewBizError(errno.ErrAdapterTimeout, ctxErr)
	}
	return errno.NewBizError(errno.ErrAdapter, fmt.Errorf("submit: %w", err))
}
