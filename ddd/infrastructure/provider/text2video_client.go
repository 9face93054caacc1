package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/metrics"
)

// Text2VideoClient 文生视频服务
type Text2VideoClient struct {
	http   *jsonClient
	apiKey string
}

var _ gateway.GenerationGateway = (*Text2VideoClient)(nil)

func NewText2VideoClient(baseURL, apiKey string, timeout time.Duration) *Text2VideoClient {
	return &Text2VideoClient{http: newJSONClient(baseURL, timeout), apiKey: apiKey}
}

type text2VideoRequest struct {
	Prompt      string            `json:"prompt"`
	Model       string            `json:"model,omitempty"`
	AspectRatio string            `json:"aspect_ratio,omitempty"`
	Duration    string            `json:"duration,omitempty"`
	Keyframes   *text2VideoFrames `json:"keyframes,omitempty"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata"`
}

type text2VideoFrames struct {
	Frame0 struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"frame0"`
}

// text2VideoGeneration 提交、查询和回调共用的结构
type text2VideoGeneration struct {
	ID            string            `json:"id"`
	State         string            `json:"state"` // queued, dreaming, completed, failed
	FailureReason string            `json:"failure_reason"`
	Metadata      map[string]string `json:"metadata"`
	Assets        struct {
		Video string `json:"video"`
	} `json:"assets"`
}

func (c *Text2VideoClient) Provider() vo.ProviderType { return vo.ProviderText2Video }

func (c *Text2VideoClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

func (c *Text2VideoClient) Submit(ctx context.Context, req gateway.GenerationRequest) (handle vo.JobHandle, err error) {
	defer func() { metrics.ObserveProviderCall(vo.ProviderText2Video.String(), "submit", err) }()

	body := text2VideoRequest{
		Prompt:      req.Params.Prompt,
		Model:       req.Params.Model,
		AspectRatio: req.Params.AspectRatio,
		CallbackURL: req.CallbackURL,
		Metadata:    map[string]string{"reference_id": req.ReferenceID},
	}
	if req.Params.Duration > 0 {
		body.Duration = formatSeconds(req.Params.Duration)
	}
	if req.Params.ImageURL != "" {
		body.Keyframes = &text2VideoFrames{}
		body.Keyframes.Frame0.Type = "image"
		body.Keyframes.Frame0.URL = req.Params.ImageURL
	}

	var resp text2VideoGeneration
	if err := c.http.do(ctx, http.MethodPost, "/v1/generations", c.headers(), body, &resp); err != nil {
		return vo.JobHandle{}, submitError(err)
	}
	if resp.ID == "" {
		return vo.JobHandle{}, errno.Errorf(errno.ErrAdapter, "text2video returned no generation id")
	}
	if strings.EqualFold(resp.State, "failed") {
		return vo.JobHandle{}, errno.Errorf(errno.ErrAdapter, "text2video rejected: %s", resp.FailureReason)
	}
	return vo.JobHandle{JobID: resp.ID}, nil
}

func (c *Text2VideoClient) Poll(ctx context.Context, jobID string) (result *vo.JobResult, err error) {
	defer func() { metrics.ObserveProviderCall(vo.ProviderText2Video.String(), "poll", err) }()

	var resp text2VideoGeneration
	if err := c.http.do(ctx, http.MethodGet, "/v1/generations/"+url.PathEscape(jobID), c.headers(), nil, &resp); err != nil {
		return nil, err
	}
	result = normalizeGeneration(resp)
	result.JobID = jobID
	return result, nil
}

func (c *Text2VideoClient) NormalizeCallback(payload []byte) (*vo.JobResult, error) {
	var gen text2VideoGeneration
	if err := json.Unmarshal(payload, &gen); err != nil {
		return nil, errno.NewBizError(errno.ErrInvalidParam, err)
	}
	result := normalizeGeneration(gen)
	if result.Pending {
		return nil, errno.Errorf(errno.ErrInvalidParam, "generation %s is still %s", gen.ID, gen.State)
	}
	if result.ReferenceID == "" && result.JobID == "" {
		return nil, errno.Errorf(errno.ErrInvalidParam, "text2video callback carries no identifiers")
	}
	return result, nil
}

func normalizeGeneration(gen text2VideoGeneration) *vo.JobResult {
	var result *vo.JobResult
	switch strings.ToLower(gen.State) {
	case "completed":
		result = vo.Succeeded(gen.ID, gen.Assets.Video)
	case "failed":
		result = vo.Failed(gen.ID, gen.FailureReason)
	default:
		result = vo.StillRunning(gen.ID)
	}
	result.ReferenceID = gen.Metadata["reference_id"]
	return result
}

func formatSeconds(n int) string {
	return strconv.Itoa(n) + "s"
}
