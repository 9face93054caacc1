package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

// Video 视频实体，状态只能通过 VideoTransition 推进
type Video struct {
	videoUUID       string
	userUUID        string
	provider        vo.ProviderType
	status          vo.VideoStatus
	progress        int
	message         string
	remoteURL       string
	errorMessage    string
	generationJobID string
	batchItemUUID   string
	params          vo.GenerationParams
	createdAt       time.Time
	updatedAt       time.Time
}

// NewVideo 创建草稿视频，batchItemUUID 为空表示单条视频
func NewVideo(userUUID string, provider vo.ProviderType, params vo.GenerationParams, batchItemUUID string) (*Video, error) {
	if strings.TrimSpace(userUUID) == "" {
		return nil, errno.ErrUserUUIDRequired
	}
	if !provider.IsValid() {
		return nil, errno.Errorf(errno.ErrUnknownProvider, "provider=%s", provider)
	}
	if err := params.Validate(provider); err != nil {
		return nil, errno.NewBizError(errno.ErrInvalidParam, err)
	}
	now := time.Now()
	return &Video{
		videoUUID:     uuid.NewString(),
		userUUID:      userUUID,
		provider:      provider,
		status:        vo.VideoStatusDraft,
		batchItemUUID: batchItemUUID,
		params:        params,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// VideoAttrs 从存储恢复实体时使用
type VideoAttrs struct {
	VideoUUID       string
	UserUUID        string
	Provider        vo.ProviderType
	Status          vo.VideoStatus
	Progress        int
	Message         string
	RemoteURL       string
	ErrorMessage    string
	GenerationJobID string
	BatchItemUUID   string
	Params          vo.GenerationParams
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RestoreVideo 按存储数据重建实体
func RestoreVideo(a VideoAttrs) *Video {
	return &Video{
		videoUUID:       a.VideoUUID,
		userUUID:        a.UserUUID,
		provider:        a.Provider,
		status:          a.Status,
		progress:        a.Progress,
		message:         a.Message,
		remoteURL:       a.RemoteURL,
		errorMessage:    a.ErrorMessage,
		generationJobID: a.GenerationJobID,
		batchItemUUID:   a.BatchItemUUID,
		params:          a.Params,
		createdAt:       a.CreatedAt,
		updatedAt:       a.UpdatedAt,
	}
}

func (v *Video) VideoUUID() string               { return v.videoUUID }
func (v *Video) UserUUID() string                { return v.userUUID }
func (v *Video) Provider() vo.ProviderType       { return v.provider }
func (v *Video) Status() vo.VideoStatus          { return v.status }
func (v *Video) Progress() int                   { return v.progress }
func (v *Video) Message() string                 { return v.message }
func (v *Video) RemoteURL() string               { return v.remoteURL }
func (v *Video) ErrorMessage() string            { return v.errorMessage }
func (v *Video) GenerationJobID() string         { return v.generationJobID }
func (v *Video) BatchItemUUID() string           { return v.batchItemUUID }
func (v *Video) Params() vo.GenerationParams     { return v.params }
func (v *Video) CreatedAt() time.Time            { return v.createdAt }
func (v *Video) UpdatedAt() time.Time            { return v.updatedAt }
func (v *Video) ShouldContinuePolling() bool     { return !v.status.IsTerminal() }
func (v *Video) SetGenerationJobID(jobID string) { v.generationJobID = jobID }

// DisplayMessage 没有存储文案时按状态回退默认文案
func (v *Video) DisplayMessage() string {
	if strings.TrimSpace(v.message) != "" {
		return v.message
	}
	return v.status.DefaultMessage()
}

// Apply 在内存中执行迁移，与存储层的条件更新保持同样的校验
func (v *Video) Apply(t VideoTransition) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if !t.Allows(v.status) {
		return errno.Errorf(errno.ErrInvalidTransition, "video %s: %s -> %s", v.videoUUID, v.status, t.To)
	}
	v.status = t.To
	v.progress = t.Progress
	v.message = t.Message
	if t.RemoteURL != "" {
		v.remoteURL = t.RemoteURL
	}
	if t.ErrorMessage != "" {
		v.errorMessage = t.ErrorMessage
	}
	v.updatedAt = time.Now()
	return nil
}

// VideoTransition 一次状态迁移：允许的源状态、目标状态以及随状态一起写入的字段
type VideoTransition struct {
	From         []vo.VideoStatus
	To           vo.VideoStatus
	Progress     int
	Message      string
	RemoteURL    string
	ErrorMessage string
}

// Allows 当前状态是否在源状态集合中
func (t VideoTransition) Allows(current vo.VideoStatus) bool {
	for _, s := range t.From {
		if s == current {
			return true
		}
	}
	return false
}

// Validate 迁移必须在状态表内，且 ready 带地址、failed 带原因
func (t VideoTransition) Validate() error {
	if len(t.From) == 0 {
		return errno.Errorf(errno.ErrInvalidTransition, "no source status for %s", t.To)
	}
	for _, s := range t.From {
		if !s.CanTransitionTo(t.To) {
			return errno.Errorf(errno.ErrInvalidTransition, "%s -> %s is not allowed", s, t.To)
		}
	}
	if t.Progress < 0 || t.Progress > 100 {
		return errno.Errorf(errno.ErrInvalidParam, "progress %d out of range", t.Progress)
	}
	if t.To == vo.VideoStatusReady && strings.TrimSpace(t.RemoteURL) == "" {
		return errno.Errorf(errno.ErrInvalidParam, "ready video requires remote url")
	}
	if t.To == vo.VideoStatusFailed && strings.TrimSpace(t.ErrorMessage) == "" {
		return errno.Errorf(errno.ErrInvalidParam, "failed video requires error message")
	}
	return nil
}

// StartGeneration 生成任务已派发
func StartGeneration() VideoTransition {
	return VideoTransition{
		From:     []vo.VideoStatus{vo.VideoStatusDraft},
		To:       vo.VideoStatusGenerating,
		Progress: 10,
		Message:  "submitted to provider",
	}
}

// CompleteGeneration 外部服务返回成功
func CompleteGeneration(remoteURL string) VideoTransition {
	return VideoTransition{
		From:      []vo.VideoStatus{vo.VideoStatusGenerating},
		To:        vo.VideoStatusReady,
		Progress:  100,
		RemoteURL: remoteURL,
	}
}

// FailGeneration 外部服务返回失败、同步拒绝或超时
func FailGeneration(reason string) VideoTransition {
	return VideoTransition{
		From:         []vo.VideoStatus{vo.VideoStatusGenerating},
		To:           vo.VideoStatusFailed,
		Progress:     0,
		Message:      reason,
		ErrorMessage: reason,
	}
}

// CancelGeneration 用户取消，进度清零
func CancelGeneration() VideoTransition {
	return VideoTransition{
		From:     []vo.VideoStatus{vo.VideoStatusGenerating},
		To:       vo.VideoStatusCancelled,
		Progress: 0,
		Message:  vo.CancelledMessage,
	}
}

// StartPublishing 发布任务已派发
func StartPublishing() VideoTransition {
	return VideoTransition{
		From:     []vo.VideoStatus{vo.VideoStatusReady},
		To:       vo.VideoStatusPosting,
		Progress: 100,
	}
}

// CompletePublishing 发布成功
func CompletePublishing() VideoTransition {
	return VideoTransition{
		From:     []vo.VideoStatus{vo.VideoStatusPosting},
		To:       vo.VideoStatusPosted,
		Progress: 100,
	}
}

// FailPublishing 发布失败
func FailPublishing(reason string) VideoTransition {
	return VideoTransition{
		From:         []vo.VideoStatus{vo.VideoStatusPosting},
		To:           vo.VideoStatusFailed,
		Progress:     0,
		Message:      reason,
		ErrorMessage: reason,
	}
}
