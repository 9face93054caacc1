package dto

import (
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
)

// VideoDto 视频详情
type VideoDto struct {
	VideoUUID     string              `json:"video_uuid"`
	Provider      string              `json:"provider"`
	Status        string              `json:"status"`
	Progress      int                 `json:"progress"`
	Message       string              `json:"message"`
	RemoteURL     string              `json:"remote_url,omitempty"`
	ErrorMessage  string              `json:"error_message,omitempty"`
	BatchItemUUID string              `json:"batch_item_uuid,omitempty"`
	Params        vo.GenerationParams `json:"params"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func NewVideoDto(v *entity.Video) *VideoDto {
	if v == nil {
		return nil
	}
	return &VideoDto{
		VideoUUID:     v.VideoUUID(),
		Provider:      v.Provider().String(),
		Status:        v.Status().String(),
		Progress:      v.Progress(),
		Message:       v.DisplayMessage(),
		RemoteURL:     v.RemoteURL(),
		ErrorMessage:  v.ErrorMessage(),
		BatchItemUUID: v.BatchItemUUID(),
		Params:        v.Params(),
		CreatedAt:     v.CreatedAt(),
		UpdatedAt:     v.UpdatedAt(),
	}
}

// VideoStatusDto 轮询接口返回，客户端依据 ShouldContinuePolling 决定是否继续
type VideoStatusDto struct {
	VideoUUID             string `json:"video_uuid"`
	Status                string `json:"status"`
	Progress              int    `json:"progress"`
	Message               string `json:"message"`
	RemoteURL             string `json:"remote_url,omitempty"`
	ErrorMessage          string `json:"error_message,omitempty"`
	ShouldContinuePolling bool   `json:"should_continue_polling"`
}

func NewVideoStatusDto(v *entity.Video) *VideoStatusDto {
	if v == nil {
		return nil
	}
	return &VideoStatusDto{
		VideoUUID:             v.VideoUUID(),
		Status:                v.Status().String(),
		Progress:              v.Progress(),
		Message:               v.DisplayMessage(),
		RemoteURL:             v.RemoteURL(),
		ErrorMessage:          v.ErrorMessage(),
		ShouldContinuePolling: v.ShouldContinuePolling(),
	}
}
