package dto

import (
	"time"

	"videogen-service/ddd/domain/entity"
)

// PostStatusDto 发布记录状态
type PostStatusDto struct {
	PostUUID              string     `json:"post_uuid"`
	VideoUUID             string     `json:"video_uuid"`
	AccountID             string     `json:"account_id"`
	Status                string     `json:"status"`
	Progress              int        `json:"progress"`
	PublishID             string     `json:"publish_id,omitempty"`
	PublicID              string     `json:"public_id,omitempty"`
	ErrorMessage          string     `json:"error_message,omitempty"`
	PostedAt              *time.Time `json:"posted_at,omitempty"`
	ShouldContinuePolling bool       `json:"should_continue_polling"`
}

func NewPostStatusDto(p *entity.TikTokPost) *PostStatusDto {
	if p == nil {
		return nil
	}
	return &PostStatusDto{
		PostUUID:              p.PostUUID(),
		VideoUUID:             p.VideoUUID(),
		AccountID:             p.AccountID(),
		Status:                p.Status().String(),
		Progress:              p.Progress(),
		PublishID:             p.PublishID(),
		PublicID:              p.PublicID(),
		ErrorMessage:          p.ErrorMessage(),
		PostedAt:              p.PostedAt(),
		ShouldContinuePolling: p.ShouldContinuePolling(),
	}
}
