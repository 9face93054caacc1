package cqe

import (
	"strings"

	"videogen-service/pkg/errno"
)

// PublishVideoReq 把已生成的视频发布到目标账号
type PublishVideoReq struct {
	UserUUID  string `json:"-"`
	VideoUUID string `json:"-"`
	AccountID string `json:"account_id" binding:"required"`
	Caption   string `json:"caption"`
}

func (r *PublishVideoReq) Validate() error {
	if strings.TrimSpace(r.UserUUID) == "" {
		return errno.ErrUserUUIDRequired
	}
	if strings.TrimSpace(r.VideoUUID) == "" {
		return errno.ErrVideoUUIDRequired
	}
	if strings.TrimSpace(r.AccountID) == "" {
		return errno.ErrAccountRequired
	}
	if len([]rune(r.Caption)) > 2200 {
		return errno.Errorf(errno.ErrInvalidParam, "caption exceeds 2200 characters")
	}
	return nil
}

// PostActionReq 查询单条发布记录
type PostActionReq struct {
	UserUUID string
	PostUUID string
}

func (r *PostActionReq) Validate() error {
	if strings.TrimSpace(r.UserUUID) == "" {
		return errno.ErrUserUUIDRequired
	}
	if strings.TrimSpace(r.PostUUID) == "" {
		return errno.ErrPostUUIDRequired
	}
	return nil
}
