package cqe

import (
	"strings"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

// CreateBatchReq 创建批量任务，Config 为所有子项共享的服务参数
type CreateBatchReq struct {
	UserUUID string                `json:"-"`
	Provider string                `json:"provider" binding:"required"`
	Config   vo.ProviderConfig     `json:"config"`
	Items    []vo.GenerationParams `json:"items"`
}

// Validate 只检查请求形状，子项的必填字段在领域层合并共享配置后校验
func (r *CreateBatchReq) Validate() error {
	if strings.TrimSpace(r.UserUUID) == "" {
		return errno.ErrUserUUIDRequired
	}
	if _, err := vo.ParseProviderType(r.Provider); err != nil {
		return errno.NewBizError(errno.ErrUnknownProvider, err)
	}
	if len(r.Items) == 0 {
		return errno.ErrEmptyBatch
	}
	return nil
}

// ProviderType 已校验的服务类型
func (r *CreateBatchReq) ProviderType() vo.ProviderType {
	p, _ := vo.ParseProviderType(r.Provider)
	return p
}

// BatchActionReq 针对单个批量任务的操作
type BatchActionReq struct {
	UserUUID  string
	BatchUUID string
}

func (r *BatchActionReq) Validate() error {
	if strings.TrimSpace(r.UserUUID) == "" {
		return errno.ErrUserUUIDRequired
	}
	if strings.TrimSpace(r.BatchUUID) == "" {
		return errno.ErrBatchUUIDRequired
	}
	return nil
}

// ListBatchesReq 分页查询当前用户的批量任务
type ListBatchesReq struct {
	UserUUID string `form:"-"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

func (r *ListBatchesReq) Validate() error {
	if strings.TrimSpace(r.UserUUID) == "" {
		return errno.ErrUserUUIDRequired
	}
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.PageSize <= 0 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
	return nil
}

// Offset 分页偏移
func (r *ListBatchesReq) Offset() int {
	return (r.Page - 1) * r.PageSize
}
