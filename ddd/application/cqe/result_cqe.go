package cqe

import (
	"strings"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

const (
	ResultKindGeneration = "generation"
	ResultKindPublish    = "publish"
)

// ProviderResultMsg provider.results 主题中的消息，由 webhook 中继写入已归一化的结果
type ProviderResultMsg struct {
	Kind     string       `json:"kind"`
	Provider string       `json:"provider,omitempty"`
	Result   vo.JobResult `json:"result"`
}

func (m *ProviderResultMsg) Validate() error {
	switch m.Kind {
	case ResultKindGeneration:
		if _, err := vo.ParseProviderType(m.Provider); err != nil {
			return errno.NewBizError(errno.ErrUnknownProvider, err)
		}
	case ResultKindPublish:
	default:
		return errno.Errorf(errno.ErrInvalidParam, "unknown result kind %q", m.Kind)
	}
	if strings.TrimSpace(m.Result.ReferenceID) == "" && strings.TrimSpace(m.Result.JobID) == "" {
		return errno.Errorf(errno.ErrInvalidParam, "result has neither reference_id nor job_id")
	}
	return nil
}

// ProviderType 已校验的服务类型，发布结果为空
func (m *ProviderResultMsg) ProviderType() vo.ProviderType {
	p, _ := vo.ParseProviderType(m.Provider)
	return p
}
