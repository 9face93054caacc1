package convertor

import (
	"encoding/json"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/po"
	"videogen-service/pkg/logger"
)

// VideoConvertor 视频转换器
type VideoConvertor struct{}

// NewVideoConvertor 创建视频转换器
func NewVideoConvertor() *VideoConvertor {
	return &VideoConvertor{}
}

// ToEntity 将PO转换为Entity
func (c *VideoConvertor) ToEntity(p *po.Video) *entity.Video {
	return entity.RestoreVideo(entity.VideoAttrs{
		VideoUUID:       p.VideoUUID,
		UserUUID:        p.UserUUID,
		Provider:        vo.ProviderType(p.Provider),
		Status:          vo.VideoStatus(p.Status),
		Progress:        p.Progress,
		Message:         p.Message,
		RemoteURL:       p.RemoteURL,
		ErrorMessage:    p.ErrorMessage,
		GenerationJobID: p.GenerationJobID,
		BatchItemUUID:   p.BatchItemUUID,
		Params:          decodeParams(p.Params),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	})
}

// ToPO 将Entity转换为PO
func (c *VideoConvertor) ToPO(e *entity.Video) *po.Video {
	return &po.Video{
		BaseModel: po.BaseModel{
			CreatedAt: e.CreatedAt(),
			UpdatedAt: e.UpdatedAt(),
		},
		VideoUUID:       e.VideoUUID(),
		UserUUID:        e.UserUUID(),
		Provider:        e.Provider().String(),
		Status:          e.Status().String(),
		Progress:        e.Progress(),
		Message:         e.Message(),
		RemoteURL:       e.RemoteURL(),
		ErrorMessage:    e.ErrorMessage(),
		GenerationJobID: e.GenerationJobID(),
		BatchItemUUID:   e.BatchItemUUID(),
		Params:          encodeJSON(e.Params()),
	}
}

// ToEntities 批量将PO转换为Entity
func (c *VideoConvertor) ToEntities(pos []*po.Video) []*entity.Video {
	entities := make([]*entity.Video, 0, len(pos))
	for _, p := range pos {
		entities = append(entities, c.ToEntity(p))
	}
	return entities
}

func encodeJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Warnf("Encode json column failed error=%v", err)
		return "{}"
	}
	return string(b)
}

func decodeParams(s string) vo.GenerationParams {
	var params vo.GenerationParams
	if s == "" {
		return params
	}
	if err := json.Unmarshal([]byte(s), &params); err != nil {
		logger.Warnf("Decode params column failed error=%v", err)
	}
	return params
}
