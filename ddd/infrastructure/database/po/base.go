package po

import "time"

// BaseModel 公共字段
type BaseModel struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// AllModels 自动迁移的表
func AllModels() []interface{} {
	return []interface{}{&Video{}, &BatchJob{}, &BatchItem{}, &TikTokPost{}, &TikTokAccount{}}
}
