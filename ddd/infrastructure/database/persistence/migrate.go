package persistence

import (
	"gorm.io/gorm"

	"videogen-service/ddd/infrastructure/database/po"
)

// AutoMigrate 创建或更新业务表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(po.AllModels()...)
}
