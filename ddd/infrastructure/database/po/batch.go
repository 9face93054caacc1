package po

import "time"

// BatchJob 批量任务持久化对象
type BatchJob struct {
	BaseModel
	BatchUUID      string     `gorm:"column:batch_uuid;type:varchar(36);uniqueIndex" json:"batch_uuid"`
	UserUUID       string     `gorm:"column:user_uuid;type:varchar(36);index" json:"user_uuid"`
	Provider       string     `gorm:"column:provider;type:varchar(20)" json:"provider"`
	Status         string     `gorm:"column:status;type:varchar(20);index" json:"status"` // pending, processing, completed, failed, cancelled
	TotalCount     int        `gorm:"column:total_count;type:int" json:"total_count"`
	CompletedCount int        `gorm:"column:completed_count;type:int;default:0" json:"completed_count"`
	FailedCount    int        `gorm:"column:failed_count;type:int;default:0" json:"failed_count"`
	Config         string     `gorm:"column:config;type:text" json:"config"`
	StartedAt      *time.Time `gorm:"column:started_at" json:"started_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at"`
}

// TableName 指定表名
func (BatchJob) TableName() string {
	return "batch_jobs"
}

// BatchItem 批量子项持久化对象
type BatchItem struct {
	BaseModel
	ItemUUID     string `gorm:"column:item_uuid;type:varchar(36);uniqueIndex" json:"item_uuid"`
	BatchUUID    string `gorm:"column:batch_uuid;type:varchar(36);index:idx_batch_items_batch_index,priority:1" json:"batch_uuid"`
	ItemIndex    int    `gorm:"column:item_index;type:int;index:idx_batch_items_batch_index,priority:2" json:"item_index"`
	Status       string `gorm:"column:status;type:varchar(20);index" json:"status"` // pending, processing, completed, failed
	VideoUUID    string `gorm:"column:video_uuid;type:varchar(36)" json:"video_uuid"`
	Params       string `gorm:"column:params;type:text" json:"params"`
	ErrorMessage string `gorm:"column:error_message;type:text" json:"error_message"`
}

// TableName 指定表名
func (BatchItem) TableName() string {
	return "batch_items"
}
