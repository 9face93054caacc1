package po

// Video 视频持久化对象
type Video struct {
	BaseModel
	VideoUUID       string `gorm:"column:video_uuid;type:varchar(36);uniqueIndex" json:"video_uuid"`
	UserUUID        string `gorm:"column:user_uuid;type:varchar(36);index" json:"user_uuid"`
	Provider        string `gorm:"column:provider;type:varchar(20)" json:"provider"`
	Status          string `gorm:"column:status;type:varchar(20);index" json:"status"` // draft, generating, ready, posting, posted, failed, cancelled
	Progress        int    `gorm:"column:progress;type:int" json:"progress"`
	Message         string `gorm:"column:message;type:varchar(255)" json:"message"`
	RemoteURL       string `gorm:"column:remote_url;type:varchar(1024)" json:"remote_url"`
	ErrorMessage    string `gorm:"column:error_message;type:text" json:"error_message"`
	GenerationJobID string `gorm:"column:generation_job_id;type:varchar(128);index" json:"generation_job_id"`
	BatchItemUUID   string `gorm:"column:batch_item_uuid;type:varchar(36);index" json:"batch_item_uuid"`
	Params          string `gorm:"column:params;type:text" json:"params"`
}

// TableName 指定表名
func (Video) TableName() string {
	return "videos"
}
