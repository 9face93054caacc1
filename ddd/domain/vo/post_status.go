package vo

// PostStatus TikTok发布状态
type PostStatus string

const (
	PostStatusPending    PostStatus = "pending"
	PostStatusProcessing PostStatus = "processing"
	PostStatusCompleted  PostStatus = "completed"
	PostStatusFailed     PostStatus = "failed"
)

var postTransitions = map[PostStatus][]PostStatus{
	// pending -> failed 表示发布请求被同步拒绝
	PostStatusPending:    {PostStatusProcessing, PostStatusFailed},
	PostStatusProcessing: {PostStatusCompleted, PostStatusFailed},
}

func (s PostStatus) String() string { return string(s) }

// IsTerminal 完成或失败
func (s PostStatus) IsTerminal() bool {
	return s == PostStatusCompleted || s == PostStatusFailed
}

// CanTransitionTo 检查是否可以转换到目标状态
func (s PostStatus) CanTransitionTo(target PostStatus) bool {
	for _, next := range postTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Progress 发布进度由状态推导，不落库
func (s PostStatus) Progress() int {
	switch s {
	case PostStatusProcessing:
		return 50
	case PostStatusCompleted:
		return 100
	default:
		return 0
	}
}
