package vo

// VideoStatus 视频状态
type VideoStatus string

const (
	// VideoStatusDraft 草稿，尚未提交生成
	VideoStatusDraft VideoStatus = "draft"
	// VideoStatusGenerating 生成中
	VideoStatusGenerating VideoStatus = "generating"
	// VideoStatusReady 生成完成，可发布
	VideoStatusReady VideoStatus = "ready"
	// VideoStatusPosting 发布中
	VideoStatusPosting VideoStatus = "posting"
	// VideoStatusPosted 已发布
	VideoStatusPosted VideoStatus = "posted"
	// VideoStatusFailed 失败
	VideoStatusFailed VideoStatus = "failed"
	// VideoStatusCancelled 已取消
	VideoStatusCancelled VideoStatus = "cancelled"
)

// CancelledMessage 用户取消后写入的固定提示
const CancelledMessage = "cancelled by user"

var videoTransitions = map[VideoStatus][]VideoStatus{
	VideoStatusDraft:      {VideoStatusGenerating},
	VideoStatusGenerating: {VideoStatusReady, VideoStatusFailed, VideoStatusCancelled},
	VideoStatusReady:      {VideoStatusPosting},
	VideoStatusPosting:    {VideoStatusPosted, VideoStatusFailed},
}

var videoDefaultMessages = map[VideoStatus]string{
	VideoStatusDraft:      "draft",
	VideoStatusGenerating: "generating",
	VideoStatusReady:      "done",
	VideoStatusPosting:    "posting",
	VideoStatusPosted:     "posted",
	VideoStatusFailed:     "failed",
	VideoStatusCancelled:  "cancelled",
}

// IsValid 检查状态是否有效
func (s VideoStatus) IsValid() bool {
	_, ok := videoDefaultMessages[s]
	return ok
}

// String 返回状态字符串
func (s VideoStatus) String() string {
	return string(s)
}

// IsTerminal 终态：已发布、失败、取消
func (s VideoStatus) IsTerminal() bool {
	return s == VideoStatusPosted || s == VideoStatusFailed || s == VideoStatusCancelled
}

// CanTransitionTo 检查是否可以转换到目标状态
func (s VideoStatus) CanTransitionTo(target VideoStatus) bool {
	for _, next := range videoTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// DefaultMessage 未存储进度文案时使用的默认值
func (s VideoStatus) DefaultMessage() string {
	return videoDefaultMessages[s]
}

// VideoStatusStrings 转为字符串切片，供数据库条件使用
func VideoStatusStrings(statuses ...VideoStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
