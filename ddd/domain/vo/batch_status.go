package vo

// BatchStatus 批量任务状态
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
	BatchStatusCancelled  BatchStatus = "cancelled"
)

var batchTransitions = map[BatchStatus][]BatchStatus{
	BatchStatusPending:    {BatchStatusProcessing, BatchStatusCancelled},
	BatchStatusProcessing: {BatchStatusCompleted, BatchStatusFailed, BatchStatusCancelled},
}

func (s BatchStatus) String() string { return string(s) }

// IsTerminal 完成、失败、取消均为终态
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed || s == BatchStatusCancelled
}

// CanTransitionTo 检查是否可以转换到目标状态
func (s BatchStatus) CanTransitionTo(target BatchStatus) bool {
	for _, next := range batchTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ItemStatus 批量子项状态，只能单向推进
type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusProcessing ItemStatus = "processing"
	ItemStatusCompleted  ItemStatus = "completed"
	ItemStatusFailed     ItemStatus = "failed"
)

var itemTransitions = map[ItemStatus][]ItemStatus{
	// pending -> failed 仅用于批量取消
	ItemStatusPending:    {ItemStatusProcessing, ItemStatusFailed},
	ItemStatusProcessing: {ItemStatusCompleted, ItemStatusFailed},
}

func (s ItemStatus) String() string { return string(s) }

// IsTerminal 完成或失败
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusCompleted || s == ItemStatusFailed
}

// CanTransitionTo 检查是否可以转换到目标状态
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	for _, next := range itemTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}
