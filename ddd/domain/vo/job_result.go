package vo

import "strings"

// JobHandle 外部服务受理后返回的任务句柄
type JobHandle struct {
	JobID string
}

// JobResult 归一化后的异步结果。
// ReferenceID 为我方实体UUID（视频或发布记录），JobID 为外部任务ID，二者至少有一个。
type JobResult struct {
	ReferenceID string `json:"reference_id"`
	JobID       string `json:"job_id"`
	Success     bool   `json:"success"`
	ResultURL   string `json:"result_url,omitempty"`
	PublicID    string `json:"public_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
	// Pending 表示外部任务仍在处理，只用于轮询结果
	Pending bool `json:"-"`
}

// Succeeded 成功结果
func Succeeded(jobID, resultURL string) *JobResult {
	return &JobResult{JobID: jobID, Success: true, ResultURL: resultURL}
}

// Failed 失败结果，原因为空时填充默认值
func Failed(jobID, reason string) *JobResult {
	if strings.TrimSpace(reason) == "" {
		reason = "provider reported failure"
	}
	return &JobResult{JobID: jobID, Success: false, Reason: reason}
}

// StillRunning 轮询时外部任务尚未结束
func StillRunning(jobID string) *JobResult {
	return &JobResult{JobID: jobID, Pending: true}
}
