package gateway

import "context"

// DispatchLocker 同一批量任务的补位派发互斥
type DispatchLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
