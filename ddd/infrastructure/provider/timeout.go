package provider

import (
	"context"
	"errors"
	"net"
)

// contextError 识别超时类错误，包括 http.Client 自身的超时
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return context.DeadlineExceeded
	}
	return nil
}
