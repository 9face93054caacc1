package errno

import (
	"errors"
	"fmt"
)

// code=0 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// 业务错误码
	ErrUserUUIDRequired  = &Errno{Code: 20013, Message: "User UUID is required"}
	ErrVideoUUIDRequired = &Errno{Code: 20014, Message: "Video UUID is required"}
	ErrBatchUUIDRequired = &Errno{Code: 20015, Message: "Batch UUID is required"}
	ErrPostUUIDRequired  = &Errno{Code: 20016, Message: "Post UUID is required"}
	ErrEmptyBatch        = &Errno{Code: 20017, Message: "Batch must contain at least one item"}
	ErrBatchTooLarge     = &Errno{Code: 20018, Message: "Batch exceeds the maximum item count"}
	ErrUnknownProvider   = &Errno{Code: 20019, Message: "Unknown provider type"}
	ErrAccountRequired   = &Errno{Code: 20020, Message: "Target account is required"}

	// 状态机错误码
	ErrVideoNotFound     = &Errno{Code: 20101, Message: "Video not found"}
	ErrBatchNotFound     = &Errno{Code: 20102, Message: "Batch not found"}
	ErrPostNotFound      = &Errno{Code: 20103, Message: "Post not found"}
	ErrItemNotFound      = &Errno{Code: 20104, Message: "Batch item not found"}
	ErrInvalidTransition = &Errno{Code: 20110, Message: "Invalid status transition"}
	ErrInvalidState      = &Errno{Code: 20111, Message: "Invalid state for this operation"}

	// 外部服务错误码
	ErrAdapter         = &Errno{Code: 20201, Message: "Provider rejected the request"}
	ErrAdapterTimeout  = &Errno{Code: 20202, Message: "Provider request timed out"}
	ErrProviderFailure = &Errno{Code: 20203, Message: "Provider reported a failure"}
)

// BizError 业务错误，携带错误码和底层原因
type BizError struct {
	errno *Errno
	cause error
}

// NewBizError 包装底层错误
func NewBizError(e *Errno, cause error) *BizError {
	return &BizError{errno: e, cause: cause}
}

// Errorf 按格式构造带错误码的业务错误
func Errorf(e *Errno, format string, args ...interface{}) *BizError {
	return &BizError{errno: e, cause: fmt.Errorf(format, args...)}
}

func (e *BizError) Error() string {
	if e.cause == nil {
		return e.errno.Message
	}
	return e.errno.Message + ": " + e.cause.Error()
}

// Unwrap 同时暴露错误码和原因，errors.Is 对两者都生效
func (e *BizError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.errno}
	}
	return []error{e.errno, e.cause}
}

// Errno 返回错误码
func (e *BizError) Errno() *Errno {
	return e.errno
}

// Cause 返回底层原因
func (e *BizError) Cause() error {
	return e.cause
}

// Decode 从任意错误中取出错误码，未知错误返回 ErrInternalServer
func Decode(err error) *Errno {
	if err == nil {
		return OK
	}
	var biz *BizError
	if errors.As(err, &biz) {
		return biz.errno
	}
	var e *Errno
	if errors.As(err, &e) {
		return e
	}
	return ErrInternalServer
}

// IsClientError 判断是否为客户端可见的4xx类错误
func IsClientError(e *Errno) bool {
	switch {
	case e == nil:
		return false
	case e.Code >= 400 && e.Code < 500:
		return true
	case e.Code >= 20000 && e.Code < 20200:
		return true
	default:
		return false
	}
}
