package persistence

import (
	"errors"

	"gorm.io/gorm"

	"videogen-service/pkg/errno"
)

// wrapErr 把gorm错误转换为业务错误
func wrapErr(err error, notFound *errno.Errno) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return errno.NewBizError(errno.ErrDatabase, err)
}
