package service

import (
	"errors"
	"fmt"
)

// ErrDocumentNotFound 文档不存在.
var ErrDocumentNotFound = errors.New("document not found")

// ValidationError 请求内容不合法，Msg 可直接返回给调用方.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ConflictError 内容相同的文档已存在，DocumentID 为已有文档的 id.
type ConflictError struct {
	DocumentID uint
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("document already exists: %d", e.DocumentID)
}

// StorageError 存储层失败，Err 只用于日志.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
