package form

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput пустой ввод.
	ErrEmptyInput = errors.New("empty OpenAPI URL")
	// ErrInvalidURL ввод не является http(s) URL.
	ErrInvalidURL = errors.New("invalid http(s) URL")
	// ErrBusy предыдущий запрос ещё выполняется.
	ErrBusy = errors.New("a request is already in progress")
)

// ClipboardError ошибка записи в буфер обмена.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("copy failed: %v", e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}
