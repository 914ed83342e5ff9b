// Package clipboard адаптер системного буфера обмена.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported в системе нет утилиты для работы с буфером обмена.
var ErrUnsupported = errors.New("system clipboard is not supported")

// System пишет в системный буфер обмена через xclip/xsel/pbcopy/clip.exe.
type System struct{}

// New возвращает адаптер системного буфера обмена.
func New() *System {
	return &System{}
}

// WriteAll записывает text в буфер обмена.
func (s *System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}
