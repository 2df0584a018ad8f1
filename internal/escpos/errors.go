// internal/escpos/errors.go
package escpos

import "errors"

// Caller input errors. Nothing is emitted when one of these is returned.
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrUnsupportedCommand     = &childError{msg: "command not supported by dialect", parent: ErrInvalidArgument}
	ErrImageTooWide           = errors.New("image wider than print head")
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
	ErrEmptyImage             = errors.New("empty image")
)

// childError matches both itself and its parent with errors.Is.
type childError struct {
	msg    string
	parent error
}

func (e *childError) Error() string { return e.msg }
func (e *childError) Unwrap() error { return e.parent }
