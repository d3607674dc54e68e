package encoding

import "errors"

var (
	ErrCorrupt       = errors.New("encoding: corrupt stream")
	ErrNotPointer    = errors.New("encoding: decode target must be a non-nil pointer")
	ErrFrameTooLarge = errors.New("encoding: frame too large")
)
