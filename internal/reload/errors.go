package reload

import "fmt"

// Error reports a reload whose new module could not be bound. The previous
// module stays active.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("reload %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
