package concurrency

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	spErrors "github.com/harunnryd/studioport/internal/errors"
)

// SafeCall runs fn and turns a panic into an error wrapping ErrInternal.
func SafeCall(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovered", "task", name, "panic", r, "stack", string(debug.Stack()))
			err = spErrors.Internal(fmt.Sprintf("%s panicked: %v", name, r))
		}
	}()
	return fn()
}
