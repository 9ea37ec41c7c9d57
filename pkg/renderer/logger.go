package renderer

import (
	"fmt"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout, grounded on
// the teacher's renderer.DefaultLogger.
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a stdout logger.
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// NullLogger implements core.Logger by discarding every record, for
// embedding use (spec.md section 9's "a library caller may pass a no-op
// logger") and for tests that don't want render progress on stdout.
type NullLogger struct{}

func (nl *NullLogger) Printf(format string, args ...interface{}) {}

// NewNullLogger creates a logger that discards everything.
func NewNullLogger() core.Logger {
	return &NullLogger{}
}
