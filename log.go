package shellauth

import (
	"fmt"
	"log/slog"
)

// Info logs through the default slog logger, accepting a leading value of any
// type as the message the way the legacy logger did.
func Info(args ...any) {
	if len(args) == 0 {
		slog.Info("")
		return
	}
	msg := stringify(args[0])
	slog.Info(msg, args[1:]...)
}

func stringify(input any) string {
	if str, ok := input.(string); ok {
		return str
	}
	if stringer, ok := input.(fmt.Stringer); ok {
		return stringer.String()
	}
	return fmt.Sprintf("%v", input)
}
