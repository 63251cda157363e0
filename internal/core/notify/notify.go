// Package notify defines user-facing notice types shared by the event bus
// router and the TUI toast stack.
package notify

import "time"

// Level represents the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a single transient user-facing message.
type Notice struct {
	Level     Level
	Message   string
	CreatedAt time.Time
}

// New builds a notice stamped with the current time.
func New(level Level, message string) Notice {
	return Notice{Level: level, Message: message, CreatedAt: time.Now()}
}
