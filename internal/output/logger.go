// Package output provides colored terminal logging.
package output

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

// Logger defines the interface for colored terminal output
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	ChannelMessage(channel, nick, message string)
	PrivateMessage(nick, message string)
}

// ColorLogger implements Logger with colored terminal output. Debug lines
// are printed only when verbose is set.
type ColorLogger struct {
	verbose      bool
	debugColor   *color.Color
	infoColor    *color.Color
	successColor *color.Color
	warningColor *color.Color
	errorColor   *color.Color
	channelColor *color.Color
	pmColor      *color.Color
	nickColor    *color.Color
}

// NewColorLogger creates a new ColorLogger with the default color scheme
func NewColorLogger(verbose bool) *ColorLogger {
	return &ColorLogger{
		verbose:      verbose,
		debugColor:   color.New(color.FgWhite),
		infoColor:    color.New(color.FgCyan),
		successColor: color.New(color.FgGreen, color.Bold),
		warningColor: color.New(color.FgYellow, color.Bold),
		errorColor:   color.New(color.FgRed, color.Bold),
		channelColor: color.New(color.FgBlue, color.Bold),
		pmColor:      color.New(color.FgMagenta, color.Bold),
		nickColor:    color.New(color.FgGreen),
	}
}

func stamp() string {
	return time.Now().Format("15:04:05")
}

// Debug prints a debug message when verbose logging is enabled
func (l *ColorLogger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	_, _ = l.debugColor.Printf("[%s] DEBUG: %s\n", stamp(), fmt.Sprintf(format, args...))
}

// Info prints an informational message in cyan
func (l *ColorLogger) Info(format string, args ...interface{}) {
	_, _ = l.infoColor.Printf("[%s] INFO: %s\n", stamp(), fmt.Sprintf(format, args...))
}

// Success prints a success message in bold green
func (l *ColorLogger) Success(format string, args ...interface{}) {
	_, _ = l.successColor.Printf("[%s] SUCCESS: %s\n", stamp(), fmt.Sprintf(format, args...))
}

// Warning prints a warning message in bold yellow
func (l *ColorLogger) Warning(format string, args ...interface{}) {
	_, _ = l.warningColor.Printf("[%s] WARNING: %s\n", stamp(), fmt.Sprintf(format, args...))
}

// Error prints an error message in bold red
func (l *ColorLogger) Error(format string, args ...interface{}) {
	_, _ = l.errorColor.Printf("[%s] ERROR: %s\n", stamp(), fmt.Sprintf(format, args...))
}

// ChannelMessage prints a channel message with color-coded formatting
// Format: [HH:MM:SS] #channel <nick> message
func (l *ColorLogger) ChannelMessage(channel, nick, message string) {
	fmt.Printf("[%s] ", stamp())
	_, _ = l.channelColor.Printf("%s ", channel)
	_, _ = l.nickColor.Printf("<%s> ", nick)
	fmt.Printf("%s\n", message)
}

// PrivateMessage prints a private message with distinct color formatting
func (l *ColorLogger) PrivateMessage(nick, message string) {
	fmt.Printf("[%s] ", stamp())
	_, _ = l.pmColor.Printf("PM from ")
	_, _ = l.nickColor.Printf("%s: ", nick)
	fmt.Printf("%s\n", message)
}

// Nop is a Logger that discards everything. Used in tests.
type Nop struct{}

func (Nop) Debug(string, ...interface{})   {}
func (Nop) Info(string, ...interface{})    {}
func (Nop) Success(string, ...interface{}) {}
func (Nop) Warning(string, ...interface{}) {}
func (Nop) Error(string, ...interface{})   {}
func (Nop) ChannelMessage(_, _, _ string)  {}
func (Nop) PrivateMessage(_, _ string)     {}
