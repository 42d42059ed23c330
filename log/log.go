package log

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Fatal(format string, args ...interface{})
}

type defaultLogger struct {
	info *color.Color
	warn *color.Color
	fail *color.Color
}

func NewDefaultLogger() Logger {
	return &defaultLogger{
		info: color.New(color.FgHiCyan),
		warn: color.New(color.FgHiYellow),
		fail: color.New(color.FgHiRed, color.Bold),
	}
}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	l.print(l.info, "INFO", format, args...)
}

func (l *defaultLogger) Warn(format string, args ...interface{}) {
	l.print(l.warn, "WARN", format, args...)
}

func (l *defaultLogger) Fatal(format string, args ...interface{}) {
	l.print(l.fail, "FATAL", format, args...)
	os.Exit(1)
}

func (l *defaultLogger) print(c *color.Color, level, format string, args ...interface{}) {
	_, _ = c.Fprintf(os.Stderr, "%s  %-5s  %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		level,
		fmt.Sprintf(format, args...))
}
