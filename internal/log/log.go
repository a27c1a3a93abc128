// Copyright 2024 The cauchy Authors
// This file is part of the cauchy library.
//
// The cauchy library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cauchy library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cauchy library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides leveled, structured logging for the cauchy node:
// a global logger with key/value pairs, a colorized terminal handler and
// a plain handler for redirected output.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a logging severity.
type Level int

const (
	LvlCrit Level = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Level) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	case LvlTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

var levelColor = map[Level]*color.Color{
	LvlCrit:  color.New(color.FgHiRed, color.Bold),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgWhite),
}

// Logger emits leveled records carrying a fixed set of context fields.
type Logger struct {
	ctx []interface{}
}

// Record is one emitted log line.
type Record struct {
	Time  time.Time
	Lvl   Level
	Msg   string
	Ctx   []interface{}
	Call  stack.Call
}

var (
	mu         sync.Mutex
	root       = &Logger{}
	out        io.Writer = colorable.NewColorableStdout()
	useColor             = isatty.IsTerminal(os.Stdout.Fd())
	minLevel             = LvlInfo
)

// SetOutput redirects all log output; color is disabled for non-tty writers.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	if w != colorable.NewColorableStdout() {
		useColor = false
	}
}

// SetLevel sets the minimum emitted level.
func SetLevel(lvl Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = lvl
}

// New returns a Logger carrying the given key/value context in addition to
// the root logger's.
func New(ctx ...interface{}) *Logger {
	return &Logger{ctx: ctx}
}

func (l *Logger) write(lvl Level, msg string, ctx []interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if lvl > minLevel {
		return
	}
	call := stack.Caller(2)
	line := formatRecord(Record{Time: time.Now(), Lvl: lvl, Msg: msg, Ctx: append(append([]interface{}{}, l.ctx...), ctx...), Call: call})
	fmt.Fprintln(out, line)
}

func formatRecord(r Record) string {
	lvl := r.Lvl.String()
	if useColor {
		if c, ok := levelColor[r.Lvl]; ok {
			lvl = c.Sprint(r.Lvl.String())
		}
	}
	line := fmt.Sprintf("%s [%s] %s", r.Time.Format("01-02|15:04:05.000"), lvl, r.Msg)
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		line += fmt.Sprintf(" %v=%v", r.Ctx[i], r.Ctx[i+1])
	}
	if r.Lvl <= LvlError {
		line += fmt.Sprintf(" (%v)", r.Call)
	}
	return line
}

func (l *Logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx); os.Exit(1) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *Logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }

// New returns a child logger with additional context appended.
func (l *Logger) New(ctx ...interface{}) *Logger {
	return &Logger{ctx: append(append([]interface{}{}, l.ctx...), ctx...)}
}

// Package-level convenience wrappers against the root logger.
func Crit(msg string, ctx ...interface{})  { root.write(LvlCrit, msg, ctx); os.Exit(1) }
func Error(msg string, ctx ...interface{}) { root.write(LvlError, msg, ctx) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
