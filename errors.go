// Completion: 100% - Error handling complete, clear and helpful messages
package main

import (
	"fmt"
	"strings"
)

// ErrorLevel indicates the severity of an error
type ErrorLevel int

const (
	LevelWarning ErrorLevel = iota
	LevelError
	LevelFatal
)

func (l ErrorLevel) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal error"
	default:
		return "unknown"
	}
}

// ErrorCode identifies the kind of compilation failure. Every code is
// terminal for the statement that raised it; warnings use CodeNone.
type ErrorCode int

const (
	CodeNone ErrorCode = iota
	ErrUndefinedVariable
	ErrUndefinedConstant
	ErrRedefinedWithDifferentType
	ErrImportedWithDifferentType
	ErrAlreadyDefinedAsConstant
	ErrCannotCast
	ErrCannotCompare
	ErrArraySizeMismatch
	ErrUnsupportedOperationForType
	ErrBufferSizeMismatch
	ErrSyntax
	ErrConfig
	ErrOutOfMemory
)

func (c ErrorCode) String() string {
	switch c {
	case ErrUndefinedVariable:
		return "undefined variable"
	case ErrUndefinedConstant:
		return "undefined constant"
	case ErrRedefinedWithDifferentType:
		return "redefined with different type"
	case ErrImportedWithDifferentType:
		return "imported with different type"
	case ErrAlreadyDefinedAsConstant:
		return "already defined as constant"
	case ErrCannotCast:
		return "cannot cast"
	case ErrCannotCompare:
		return "cannot compare"
	case ErrArraySizeMismatch:
		return "array size mismatch"
	case ErrUnsupportedOperationForType:
		return "unsupported operation for type"
	case ErrBufferSizeMismatch:
		return "buffer size mismatch"
	case ErrSyntax:
		return "syntax error"
	case ErrConfig:
		return "configuration error"
	case ErrOutOfMemory:
		return "out of target memory"
	default:
		return "unknown"
	}
}

// SourceLocation represents a position in source code
type SourceLocation struct {
	File string
	Line int
}

func (loc SourceLocation) String() string {
	if loc.File == "" {
		return fmt.Sprintf("line %d", loc.Line)
	}
	return fmt.Sprintf("%s:%d", loc.File, loc.Line)
}

// CompilerError represents a single compilation error or warning
type CompilerError struct {
	Level    ErrorLevel
	Code     ErrorCode
	Message  string
	Location SourceLocation
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	if e.Location.Line > 0 {
		return fmt.Sprintf("%s: %s: %s", e.Location, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Format returns a formatted message, optionally with ANSI colors
func (e *CompilerError) Format(useColor bool) string {
	var sb strings.Builder
	if useColor {
		if e.Level == LevelWarning {
			sb.WriteString("\033[1;33m")
		} else {
			sb.WriteString("\033[1;31m")
		}
	}
	sb.WriteString(e.Level.String())
	sb.WriteString(": ")
	if useColor {
		sb.WriteString("\033[0m")
	}
	sb.WriteString(e.Message)
	if e.Location.Line > 0 {
		sb.WriteString("\n  --> ")
		sb.WriteString(e.Location.String())
	}
	return sb.String()
}

// compileErr builds a fatal CompilerError for the given code.
func compileErr(code ErrorCode, format string, args ...interface{}) *CompilerError {
	return &CompilerError{
		Level:   LevelError,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorIs reports whether err is a *CompilerError carrying the given code.
func ErrorIs(err error, code ErrorCode) bool {
	ce, ok := err.(*CompilerError)
	return ok && ce.Code == code
}

// WarningSink collects non-fatal diagnostics (bit-width narrowing,
// cross-width comparison) raised while coercion code is emitted.
type WarningSink struct {
	warnings []*CompilerError
}

// Warnf records a warning.
func (ws *WarningSink) Warnf(format string, args ...interface{}) {
	ws.warnings = append(ws.warnings, &CompilerError{
		Level:   LevelWarning,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnings returns all collected warnings in order.
func (ws *WarningSink) Warnings() []*CompilerError {
	return ws.warnings
}

// Count returns the number of collected warnings.
func (ws *WarningSink) Count() int {
	return len(ws.warnings)
}

// Reset drops all collected warnings.
func (ws *WarningSink) Reset() {
	ws.warnings = ws.warnings[:0]
}
