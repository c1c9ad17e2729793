package lower

import (
	"errors"
	"fmt"
)

var errMissingBlock = errors.New("missing do block")

// SyntaxError is the single error kind raised by the lowering engine: a
// construct is malformed or illegal in its lexical position. It is fatal to
// the current top-level form; the outer driver decides whether to report and
// continue with the next form.
type SyntaxError struct {
	Line    int
	File    string
	Message string
	Token   string
}

func (e *SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Message, e.Token)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

func syntaxErrorf(line int, file, token, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Line:    line,
		File:    file,
		Message: fmt.Sprintf(format, args...),
		Token:   token,
	}
}
