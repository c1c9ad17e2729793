package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/lower"
	"cinder/compiler-go/pkg/syntax"
)

const (
	replHistoryFile = ".cinder_history"
	replPromptMain  = "cinder> "
	replPromptCont  = "   ...> "
)

func runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "cinder repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	fmt.Println(cliToolVersion)
	fmt.Println("Enter surface forms as JSON nodes. Type :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, replHistoryFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	engine := lower.New()
	scope := lower.NewScope("repl")

	for {
		input, ok := readForm(ln, replPromptMain, replPromptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":scope":
				fmt.Printf("module=%q function=%q counter=%d scheduled=%v\n",
					scope.Module, scope.Function, scope.Counter, scope.Scheduled)
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		form, err := syntax.DecodeForm([]byte(trimmed))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		node, out, err := engine.Lower(form, scope)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		scope = out
		fmt.Println(core.Render(node))
		ln.AppendHistory(strings.ReplaceAll(trimmed, "\n", " "))
	}
}

// readForm accumulates prompt lines until the buffer holds a complete JSON
// node, switching to the continuation prompt for unterminated input.
func readForm(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		trimmed := strings.TrimSpace(src)
		if trimmed == "" || strings.HasPrefix(trimmed, ":") {
			return src, true
		}
		if balancedBraces(trimmed) {
			return src, true
		}
	}
}

func balancedBraces(src string) bool {
	depth := 0
	inString := false
	escaped := false
	for _, r := range src {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		}
	}
	return depth <= 0
}
