// Package diag renders the compiler's diagnostics: file:line:col-tagged
// errors and warnings with a source-line-and-caret rendering of the
// offending token.
package diag

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/srclang/srcc/pkg/token"
)

var (
	errorTag = color.New(color.FgRed, color.Bold).SprintFunc()
	warnTag  = color.New(color.FgYellow, color.Bold).SprintFunc()
	caretClr = color.New(color.FgGreen).SprintFunc()
)

// SourceFile records a file's name and content for caret-rendering.
type SourceFile struct {
	Name    string
	Content []rune
}

var sourceFiles []SourceFile

// SetSourceFiles installs the set of source files used to resolve
// Token.FileIndex into a filename and to render source lines.
func SetSourceFiles(files []SourceFile) { sourceFiles = files }

func findFileAndLine(tok token.Token) (filename string, line, col int) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) {
		return "<unknown>", tok.Line, tok.Column
	}
	return sourceFiles[tok.FileIndex].Name, tok.Line, tok.Column
}

func printSourceLine(w *os.File, tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) || tok.Line == 0 {
		return
	}
	content := sourceFiles[tok.FileIndex].Content
	lineNum := tok.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}
	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}
	fmt.Fprintf(w, "  %s\n", string(content[lineStart:lineEnd]))
	caret := caretClr("^" + strings.Repeat("~", maxInt(tok.Len-1, 0)))
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", maxInt(tok.Column-1, 0)), caret)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Error prints a formatted error message tagged to tok's source
// position and terminates the process with a non-zero exit status.
// Per the system's error model, no diagnostic is recoverable.
func Error(tok token.Token, format string, args ...interface{}) {
	filename, line, col := findFileAndLine(tok)
	fmt.Fprintf(os.Stderr, "%s:%d:%d: %s ", filename, line, col, errorTag("error:"))
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	printSourceLine(os.Stderr, tok)
	os.Exit(1)
}

// Warn prints a formatted warning message tagged to tok's source
// position. Execution continues.
func Warn(tok token.Token, format string, args ...interface{}) {
	filename, line, col := findFileAndLine(tok)
	fmt.Fprintf(os.Stderr, "%s:%d:%d: %s ", filename, line, col, warnTag("warning:"))
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	printSourceLine(os.Stderr, tok)
}

// Fatal prints a diagnostic with no source position (usage/internal
// errors) and terminates the process with a non-zero exit status.
func Fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "srcc: %s ", errorTag("error:"))
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}
