// Package cli parses the compiler's fixed command-line grammar:
//
//	compiler <mode> <input> -o <output>
//	mode ::= -koopa | -riscv | -perf
//
// and renders usage/help text wrapped to the terminal width.
package cli

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/srclang/srcc/pkg/config"
)

const progName = "srcc"

// ParseResult is the outcome of a successful Parse.
type ParseResult struct {
	Cfg *config.Config
}

// Parse interprets arguments per the grammar above. On a usage error it
// prints a diagnostic plus the usage page to stderr and returns a
// non-nil error; the caller should exit non-zero. If -h/--help is
// present anywhere, the help page is printed and ok is false with a nil
// error, signalling a clean, zero-status exit.
func Parse(args []string) (res *ParseResult, ok bool, err error) {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			printHelp(os.Stdout)
			return nil, false, nil
		}
	}

	var mode *config.Mode
	var input, output string

	i := 0
	for i < len(args) {
		switch args[i] {
		case "-koopa":
			m := config.ModeKoopa
			mode = &m
			i++
		case "-riscv", "-perf":
			m := config.ModeRISCV
			mode = &m
			i++
		case "-o":
			if i+1 >= len(args) {
				return nil, false, usageErr("-o requires an argument")
			}
			output = args[i+1]
			i += 2
		default:
			if strings.HasPrefix(args[i], "-") {
				return nil, false, usageErr("unrecognized argument '%s'", args[i])
			}
			if input != "" {
				return nil, false, usageErr("multiple input files given")
			}
			input = args[i]
			i++
		}
	}

	if mode == nil {
		return nil, false, usageErr("missing mode (-koopa | -riscv | -perf)")
	}
	if input == "" {
		return nil, false, usageErr("missing input file")
	}
	if output == "" {
		return nil, false, usageErr("missing output file (-o <output>)")
	}

	cfg := config.NewConfig()
	cfg.Mode = *mode
	cfg.Input = input
	cfg.Output = output
	return &ParseResult{Cfg: cfg}, true, nil
}

func usageErr(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s: error: %s\n", progName, msg)
	printUsage(os.Stderr)
	return fmt.Errorf("%s", msg)
}

func printUsage(w *os.File) {
	fmt.Fprintf(w, "Usage: %s -koopa|-riscv|-perf <input> -o <output>\n", progName)
	fmt.Fprintf(w, "Run '%s -h' for more information.\n", progName)
}

func printHelp(w *os.File) {
	width := 80
	if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols >= 20 {
		width = cols
	}
	var sb strings.Builder

	fmt.Fprintf(&sb, "Usage: %s <mode> <input> -o <output>\n\n", progName)
	sb.WriteString("Modes\n")
	for _, line := range []string{
		"-koopa  write the intermediate representation as text",
		"-riscv  write RISC-V 32-bit assembly",
		"-perf   alias for -riscv",
	} {
		writeWrapped(&sb, "  ", line, width)
	}
	sb.WriteString("\nOptions\n")
	writeWrapped(&sb, "  ", "-o <output>  destination file", width)
	writeWrapped(&sb, "  ", "-h, --help   show this help and exit", width)
	fmt.Fprint(w, sb.String())
}

func writeWrapped(sb *strings.Builder, indent, text string, width int) {
	avail := width - len(indent)
	if avail < 10 {
		avail = 10
	}
	for _, line := range wrapText(text, avail) {
		fmt.Fprintf(sb, "%s%s\n", indent, line)
	}
}

// wrapText greedily packs words onto lines no wider than maxWidth,
// growing each line in place rather than tracking a separate length
// counter.
func wrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := []string{words[0]}
	for _, word := range words[1:] {
		last := len(lines) - 1
		if len(lines[last])+1+len(word) > maxWidth {
			lines = append(lines, word)
			continue
		}
		lines[last] = lines[last] + " " + word
	}
	return lines
}
