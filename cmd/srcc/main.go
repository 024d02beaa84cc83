// Command srcc is the SrcLang compiler driver: it sequences
// lex → parse → fold → lower → (IR text | assembly) → write, per
// spec.md §4.9.
package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/srclang/srcc/pkg/ast"
	"github.com/srclang/srcc/pkg/cli"
	"github.com/srclang/srcc/pkg/config"
	"github.com/srclang/srcc/pkg/diag"
	"github.com/srclang/srcc/pkg/irgen"
	"github.com/srclang/srcc/pkg/lexer"
	"github.com/srclang/srcc/pkg/parser"
	"github.com/srclang/srcc/pkg/rawir"
	"github.com/srclang/srcc/pkg/riscv"
	"github.com/srclang/srcc/pkg/token"
)

func main() {
	res, ok, err := cli.Parse(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}
	if !ok {
		return
	}
	compile(res.Cfg)
}

func compile(cfg *config.Config) {
	content := readSource(cfg.Input)
	diag.SetSourceFiles([]diag.SourceFile{{Name: cfg.Input, Content: content}})

	toks := tokenize(content)
	p := parser.NewParser(toks)
	root := p.Parse()
	root = ast.FoldConstants(root)

	irText := irgen.LowerProgram(root)

	var output string
	switch cfg.Mode {
	case config.ModeKoopa:
		output = irText
	case config.ModeRISCV:
		output = assembleFromIRText(irText)
	}

	writeAtomic(cfg.Output, output)
}

func tokenize(content []rune) []token.Token {
	lx := lexer.NewLexer(content, 0)
	var toks []token.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}
	return toks
}

// assembleFromIRText hands the lowered IR text to the raw-IR parser and
// walks the resulting handle with the target generator, releasing the
// handle as soon as the walk is done (spec.md §5).
func assembleFromIRText(irText string) string {
	handle, err := rawir.Parse(irText)
	if err != nil {
		diag.Fatal("internal: re-parsing emitted IR text failed: %s", err.Error())
	}
	defer handle.Release()
	return riscv.Generate(handle.RawProgramView())
}

func readSource(path string) []rune {
	f, err := os.Open(path)
	if err != nil {
		diag.Fatal("could not open input file '%s': %s", path, err.Error())
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		diag.Fatal("could not read input file '%s': %s", path, err.Error())
	}
	return []rune(string(content))
}

// writeAtomic stages content to a temp file in the output directory and
// renames it into place, so a failure never leaves a partial file
// (spec.md §7).
func writeAtomic(path, content string) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".srcc-tmp-*")
	if err != nil {
		diag.Fatal("could not create output file: %s", err.Error())
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		diag.Fatal("could not write output file: %s", err.Error())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		diag.Fatal("could not write output file: %s", err.Error())
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		diag.Fatal("could not finalize output file: %s", err.Error())
	}
}
