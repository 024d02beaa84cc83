// Command srcc-test is the golden/regression harness: it compiles a
// directory of .src fixtures in both -koopa and -riscv modes and
// compares the output against checked-in golden files, modelled on
// the teacher's cmd/gtest.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
)

var (
	compiler   = flag.String("compiler", "./srcc", "Path to the srcc compiler binary.")
	fixtures   = flag.String("fixtures", "testdata/*.src", "Glob pattern for fixture source files.")
	goldenDir  = flag.String("golden-dir", "testdata/golden", "Directory holding golden output files.")
	updateFlag = flag.Bool("update", false, "Write fresh golden files instead of comparing against them.")
	jobs       = flag.Int("j", 4, "Number of parallel fixtures to run.")
	verbose    = flag.Bool("v", false, "Enable verbose logging.")
)

const (
	cRed   = "\x1b[91m"
	cGreen = "\x1b[92m"
	cYellow = "\x1b[93m"
	cNone  = "\x1b[0m"
)

// modes are the two backends each fixture is run through.
var modes = []string{"-koopa", "-riscv"}

type fixtureResult struct {
	file    string
	status  string // PASS, FAIL, MISSING, ERROR
	message string
	diff    string
}

func main() {
	flag.Parse()
	log.SetFlags(0)

	files, err := filepath.Glob(*fixtures)
	if err != nil {
		log.Fatalf("%s[ERROR]%s bad glob pattern %q: %v\n", cRed, cNone, *fixtures, err)
	}
	if len(files) == 0 {
		log.Println("no fixtures matched the given pattern")
		return
	}
	sort.Strings(files)

	if err := os.MkdirAll(*goldenDir, 0755); err != nil {
		log.Fatalf("%s[ERROR]%s could not create golden dir %q: %v\n", cRed, cNone, *goldenDir, err)
	}

	tempDir, err := os.MkdirTemp("", "srcc-test-*")
	if err != nil {
		log.Fatalf("%s[ERROR]%s could not create temp dir: %v\n", cRed, cNone, err)
	}
	defer os.RemoveAll(tempDir)

	tasks := make(chan string, len(files))
	results := make(chan fixtureResult, len(files))
	var wg sync.WaitGroup
	for i := 0; i < *jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range tasks {
				results <- runFixture(f, tempDir)
			}
		}()
	}
	for _, f := range files {
		tasks <- f
	}
	close(tasks)
	wg.Wait()
	close(results)

	var all []fixtureResult
	for r := range results {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].file < all[j].file })

	printSummary(all)

	if hasFailures(all) {
		os.Exit(1)
	}
}

// runFixture compiles file in every mode and compares (or records)
// golden output. Every mode is compiled and compared on every run; the
// fixture hash only names the scratch output file.
func runFixture(file, tempDir string) fixtureResult {
	src, err := os.ReadFile(file)
	if err != nil {
		return fixtureResult{file: file, status: "ERROR", message: fmt.Sprintf("could not read fixture: %v", err)}
	}

	var diffs strings.Builder
	status := "PASS"

	for _, mode := range modes {
		goldenPath := goldenFileFor(file, mode)
		outPath := filepath.Join(tempDir, fixtureHash(file, src, mode)+modeExt(mode))

		cmd := exec.Command(*compiler, mode, file, "-o", outPath)
		var stderr strings.Builder
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			status = "FAIL"
			diffs.WriteString(fmt.Sprintf("mode %s: compile failed: %v\n%s\n", mode, err, stderr.String()))
			continue
		}

		got, err := os.ReadFile(outPath)
		if err != nil {
			status = "ERROR"
			diffs.WriteString(fmt.Sprintf("mode %s: could not read compiler output: %v\n", mode, err))
			continue
		}

		if *updateFlag {
			if err := os.WriteFile(goldenPath, got, 0644); err != nil {
				status = "ERROR"
				diffs.WriteString(fmt.Sprintf("mode %s: could not write golden file: %v\n", mode, err))
			}
			continue
		}

		want, err := os.ReadFile(goldenPath)
		if os.IsNotExist(err) {
			status = "MISSING"
			diffs.WriteString(fmt.Sprintf("mode %s: no golden file at %s\n", mode, goldenPath))
			continue
		}
		if err != nil {
			status = "ERROR"
			diffs.WriteString(fmt.Sprintf("mode %s: could not read golden file: %v\n", mode, err))
			continue
		}

		if string(got) != string(want) {
			status = "FAIL"
			diffs.WriteString(fmt.Sprintf("mode %s output mismatch:\n%s", mode, cmp.Diff(string(want), string(got))))
		}
	}

	if *updateFlag && status == "PASS" {
		return fixtureResult{file: file, status: "PASS", message: "golden files updated"}
	}

	msg := "all modes matched golden output"
	if status != "PASS" {
		msg = "see diff"
	}
	return fixtureResult{file: file, status: status, message: msg, diff: diffs.String()}
}

func goldenFileFor(file, mode string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return filepath.Join(*goldenDir, base+modeExt(mode))
}

func modeExt(mode string) string {
	if mode == "-koopa" {
		return ".koopa"
	}
	return ".s"
}

// fixtureHash content-hashes the fixture source together with its mode
// so two fixtures never race on the same scratch output path.
func fixtureHash(file string, src []byte, mode string) string {
	h := xxhash.New()
	io.WriteString(h, file)
	h.Write(src)
	io.WriteString(h, mode)
	return fmt.Sprintf("%x", h.Sum64())
}

func printSummary(results []fixtureResult) {
	var passed, failed, missing, errored int
	for _, r := range results {
		marker, color := "", cNone
		switch r.status {
		case "PASS":
			passed++
			marker, color = "PASS", cGreen
		case "FAIL":
			failed++
			marker, color = "FAIL", cRed
		case "MISSING":
			missing++
			marker, color = "MISSING", cYellow
		case "ERROR":
			errored++
			marker, color = "ERROR", cRed
		}
		fmt.Printf("[%s%s%s] %s: %s\n", color, marker, cNone, r.file, r.message)
		if *verbose && r.diff != "" {
			fmt.Println(r.diff)
		}
	}
	fmt.Printf("%d passed, %d failed, %d missing, %d errored, %d total\n",
		passed, failed, missing, errored, len(results))
}

func hasFailures(results []fixtureResult) bool {
	for _, r := range results {
		if r.status == "FAIL" || r.status == "MISSING" || r.status == "ERROR" {
			return true
		}
	}
	return false
}
