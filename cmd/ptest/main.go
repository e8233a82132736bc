// ptest is the golden-file harness for the assembler: it runs pasm over a
// corpus of .s files, records the exit status, stderr and a hash of the
// produced object into a JSON golden file per source, and on later runs
// diffs the fresh results against the goldens.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
)

type Execution struct {
	ExitCode   int    `json:"exitCode"`
	Stderr     string `json:"stderr,omitempty"`
	ObjectHash string `json:"object_hash,omitempty"`
	ObjectSize int    `json:"object_size,omitempty"`
}

var (
	assembler = flag.String("assembler", "./pasm", "Path to the assembler binary to test.")
	asmArgs   = flag.String("asm-args", "", "Extra arguments for the assembler (space-separated).")
	testFiles = flag.String("test-files", "tests/*.s", "Glob pattern(s) for files to test (space-separated).")
	jsonDir   = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to source file dir).")
	update    = flag.Bool("update", false, "Rewrite golden files from the current results.")
	verbose   = flag.Bool("v", false, "Enable verbose logging.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	tempDir, err := os.MkdirTemp("", "ptest-*")
	if err != nil {
		log.Fatalf("%s[ERROR]%s Failed to create temp directory: %v\n", cRed, cNone, err)
	}
	defer os.RemoveAll(tempDir)

	var files []string
	for _, pattern := range strings.Fields(*testFiles) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			log.Fatalf("%s[ERROR]%s Bad glob pattern '%s': %v\n", cRed, cNone, pattern, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		log.Fatalf("%s[ERROR]%s No test files matched '%s'\n", cRed, cNone, *testFiles)
	}

	failed := 0
	for _, file := range files {
		if runOne(file, tempDir) {
			fmt.Printf("%s[PASS]%s %s\n", cGreen, cNone, file)
		} else {
			failed++
		}
	}

	if failed > 0 {
		log.Fatalf("%s[FAIL]%s %d of %d tests failed\n", cRed, cNone, failed, len(files))
	}
	fmt.Printf("%s[OK]%s %d tests passed\n", cGreen, cNone, len(files))
}

func runOne(file, tempDir string) bool {
	result, err := assembleFile(file, tempDir)
	if err != nil {
		log.Printf("%s[ERROR]%s %s: %v\n", cRed, cNone, file, err)
		return false
	}

	goldenPath := getJSONPath(file)
	if *update {
		if err := writeGolden(goldenPath, result); err != nil {
			log.Printf("%s[ERROR]%s %s: %v\n", cRed, cNone, file, err)
			return false
		}
		if *verbose {
			log.Printf("updated %s", goldenPath)
		}
		return true
	}

	golden, err := readGolden(goldenPath)
	if err != nil {
		log.Printf("%s[SKIP]%s %s: no golden file (run with -update): %v\n", cYellow, cNone, file, err)
		return false
	}

	if diff := cmp.Diff(golden, result); diff != "" {
		log.Printf("%s[FAIL]%s %s: result mismatch (-golden +got):\n%s\n", cRed, cNone, file, diff)
		return false
	}
	return true
}

func assembleFile(file, tempDir string) (*Execution, error) {
	objPath := filepath.Join(tempDir, filepath.Base(file)+".o")
	args := append(strings.Fields(*asmArgs), "-o", objPath, file)

	cmd := exec.Command(*assembler, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("failed to run assembler: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	result := &Execution{ExitCode: exitCode, Stderr: stderr.String()}
	if exitCode == 0 {
		obj, err := os.ReadFile(objPath)
		if err != nil {
			return nil, fmt.Errorf("assembler reported success but wrote no object: %w", err)
		}
		result.ObjectHash = fmt.Sprintf("%016x", xxhash.Sum64(obj))
		result.ObjectSize = len(obj)
	}
	return result, nil
}

func getJSONPath(sourceFile string) string {
	jsonFileName := "." + filepath.Base(sourceFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, jsonFileName)
	}
	return filepath.Join(filepath.Dir(sourceFile), jsonFileName)
}

func writeGolden(path string, result *Execution) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func readGolden(path string) (*Execution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var result Execution
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
