// Command vibeswift runs a single source file through the Engine API
// and prints its result: a flag-parsed entry point wrapping one
// reusable Engine instance.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chazu/vibeswift/engine"
	"github.com/chazu/vibeswift/internal/config"
	"github.com/chazu/vibeswift/internal/dump"
	"github.com/chazu/vibeswift/pkg/capability"
	"github.com/chazu/vibeswift/pkg/diag"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (limits + default capabilities)")
	dumpPath := flag.String("dump-bytecode", "", "Write a CBOR debug dump of the assembled program to PATH")
	capsFlag := flag.String("capabilities", "", "Comma-separated capability tags (overrides config defaults); e.g. foundation_basic,diagnostics")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vibeswift [options] <file>\n\n")
		fmt.Fprintf(os.Stderr, "Compiles and runs a single source file, printing its value and output.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vibeswift ./main.vsw\n")
		fmt.Fprintf(os.Stderr, "  vibeswift --capabilities foundation_basic,diagnostics ./main.vsw\n")
		fmt.Fprintf(os.Stderr, "  vibeswift --dump-bytecode ./main.cbor ./main.vsw\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	caps := cfg.DefaultCapabilities
	if *capsFlag != "" {
		parsed, err := parseCapabilityList(*capsFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		caps = parsed
	}

	e := engine.New(cfg)

	if *dumpPath != "" {
		compiled := e.Compile(string(source), path, caps)
		if compiled.Program == nil {
			printDiagnostics(compiled.Diagnostics)
			os.Exit(1)
		}
		encoded, err := dump.Encode(compiled.Program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dump error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*dumpPath, encoded, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", *dumpPath, err)
			os.Exit(1)
		}
	}

	result, err := e.CompileAndRun(engine.RunRequest{
		Source:       string(source),
		FileName:     path,
		Capabilities: caps,
		Limits:       &cfg.Limits,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "run error: %v\n", err)
		os.Exit(1)
	}
	if len(result.Diagnostics) > 0 {
		printDiagnostics(result.Diagnostics)
		os.Exit(1)
	}

	for _, line := range result.Output {
		fmt.Println(line)
	}
	fmt.Printf("=> %s\n", result.Value.AsString())
}

func printDiagnostics(diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func parseCapabilityList(csv string) (capability.Set, error) {
	var set capability.Set
	for _, name := range splitNonEmpty(csv, ',') {
		tag, ok := capability.ParseTag(name)
		if !ok {
			return 0, fmt.Errorf("unknown capability tag: %q", name)
		}
		set = set.With(tag)
	}
	return set, nil
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
