package main

import (
	"flag"
	"fmt"
	"os"

	"xrfc/pkg/chunkopt"
	"xrfc/pkg/codegen"
	"xrfc/pkg/diag"
	"xrfc/pkg/ir"
	"xrfc/pkg/parser"
	"xrfc/pkg/progopt"
	"xrfc/pkg/utils"
)

const version = "xrfc 0.1.0"

func main() {
	var outPath string
	flag.StringVar(&outPath, "o", "", "output LLVM IR file path (default: out.ll)")
	flag.StringVar(&outPath, "output", "", "alias for -o")
	optLevel := flag.Int("O", 0, "optimization level: 0 (none), 1 (chunk-level), 2+ (chunk- and program-level)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: xrfc [-o|--output output.ll] [-O level] <input.xrf>")
		os.Exit(2)
	}

	inPath := flag.Arg(0)
	fullPath, _, err := utils.GetPathInfo(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve input path %q: %v\n", inPath, err)
		os.Exit(1)
	}

	source, err := os.ReadFile(fullPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", fullPath, err)
		os.Exit(1)
	}

	chunks, errs := parser.Parse(string(source))
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(2)
	}

	prog := &ir.Program{Chunks: chunks}

	exitCode := 0
	func() {
		defer func() {
			if r := recover(); r != nil {
				if pe, ok := r.(diag.ProgramError); ok {
					// Deliberately not one of the four documented exit
					// codes (0/1/2/3): this is the compiler's own bug,
					// not a documented failure mode.
					fmt.Fprintln(os.Stderr, pe.Error())
					exitCode = 70
					return
				}
				panic(r)
			}
		}()

		if *optLevel >= 1 {
			prog = chunkopt.Optimize(prog)
		}
		if *optLevel >= 2 {
			prog = progopt.Optimize(prog)
		}

		mod := codegen.Generate(prog)
		defer mod.Dispose()

		output := outPath
		if output == "" {
			output = "out.ll"
		}

		if err := os.WriteFile(output, []byte(mod.String()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write output file %q: %v\n", output, err)
			exitCode = 3
			return
		}

		fmt.Printf("wrote %s\n", output)
	}()

	os.Exit(exitCode)
}
