// Completion: 95% - CLI interface complete, all flags working
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	"github.com/xyproto/env/v2"

	_ "github.com/tliron/commonlog/simple"
)

// A BASIC cross-compiler for the 6502, Z80 and 6809 home computer CPUs

const versionString = "bas8 0.4.1"

var mainLog = commonlog.GetLogger("bas8")

func main() {
	// NOTE: Go's flag package stops parsing at the first non-flag argument
	// So flags must come BEFORE the filename: bas8 -machine c64 program.bas
	var cpuFlag = flag.String("cpu", env.Str("BAS8_CPU", ""), "target CPU (6502, z80, 6809); inferred from the machine if empty")
	var machineFlag = flag.String("machine", env.Str("BAS8_MACHINE", "c64"), "target machine (c64, vic20, atarixl, spectrum48, msx1, dragon32, coco3)")
	var machineFileFlag = flag.String("machinefile", "", "TOML machine description overriding -machine")
	var outputFlag = flag.String("o", "", "output assembly filename (default: input name with .s)")
	var symmapFlag = flag.String("symmap", "", "write a CBOR symbol map to this file")
	var codeFlag = flag.String("c", "", "compile BASIC statements from the command line")
	var watchFlag = flag.Bool("watch", false, "watch mode: recompile on file changes")
	var versionShort = flag.Bool("V", false, "print version information and exit")
	var version = flag.Bool("version", false, "print version information and exit")
	var verbose = flag.Bool("v", false, "verbose mode (show detailed compilation info)")
	var verboseLong = flag.Bool("verbose", false, "verbose mode (show detailed compilation info)")
	flag.Parse()

	if *version || *versionShort {
		fmt.Println(versionString)
		os.Exit(0)
	}

	VerboseMode = *verbose || *verboseLong
	if VerboseMode {
		commonlog.Configure(2, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	useColor := !env.Bool("NO_COLOR")

	machine, err := resolveMachine(*machineFlag, *machineFileFlag, *cpuFlag)
	if err != nil {
		fatal(err, useColor)
	}

	if VerboseMode {
		fmt.Fprintf(os.Stderr, "----=[ %s ]=----\n", versionString)
		fmt.Fprintf(os.Stderr, "Target: %s (%s)\n", machine.Name, machine.CPU)
	}

	// Handle -c for inline statements
	if *codeFlag != "" {
		outputFilename := *outputFlag
		if outputFilename == "" {
			outputFilename = filepath.Join(os.TempDir(), "bas8_inline.s")
		}
		if err := compileSource("<inline>", *codeFlag, outputFilename, machine, *symmapFlag, useColor); err != nil {
			fatal(err, useColor)
		}
		if *outputFlag == "" {
			fmt.Println(outputFilename)
		}
		return
	}

	inputFiles := flag.Args()
	if len(inputFiles) == 0 {
		fmt.Fprintf(os.Stderr, "usage: bas8 [flags] <file.bas>\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	for _, file := range inputFiles {
		outputFilename := *outputFlag
		if outputFilename == "" {
			outputFilename = strings.TrimSuffix(filepath.Base(file), ".bas") + ".s"
		}
		if VerboseMode {
			fmt.Fprintf(os.Stderr, "Compiling %s -> %s\n", file, outputFilename)
		}
		if err := compileFile(file, outputFilename, machine, *symmapFlag, useColor); err != nil {
			fatal(err, useColor)
		}
		if !VerboseMode && *outputFlag == "" {
			fmt.Println(outputFilename)
		}
		if *watchFlag {
			if err := watchAndRecompile(file, outputFilename, machine, *symmapFlag, useColor); err != nil {
				fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
				os.Exit(1)
			}
		}
	}
}

// resolveMachine builds the target machine from the flags: an explicit TOML
// file wins over the builtin name, and -cpu overrides the machine's CPU.
func resolveMachine(name, file, cpu string) (*Machine, error) {
	var machine *Machine
	var err error
	if file != "" {
		machine, err = LoadMachineFile(file)
	} else {
		machine, err = BuiltinMachine(name)
	}
	if err != nil {
		return nil, err
	}
	m := *machine
	if cpu != "" {
		c, err := ParseCpu(cpu)
		if err != nil {
			return nil, err
		}
		m.CPU = c
	}
	return &m, nil
}

func compileFile(path, outputPath string, machine *Machine, symmapPath string, useColor bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return compileSource(path, string(data), outputPath, machine, symmapPath, useColor)
}

// compileSource runs the full pipeline: statements through the driver,
// storage finalization, then assembly and artifacts to disk.
func compileSource(filename, source, outputPath string, machine *Machine, symmapPath string, useColor bool) error {
	sink := NewSink()
	ctx := NewCompilationContext(machine, sink)
	d := NewDriver(ctx)

	if err := d.CompileSource(filename, source); err != nil {
		return err
	}
	ctx.Finalize()

	for _, w := range ctx.Warnings.Warnings() {
		fmt.Fprintln(os.Stderr, w.Format(useColor))
	}

	if err := os.WriteFile(outputPath, []byte(sink.Assemble()), 0o644); err != nil {
		return err
	}
	if symmapPath != "" {
		if err := WriteSymbolMap(symmapPath, ctx); err != nil {
			return err
		}
		mainLog.Infof("wrote symbol map %s", symmapPath)
	}
	return nil
}

// watchAndRecompile blocks, recompiling the source whenever it changes.
func watchAndRecompile(sourceFile, outputFile string, machine *Machine, symmapPath string, useColor bool) error {
	absPath, err := filepath.Abs(sourceFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Watch mode enabled - monitoring %s\n", absPath)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	watcher, err := NewSourceWatcher(absPath, func(path string) {
		fmt.Fprintf(os.Stderr, "[%s] File changed: %s\n", time.Now().Format("15:04:05"), filepath.Base(path))
		if err := compileFile(path, outputFile, machine, symmapPath, useColor); err != nil {
			if ce, ok := err.(*CompilerError); ok {
				fmt.Fprintln(os.Stderr, ce.Format(useColor))
			} else {
				fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
			}
			return
		}
		fmt.Fprintf(os.Stderr, "Recompiled %s\n", outputFile)
	})
	if err != nil {
		return fmt.Errorf("failed to create source watcher: %v", err)
	}
	defer watcher.Close()
	watcher.Watch()
	return nil
}

func fatal(err error, useColor bool) {
	if ce, ok := err.(*CompilerError); ok {
		fmt.Fprintln(os.Stderr, ce.Format(useColor))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
