// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/retroenv/retrogolib/log"

	"github.com/ezrec/y86/cpu"
	"github.com/ezrec/y86/emulator"
	"github.com/ezrec/y86/internal"
	"github.com/ezrec/y86/io"
)

// createLogger creates a logger with the requested verbosity.
func createLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func main() {
	var compile string
	var object string
	var listing string
	var execute string
	var memory int
	var breakpoints string
	var save bool
	var dump bool
	var verbose bool
	var quiet bool

	flag.StringVar(&compile, "c", "", ".ys file to compile")
	flag.StringVar(&object, "o", "", "Object image output")
	flag.StringVar(&listing, "l", "", "Listing output, '-' for stdout")
	flag.StringVar(&execute, "x", "", "Object image to execute")
	flag.IntVar(&memory, "m", cpu.MEMORY_SIZE, "Memory size in bytes")
	flag.StringVar(&breakpoints, "b", "", "Comma separated breakpoint addresses or labels")
	flag.BoolVar(&save, "s", false, "Compile only, do not execute")
	flag.BoolVar(&dump, "d", false, "Dump the compiled program")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&quiet, "q", false, "Quiet mode")

	flag.Parse()

	logger := createLogger(verbose, quiet)

	if flag.NArg() != 0 {
		logger.Fatal(fmt.Sprintf("%v: Unknown arguments: %v", os.Args[0], flag.Args()))
	}

	if len(compile) == 0 && len(execute) == 0 {
		logger.Fatal(fmt.Sprintf("%v: one of -c or -x is required", os.Args[0]))
	}

	emu := emulator.NewEmulator(memory)
	emu.Verbose = verbose
	emu.Logger = logger

	prog := &cpu.Program{}
	var image []byte

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			logger.Fatal(err.Error())
		}
		defer inf.Close()

		asm := &cpu.Assembler{
			Verbose: verbose,
			Logger:  logger,
			Limit:   emu.Cpu.Memory.Capacity(),
		}
		for name, value := range emu.Defines() {
			asm.Predefine(name, value)
		}
		prog, err = asm.Parse(inf)
		if err != nil {
			logger.Fatal("compile failed", log.String("file", compile), log.Err(err))
		}
		image = prog.Binary()
	} else {
		inf, err := os.Open(execute)
		if err != nil {
			logger.Fatal(err.Error())
		}
		defer inf.Close()

		img := &io.Image{Capacity: memory}
		err = img.Unmarshal(inf)
		if err != nil {
			logger.Fatal("load failed", log.String("file", execute), log.Err(err))
		}
		image = img.Data
	}

	if dump {
		pp.Println(prog)
	}

	if len(listing) != 0 {
		err := writeListing(listing, prog)
		if err != nil {
			logger.Fatal("listing failed", log.String("file", listing), log.Err(err))
		}
	}

	if len(object) != 0 {
		err := writeObject(object, image)
		if err != nil {
			logger.Fatal("object failed", log.String("file", object), log.Err(err))
		}
	}

	if save {
		return
	}

	var err error
	if len(compile) != 0 {
		err = emu.Load(prog)
	} else {
		err = emu.LoadImage(image)
	}
	if err != nil {
		logger.Fatal("load failed", log.Err(err))
	}

	err = setBreakpoints(emu, prog, breakpoints)
	if err != nil {
		logger.Fatal("breakpoints", log.Err(err))
	}

	term := io.NewTerminal(os.Stdout)
	go func() {
		err := term.Feed(os.Stdin)
		if err != nil {
			logger.Error("console input", log.Err(err))
		}
	}()
	defer term.Close()
	emu.SetConsole(term)

	emu.OnBreak = func(pc uint64) {
		logger.Info("breakpoint",
			log.Hex("pc", pc),
			log.String("line", fmt.Sprint(prog.LineNo(pc))))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err = emu.Run(ctx)
	for err == nil && ctx.Err() == nil && !emu.Snapshot().Status.Terminal() {
		action := prompt(term, emu)
		err = emu.Resume(ctx, action)
	}

	if verbose {
		fmt.Fprint(os.Stderr, emu.String())
	}

	snap := emu.Snapshot()
	logger.Info("stopped",
		log.Stringer("status", snap.Status),
		log.Hex("pc", snap.Pc))

	if err != nil {
		logger.Error("run failed", log.Err(err))
		term.Close()
		os.Exit(1)
	}
}

// writeListing writes the program listing to a file, or stdout for '-'.
func writeListing(path string, prog *cpu.Program) (err error) {
	if path == "-" {
		return prog.Listing(os.Stdout)
	}

	ouf, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = prog.Listing(ouf)
	if err != nil {
		return
	}

	if len(prog.Labels) > 0 {
		fmt.Fprintln(ouf)
		for name, addr := range internal.IterSortedByValue(prog.Labels) {
			fmt.Fprintf(ouf, "# %v %v\n", internal.Hex(addr, 3), name)
		}
	}

	return
}

// writeObject writes an object image.
func writeObject(path string, data []byte) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	img := &io.Image{Data: data}
	err = img.Marshal(ouf)

	return
}

// setBreakpoints parses a comma separated list of addresses or labels.
func setBreakpoints(emu *emulator.Emulator, prog *cpu.Program, list string) (err error) {
	for _, word := range strings.Split(list, ",") {
		word = strings.TrimSpace(word)
		if len(word) == 0 {
			continue
		}

		addr, ok := prog.Labels[word]
		if !ok {
			var value int64
			value, err = cpu.ParseNumber(word)
			if err != nil {
				return
			}
			addr = uint64(value)
		}

		emu.SetBreakpoint(addr)
	}

	return
}

// prompt asks for the breakpoint action on the console.
func prompt(term *io.Terminal, emu *emulator.Emulator) emulator.BreakAction {
	fmt.Fprint(os.Stderr, emu.String())
	fmt.Fprint(os.Stderr, "[s]tep, [c]ontinue, [a]bort? ")

	line, err := term.ReadLine()
	if err != nil {
		return emulator.BREAK_CONTINUE
	}

	switch strings.TrimSpace(line) {
	case "s", "step":
		return emulator.BREAK_STEP
	case "a", "abort":
		return emulator.BREAK_ABORT
	default:
		return emulator.BREAK_CONTINUE
	}
}
