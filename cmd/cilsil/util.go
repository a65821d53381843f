package main

import (
	"fmt"
	"os"

	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/loader"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var red = color.New(color.FgRed).SprintfFunc()

func fatal(msg any) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminalOut() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if viper.GetBool("no-color") || !isTerminalOut() {
		color.NoColor = true
	}
}

func newLogger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return zerolog.Nop(), err
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: color.NoColor}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}

// loadAssembly reads the assembly document named by the path, or stdin when
// the path is "-".
func loadAssembly(path string) (*bytecode.Assembly, error) {
	if path == "-" {
		return loader.Load(os.Stdin)
	}
	return loader.LoadFile(path)
}

// selectMethods narrows the assembly to the named methods. With no names,
// the assembly is returned unchanged.
func selectMethods(asm *bytecode.Assembly, names []string) (*bytecode.Assembly, error) {
	if len(names) == 0 {
		return asm, nil
	}
	byName := map[string]*bytecode.MethodBody{}
	for _, m := range asm.Methods {
		byName[m.Name()] = m
	}
	rejected := map[string]bytecode.RejectedMethod{}
	for _, r := range asm.Rejected {
		rejected[r.Name] = r
	}
	out := &bytecode.Assembly{Name: asm.Name}
	for i, name := range names {
		if m, ok := byName[name]; ok {
			out.Methods = append(out.Methods, m)
			continue
		}
		r, ok := rejected[name]
		if !ok {
			return nil, fmt.Errorf("method %q not found", name)
		}
		r.Index = i
		out.Rejected = append(out.Rejected, r)
	}
	return out, nil
}
