package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/deepnoodle-ai/cilsil"
	"github.com/deepnoodle-ai/cilsil/dis"
	"github.com/deepnoodle-ai/cilsil/emit"
	"github.com/deepnoodle-ai/cilsil/translator"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var outputFormats = []string{"table", "json", "dot"}

func newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <file>",
		Short: "Translate every method of an assembly document into a CFG",
		Long: `Translate reads a YAML or JSON document describing decoded method bodies
and prints the control-flow graph of each method. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: runTranslate,
	}
	flags := cmd.Flags()
	flags.StringP("format", "f", "table", "Output format (table, json, dot)")
	flags.Int("workers", runtime.GOMAXPROCS(0), "Number of methods translated concurrently")
	flags.Int("max-steps", 0, "Step budget per method (0 selects a budget from the method size)")
	flags.String("leave-policy", translator.LeaveConcatenatedFinally.String(),
		"Leave wiring policy (concatenated-finally, target-filter)")
	flags.Bool("fail-fast", false, "Stop at the first method with an internal error")
	flags.Bool("no-exceptional", false, "Omit edges from try blocks to their handlers")
	flags.StringSlice("method", nil, "Translate only the named methods")
	for _, name := range []string{"format", "workers", "max-steps", "leave-policy", "fail-fast", "no-exceptional"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
	cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func translateOptions() ([]cilsil.Option, error) {
	policy, err := translator.ParseLeavePolicy(viper.GetString("leave-policy"))
	if err != nil {
		return nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	opts := []cilsil.Option{
		cilsil.WithLogger(logger),
		cilsil.WithWorkers(viper.GetInt("workers")),
		cilsil.WithLeavePolicy(policy),
		cilsil.WithMaxSteps(viper.GetInt("max-steps")),
	}
	if viper.GetBool("fail-fast") {
		opts = append(opts, cilsil.WithFailFast())
	}
	if viper.GetBool("no-exceptional") {
		opts = append(opts, cilsil.WithoutExceptionalEdges())
	}
	return opts, nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(viper.GetString("format"))
	if indexOf(outputFormats, format) < 0 {
		return fmt.Errorf("unknown output format: %s", format)
	}
	opts, err := translateOptions()
	if err != nil {
		return err
	}
	asm, err := loadAssembly(args[0])
	if err != nil {
		return err
	}
	names, _ := cmd.Flags().GetStringSlice("method")
	if asm, err = selectMethods(asm, names); err != nil {
		return err
	}

	result, translateErr := cilsil.Translate(cmd.Context(), asm, opts...)
	if err := writeResult(cmd.OutOrStdout(), result, format); err != nil {
		return err
	}
	if translateErr != nil {
		failed := result.Failed()
		for _, m := range failed {
			fmt.Fprintln(cmd.ErrOrStderr(), red(m.Err.Error()))
		}
		return fmt.Errorf("%d of %d methods failed to translate", len(failed), len(result.Methods))
	}
	return nil
}

func writeResult(w io.Writer, result *cilsil.Result, format string) error {
	var docs []emit.GraphDocument
	for _, m := range result.Methods {
		if m.Graph == nil {
			continue
		}
		switch format {
		case "table":
			dis.PrintGraph(m.Graph, w)
			fmt.Fprintln(w)
		default:
			docs = append(docs, emit.NewGraphDocument(m.Graph, m.Method))
		}
	}
	switch format {
	case "json":
		return emit.WriteJSON(w, docs, !color.NoColor)
	case "dot":
		return emit.WriteDOT(w, docs)
	}
	return nil
}

func indexOf(arr []string, val string) int {
	for i, v := range arr {
		if v == val {
			return i
		}
	}
	return -1
}
