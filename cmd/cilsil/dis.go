package main

import (
	"fmt"

	"github.com/deepnoodle-ai/cilsil/dis"
	"github.com/spf13/cobra"
)

func newDisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis <file>",
		Short: "List the instructions and exception regions of each method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asm, err := loadAssembly(args[0])
			if err != nil {
				return err
			}
			names, _ := cmd.Flags().GetStringSlice("method")
			if asm, err = selectMethods(asm, names); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range asm.Methods {
				fmt.Fprintln(out, m.Name())
				dis.Print(dis.Disassemble(m), out)
				fmt.Fprintln(out)
			}
			if len(asm.Rejected) > 0 {
				for _, r := range asm.Rejected {
					fmt.Fprintln(cmd.ErrOrStderr(), red(r.Err.Error()))
				}
				return fmt.Errorf("%d of %d methods could not be loaded",
					len(asm.Rejected), len(asm.Methods)+len(asm.Rejected))
			}
			return nil
		},
	}
	cmd.Flags().StringSlice("method", nil, "Disassemble only the named methods")
	return cmd
}
