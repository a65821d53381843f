package main

import (
	"fmt"

	"github.com/deepnoodle-ai/cilsil/op"
	"github.com/deepnoodle-ai/cilsil/translator"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newOpcodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "opcodes",
		Short: "List the opcode table and the parser that handles each opcode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := translator.New().Dispatcher()
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Code", "Name", "Operand", "Flow", "Parser"})
			for _, code := range op.All() {
				info, _ := op.GetInfo(code)
				parser := red("unclaimed")
				if p, ok := d.ClaimedBy(code); ok {
					parser = p.Name()
				}
				t.AppendRow(table.Row{
					codeString(code),
					info.Name,
					info.Operand.String(),
					info.Flow.String(),
					parser,
				})
			}
			t.Render()
			return nil
		},
	}
}

func codeString(code op.Code) string {
	if code >= 0xFE00 {
		return fmt.Sprintf("0xfe%02x", uint16(code)&0xff)
	}
	return fmt.Sprintf("0x%02x", uint16(code))
}
