package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true)
	aliasStyle = lipgloss.NewStyle().Faint(true)
)

// newCommandsCmd lists the commands the plugin accepts.
func newCommandsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List available commands, their aliases and required fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, registry := buildEngine(opts.cfg)
			out := cmd.OutOrStdout()
			for _, tool := range registry.All() {
				fmt.Fprintf(out, "%s  %s\n", nameStyle.Render(tool.Name), tool.Description)
				if len(tool.Aliases) > 0 {
					fmt.Fprintf(out, "  %s\n", aliasStyle.Render("aliases: "+strings.Join(tool.Aliases, ", ")))
				}
				if len(tool.Schema.Required) > 0 {
					fmt.Fprintf(out, "  required: %s\n", strings.Join(tool.Schema.Required, ", "))
				}
			}
			return nil
		},
	}
}
