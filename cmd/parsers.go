package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/krau/sankaku-dl/parsers"
	"github.com/krau/sankaku-dl/pkg/parser"
	"github.com/spf13/cobra"
)

var nameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))

var parsersCmd = &cobra.Command{
	Use:   "parsers",
	Short: "List the registered parsers",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, p := range parsers.Get() {
			described, ok := p.(parser.DescribedParser)
			if !ok {
				fmt.Fprintf(out, "%T\n", p)
				continue
			}
			meta := described.Meta()
			fmt.Fprintf(out, "%s %s\n  %s\n  hosts: %s\n",
				nameStyle.Render(meta.Name), meta.Version.String(), meta.Description, strings.Join(meta.Hosts, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(parsersCmd)
}
