// Package cmd builds the argument parsers of pakman handlers.
//
// There is no global cobra command tree. The dispatcher picks the handler;
// the handler builds a standalone command for its own arguments, runs it with
// Execute, and discards it when it returns.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

// New creates the parser for one handler. use is the cobra Use line and doc
// the handler documentation; the first line of doc is the short description.
func New(use, doc string) *cobra.Command {
	doc = strings.TrimSpace(doc)
	short, _, _ := strings.Cut(doc, "\n")
	return &cobra.Command{
		Use:           use,
		Short:         strings.TrimSpace(short),
		Long:          doc,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
}

// AddSubcommands attaches children to parent, used by handlers with their own
// sub-commands (editable add/remove/list).
func AddSubcommands(parent *cobra.Command, children ...*cobra.Command) {
	for _, c := range children {
		c.SilenceUsage = true
		c.SilenceErrors = true
		parent.AddCommand(c)
	}
}
