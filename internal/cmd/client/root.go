package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command carrying every client command.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "segstream",
		Short: "segstream client commands",
	}
	AddCommands(root)
	return root
}

// AddCommands registers the client command groups on root along with the
// persistent --endpoint flag they read.
func AddCommands(root *cobra.Command) {
	root.PersistentFlags().String("endpoint", "", "Gateway address (default from SEGSTREAM_ENDPOINT or config)")
	root.AddCommand(
		NewScopeCommand(),
		NewStreamCommand(),
		newWriteCommand(),
		newReadCommand(),
		newFetchCommand(),
		NewDemoCommand(),
	)
}
