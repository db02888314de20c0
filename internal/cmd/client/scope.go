package client

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/segstream/internal/config"
	"github.com/rzbill/segstream/pkg/segstream"
)

// NewScopeCommand constructs the `scope` command group.
func NewScopeCommand() *cobra.Command {
	scopeCmd := &cobra.Command{Use: "scope", Short: "Scope operations"}
	scopeCmd.AddCommand(newScopeCreateCommand())
	return scopeCmd
}

func newScopeCreateCommand() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create scope (no-op if it exists)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(cfg cfgpkg.Config, c *segstream.Client) error {
				scope, _ := scopeStream(cmd, cfg)
				created, err := c.CreateScope(cmd.Context(), scope)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "scope %s created: %t\n", scope, created)
				return nil
			})
		},
	}
	createCmd.Flags().StringP("scope", "s", "", "Scope (default from config)")
	return createCmd
}
