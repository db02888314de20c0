package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/segstream/internal/config"
	"github.com/rzbill/segstream/pkg/segstream"
)

// NewStreamCommand constructs the `stream` command group and subcommands.
func NewStreamCommand() *cobra.Command {
	streamCmd := &cobra.Command{Use: "stream", Short: "Stream operations"}
	streamCmd.AddCommand(
		newStreamCreateCommand(),
		newStreamUpdateCommand(),
		newStreamListCommand(),
		newStreamInfoCommand(),
	)
	return streamCmd
}

func addPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().String("scale", "fixed", "Scaling: fixed|kbps|events")
	cmd.Flags().Int("segments", 1, "Segment count (fixed) or minimum segments (rate based)")
	cmd.Flags().Int("target-rate", 0, "Target rate per segment for rate based scaling")
	cmd.Flags().Int("scale-factor", 2, "Split factor for rate based scaling")
}

func policyFromFlags(cmd *cobra.Command) (segstream.ScalingPolicy, error) {
	scale, _ := cmd.Flags().GetString("scale")
	segments, _ := cmd.Flags().GetInt("segments")
	rate, _ := cmd.Flags().GetInt("target-rate")
	factor, _ := cmd.Flags().GetInt("scale-factor")
	switch scale {
	case "fixed":
		return segstream.FixedSegments(segments)
	case "kbps":
		return segstream.ByDataRate(rate, factor, segments)
	case "events":
		return segstream.ByEventRate(rate, factor, segments)
	default:
		return segstream.ScalingPolicy{}, fmt.Errorf("invalid --scale %q; use fixed|kbps|events", scale)
	}
}

func newStreamCreateCommand() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create stream (existing streams keep their policy)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy, err := policyFromFlags(cmd)
			if err != nil {
				return err
			}
			return withClient(cmd, func(cfg cfgpkg.Config, c *segstream.Client) error {
				scope, stream := scopeStream(cmd, cfg)
				created, err := c.CreateStream(cmd.Context(), scope, stream, policy)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stream %s/%s created: %t\n", scope, stream, created)
				return nil
			})
		},
	}
	addStreamFlags(createCmd)
	addPolicyFlags(createCmd)
	return createCmd
}

func newStreamUpdateCommand() *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Replace a stream's scaling policy (starts a new segment generation)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy, err := policyFromFlags(cmd)
			if err != nil {
				return err
			}
			return withClient(cmd, func(cfg cfgpkg.Config, c *segstream.Client) error {
				scope, stream := scopeStream(cmd, cfg)
				if err := c.UpdateStream(cmd.Context(), scope, stream, policy); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stream %s/%s policy: %s\n", scope, stream, policy)
				return nil
			})
		},
	}
	addStreamFlags(updateCmd)
	addPolicyFlags(updateCmd)
	return updateCmd
}

func newStreamListCommand() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the streams of a scope",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(cfg cfgpkg.Config, c *segstream.Client) error {
				scope, _ := scopeStream(cmd, cfg)
				for id, err := range c.ListStreams(cmd.Context(), scope) {
					if err != nil {
						return err
					}
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	listCmd.Flags().StringP("scope", "s", "", "Scope (default from config)")
	return listCmd
}

type streamInfoView struct {
	Scope  string `json:"scope"`
	Stream string `json:"stream"`
	Policy string `json:"policy"`
	Head   string `json:"head"`
	Tail   string `json:"tail"`
}

func newStreamInfoCommand() *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show policy, head cut and tail cut of a stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(cfg cfgpkg.Config, c *segstream.Client) error {
				scope, stream := scopeStream(cmd, cfg)
				info, err := c.GetStreamInfo(cmd.Context(), scope, stream)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(streamInfoView{
					Scope:  scope,
					Stream: stream,
					Policy: info.Policy.String(),
					Head:   info.Head.String(),
					Tail:   info.Tail.String(),
				})
			})
		},
	}
	addStreamFlags(infoCmd)
	return infoCmd
}
