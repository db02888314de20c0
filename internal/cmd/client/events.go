package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/segstream/internal/config"
	"github.com/rzbill/segstream/pkg/segstream"
)

func newWriteCommand() *cobra.Command {
	writeCmd := &cobra.Command{
		Use:   "write",
		Short: "Write events through one writer (per-writer order is kept)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, _ := cmd.Flags().GetStringArray("data")
			file, _ := cmd.Flags().GetString("file")
			key, _ := cmd.Flags().GetString("routing-key")
			if len(data) == 0 && file == "" {
				return fmt.Errorf("nothing to write; use --data or --file")
			}
			return withClient(cmd, func(cfg cfgpkg.Config, c *segstream.Client) error {
				scope, stream := scopeStream(cmd, cfg)
				ctx := cmd.Context()
				w, err := c.NewWriter(ctx, scope, stream, segstream.WithRoutingKey(key))
				if err != nil {
					return err
				}
				defer w.Close()
				for _, d := range data {
					if err := w.Write(ctx, []byte(d)); err != nil {
						return err
					}
				}
				if file != "" {
					if err := writeLines(cmd, w, file); err != nil {
						return err
					}
				}
				if err := w.Complete(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d events to %s/%s (routing key %s)\n", w.Written(), scope, stream, w.RoutingKey())
				return nil
			})
		},
	}
	addStreamFlags(writeCmd)
	writeCmd.Flags().StringArray("data", nil, "Event payload (repeatable)")
	writeCmd.Flags().String("file", "", "Write one event per line of this file (- for stdin)")
	writeCmd.Flags().String("routing-key", "", "Routing key (default: unique per invocation)")
	return writeCmd
}

func writeLines(cmd *cobra.Command, w *segstream.EventWriter, file string) error {
	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16<<20)
	for sc.Scan() {
		if err := w.Write(cmd.Context(), append([]byte(nil), sc.Bytes()...)); err != nil {
			return err
		}
	}
	return sc.Err()
}

func newReadCommand() *cobra.Command {
	readCmd := &cobra.Command{
		Use:   "read",
		Short: "Read events as JSON lines; bounded reads stop at the bound",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bound, _ := cmd.Flags().GetString("bound")
			start, _ := cmd.Flags().GetString("start")
			filter, _ := cmd.Flags().GetString("filter")
			limit, _ := cmd.Flags().GetInt("limit")

			return withClient(cmd, func(cfg cfgpkg.Config, c *segstream.Client) error {
				scope, stream := scopeStream(cmd, cfg)
				ctx := cmd.Context()
				var opts []segstream.ReaderOption
				switch bound {
				case "":
				case "tail":
					tail, err := c.GetTailCut(ctx, scope, stream)
					if err != nil {
						return err
					}
					opts = append(opts, segstream.WithBound(tail))
				default:
					cut, err := segstream.ParseStreamCut(bound)
					if err != nil {
						return fmt.Errorf("invalid --bound: %w", err)
					}
					opts = append(opts, segstream.WithBound(cut))
				}
				if start != "" {
					cut, err := segstream.ParseStreamCut(start)
					if err != nil {
						return fmt.Errorf("invalid --start: %w", err)
					}
					opts = append(opts, segstream.WithStart(cut))
				}
				if filter != "" {
					opts = append(opts, segstream.WithFilter(filter))
				}

				r, err := c.NewReader(ctx, scope, stream, opts...)
				if err != nil {
					return err
				}
				defer r.Close()
				enc := json.NewEncoder(cmd.OutOrStdout())
				n := 0
				for ev, err := range r.Events(ctx) {
					if err != nil {
						return err
					}
					if err := enc.Encode(decodedEvent(ev)); err != nil {
						return err
					}
					n++
					if limit > 0 && n >= limit {
						break
					}
				}
				return nil
			})
		},
	}
	addStreamFlags(readCmd)
	readCmd.Flags().String("bound", "", "Stop at this cut: tail or a cut string (empty = follow forever)")
	readCmd.Flags().String("start", "", "Start after this cut (cut string, e.g. from a previous read)")
	readCmd.Flags().String("filter", "", "CEL filter over segment, epoch, offset, size, text, json")
	readCmd.Flags().Int("limit", 0, "Stop after N events (0 = no limit)")
	return readCmd
}

func newFetchCommand() *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one event by pointer and print its payload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			segment, _ := cmd.Flags().GetInt64("segment")
			offset, _ := cmd.Flags().GetInt64("offset")
			length, _ := cmd.Flags().GetInt64("length")
			return withClient(cmd, func(cfg cfgpkg.Config, c *segstream.Client) error {
				scope, stream := scopeStream(cmd, cfg)
				payload, err := c.FetchEvent(cmd.Context(), segstream.EventPointer{
					Scope:   scope,
					Stream:  stream,
					Segment: segstream.SegmentID(segment),
					Offset:  offset,
					Length:  length,
				})
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(append(payload, '\n'))
				return err
			})
		},
	}
	addStreamFlags(fetchCmd)
	fetchCmd.Flags().Int64("segment", 0, "Segment ID")
	fetchCmd.Flags().Int64("offset", 0, "Event offset within the segment")
	fetchCmd.Flags().Int64("length", 0, "Event length including framing")
	_ = fetchCmd.MarkFlagRequired("segment")
	_ = fetchCmd.MarkFlagRequired("length")
	return fetchCmd
}
