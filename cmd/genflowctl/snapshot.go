package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phrazzld/genflow/internal/config"
	"github.com/phrazzld/genflow/internal/durable"
	"github.com/phrazzld/genflow/internal/platform/postgres"
	"github.com/phrazzld/genflow/internal/platform/storage"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(c *cli) *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or erase persisted workflow snapshots",
	}

	showCmd := &cobra.Command{
		Use:   "show [context-id]",
		Short: "Print the snapshot of an execution context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(cmd, func(b *storage.Backend) error {
				raw, err := b.Factory(durable.ContextKey(args[0])).Read()
				if durable.IsNotFound(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "no snapshot for context %q\n", args[0])
					return nil
				}
				if err != nil {
					return err
				}

				var pretty bytes.Buffer
				if err := json.Indent(&pretty, raw, "", "  "); err != nil {
					c.logger.Warn("snapshot is not valid JSON, printing raw bytes", "error", err)
					pretty.Reset()
					pretty.Write(raw)
				}
				fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
				return nil
			})
		},
	}

	eraseCmd := &cobra.Command{
		Use:   "erase [context-id]",
		Short: "Erase the snapshot of an execution context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(cmd, func(b *storage.Backend) error {
				if err := b.Factory(durable.ContextKey(args[0])).Erase(); err != nil {
					return err
				}
				c.logger.Info("snapshot erased", "context_id", args[0], "backend", b.Name)
				fmt.Fprintf(cmd.OutOrStdout(), "erased snapshot for context %q\n", args[0])
				return nil
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshot keys (postgres and redis backends)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(cmd, func(b *storage.Backend) error {
				out := cmd.OutOrStdout()
				switch {
				case b.DB != nil:
					infos, err := postgres.ListSnapshots(cmd.Context(), b.DB)
					if err != nil {
						return err
					}
					for _, info := range infos {
						fmt.Fprintf(out, "%s\t%d\t%s\n", info.Key, info.Size, info.UpdatedAt.Format(time.RFC3339))
					}
				case b.Redis != nil:
					keys, err := b.Redis.Keys(cmd.Context())
					if err != nil {
						return err
					}
					for _, key := range keys {
						fmt.Fprintln(out, key)
					}
				default:
					return fmt.Errorf("listing snapshots is not supported by the %s backend", b.Name)
				}
				return nil
			})
		},
	}

	snapshotCmd.AddCommand(showCmd, eraseCmd, listCmd)
	return snapshotCmd
}

// withBackend opens the configured store for the duration of fn. The memory
// backend is refused since it holds nothing between processes.
func (c *cli) withBackend(cmd *cobra.Command, fn func(*storage.Backend) error) error {
	if c.cfg.Store.Backend == config.BackendMemory {
		return fmt.Errorf("the %s backend does not persist snapshots", config.BackendMemory)
	}

	b, err := storage.Open(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			c.logger.Error("failed to close store", "error", err)
		}
	}()
	return fn(b)
}
