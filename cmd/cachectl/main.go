// Command cachectl lists, clears and refreshes the caches of a process serving the admin HTTP API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/karupanerura/named-cache/admin/adminhttp"
)

const (
	defaultAddr = "http://127.0.0.1:8080"
	addrEnv     = "NAMEDCACHE_ADMIN_ADDR"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "cachectl",
		Short:        "Operate the named caches of a running process",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().String("addr", "", "base URL of the admin API (default $"+addrEnv+" or "+defaultAddr+")")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the registered caches",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, cmd *cobra.Command, c *adminhttp.Client, _ []string) error {
				names, err := c.CacheNames(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "items CACHE",
			Short: "List the registered item keys of a cache",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, cmd *cobra.Command, c *adminhttp.Client, args []string) error {
				keys, err := c.ItemKeys(ctx, args[0])
				if err != nil {
					return err
				}
				for _, key := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear CACHE",
			Short: "Drop every entry of a cache",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, cmd *cobra.Command, c *adminhttp.Client, args []string) error {
				if err := c.ClearCache(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear-item CACHE KEY",
			Short: "Drop one entry of a cache",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, cmd *cobra.Command, c *adminhttp.Client, args []string) error {
				if err := c.ClearCacheItem(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s/%s\n", args[0], args[1])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "refresh CACHE [KEY]",
			Short: "Recompute one registered item, or every registered item of a cache",
			Args:  cobra.RangeArgs(1, 2),
			RunE: run(func(ctx context.Context, cmd *cobra.Command, c *adminhttp.Client, args []string) error {
				if len(args) == 2 {
					if err := c.RefreshItem(ctx, args[0], args[1]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "refreshed %s/%s\n", args[0], args[1])
					return nil
				}
				if err := c.RefreshCache(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "refreshed %s\n", args[0])
				return nil
			}),
		},
	)
	return root
}

type action func(ctx context.Context, cmd *cobra.Command, c *adminhttp.Client, args []string) error

func run(f action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := adminhttp.NewClient(flagOrEnv(cmd, "addr", addrEnv, defaultAddr))
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return f(ctx, cmd, c, args)
	}
}

// flagOrEnv reads a string flag, then the environment, then falls back to defaultValue.
func flagOrEnv(cmd *cobra.Command, flagName, envName, defaultValue string) string {
	if f := cmd.Flag(flagName); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	if v, ok := os.LookupEnv(envName); ok && v != "" {
		return v
	}
	return defaultValue
}
