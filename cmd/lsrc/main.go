package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/davidbalbert/lsr/api"
	"github.com/davidbalbert/lsr/common"
	"github.com/davidbalbert/lsr/router"
	"github.com/davidbalbert/lsr/rpc"
	"github.com/spf13/cobra"
)

var socketPath string

var client *api.Client

var rootCmd = &cobra.Command{
	Use:          "lsrc",
	Short:        "Inspect a running lsrd",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := api.NewClient(socketPath)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", socketPath, err)
		}

		client = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		client.Close()
	},
}

func printTable(w io.Writer, table []string) {
	for _, row := range table {
		fmt.Fprintf(w, "%s\n", row)
	}
}

func printHeader(w io.Writer, h rpc.Header) {
	fmt.Fprintf(w, "%s, snapshot %d\n", h.RouterID, h.Seq)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the daemon's version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := client.GetVersion(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "lsrd %s\n", v)
		return nil
	},
}

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Show the topology database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, records, err := client.GetTopology(cmd.Context())
		if err != nil {
			return err
		}

		table, err := tabulate(records, []string{"Origin", "Router", "Link", "Cost"}, func(ls router.LinkState) []string {
			return []string{ls.Origin.String(), ls.Reached.String(), ls.Link.String(), ls.Cost.String()}
		})
		if err != nil {
			return err
		}

		printHeader(cmd.OutOrStdout(), h)
		printTable(cmd.OutOrStdout(), table)
		return nil
	},
}

var neighborsCmd = &cobra.Command{
	Use:   "neighbors",
	Short: "Show neighbors learned from HELLOs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, neighbors, err := client.GetNeighbors(cmd.Context())
		if err != nil {
			return err
		}

		table, err := tabulate(neighbors, []string{"Link", "Neighbor"}, func(n router.Neighbor) []string {
			return []string{n.Link.String(), n.RouterID.String()}
		})
		if err != nil {
			return err
		}

		printHeader(cmd.OutOrStdout(), h)
		printTable(cmd.OutOrStdout(), table)
		return nil
	},
}

func routeTable(routes []router.Route, self common.RouterID) ([]string, error) {
	return tabulate(routes, []string{"Destination", "Next hop", "Cost"}, func(r router.Route) []string {
		switch {
		case r.Destination == self:
			return []string{r.Destination.String(), "local", r.Cost.String()}
		case !r.Reachable():
			return []string{r.Destination.String(), "none", r.Cost.String()}
		default:
			return []string{r.Destination.String(), r.NextHop.String(), r.Cost.String()}
		}
	})
}

var ribCmd = &cobra.Command{
	Use:   "rib",
	Short: "Show the routing table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, routes, err := client.GetRoutingTable(cmd.Context())
		if err != nil {
			return err
		}

		table, err := routeTable(routes, h.RouterID)
		if err != nil {
			return err
		}

		printHeader(cmd.OutOrStdout(), h)
		printTable(cmd.OutOrStdout(), table)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the routing table every time it changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.WatchRoutingTable(cmd.Context(), func(h rpc.Header, routes []router.Route) error {
			table, err := routeTable(routes, h.RouterID)
			if err != nil {
				return err
			}

			printHeader(cmd.OutOrStdout(), h)
			printTable(cmd.OutOrStdout(), table)
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "/tmp/lsrd.sock", "path to the lsrd API socket")

	rootCmd.AddCommand(versionCmd, topologyCmd, neighborsCmd, ribCmd, watchCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
