package cluster

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/hzwire/cmd/util"
	"github.com/ValentinKolb/hzwire/rpc/client"
	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
	"os"
	"time"
)

var (
	rpcClient *client.RPCClient

	pingCount   int
	dumpMetrics bool

	// ClusterCommands represents the cluster command group
	ClusterCommands = &cobra.Command{
		Use:               "cluster",
		Short:             "Perform cluster operations",
		PersistentPreRunE: setupClusterClient,
		PersistentPostRun: closeClusterClient,
	}

	// pingCmd represents the ping command
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Ping the cluster and print the round trip time",
		Args:  cobra.NoArgs,
		RunE:  runPing,
	}
)

func init() {
	// Add subcommands to cluster command
	ClusterCommands.AddCommand(pingCmd)

	// Add common RPC flags to the cluster command
	util.SetupRPCClientFlags(ClusterCommands)

	// Add flags specific to ping
	pingCmd.Flags().IntVar(&pingCount, "count", 1, "Number of pings to send")
	pingCmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "Print the client metrics in Prometheus format after the pings")
}

// setupClusterClient connects the client
func setupClusterClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	rpcClient, err = util.NewClient()
	return err
}

func closeClusterClient(_ *cobra.Command, _ []string) {
	if rpcClient != nil {
		rpcClient.Close()
	}
}

func runPing(_ *cobra.Command, _ []string) error {
	for i := 0; i < pingCount; i++ {
		start := time.Now()
		if err := rpcClient.Ping(context.Background()); err != nil {
			return err
		}
		fmt.Printf("pong seq=%d time=%s\n", i+1, time.Since(start))
	}

	if dumpMetrics {
		fmt.Println()
		metrics.WritePrometheus(os.Stdout, false)
	}
	return nil
}
