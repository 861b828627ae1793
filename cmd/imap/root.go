package imap

import (
	"github.com/ValentinKolb/hzwire/cmd/util"
	"github.com/ValentinKolb/hzwire/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcClient *client.RPCClient
	rpcMap    client.IMap

	// MapCommands represents the map command group
	MapCommands = &cobra.Command{
		Use:               "map",
		Short:             "Perform map operations",
		Long:              "Perform operations on a distributed map. Keys and values are sent as the raw bytes of the arguments.",
		PersistentPreRunE: setupMapClient,
		PersistentPostRun: closeMapClient,
	}
)

func init() {
	// Add common RPC flags to the map command
	util.SetupRPCClientFlags(MapCommands)

	MapCommands.PersistentFlags().String("name", "default", util.WrapString("Name of the map"))

	// Add subcommands
	MapCommands.AddCommand(putCmd)
	MapCommands.AddCommand(getCmd)
	MapCommands.AddCommand(removeCmd)
	MapCommands.AddCommand(sizeCmd)
	MapCommands.AddCommand(entriesCmd)
	MapCommands.AddCommand(perfTestCmd)
}

// setupMapClient connects the client and creates the map proxy
func setupMapClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	rpcClient, err = util.NewClient()
	if err != nil {
		return err
	}

	rpcMap = rpcClient.GetMap(viper.GetString("name"))
	return nil
}

func closeMapClient(_ *cobra.Command, _ []string) {
	if rpcClient != nil {
		rpcClient.Close()
	}
}
