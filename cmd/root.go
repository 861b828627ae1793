package cmd

import (
	"fmt"
	"github.com/ValentinKolb/hzwire/cmd/cluster"
	"github.com/ValentinKolb/hzwire/cmd/frames"
	"github.com/ValentinKolb/hzwire/cmd/imap"
	"github.com/ValentinKolb/hzwire/cmd/serve"
	"github.com/ValentinKolb/hzwire/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "hzwire",
		Short: "Hazelcast client protocol toolkit",
		Long: fmt.Sprintf(`hzwire (v%s)

A Hazelcast client protocol implementation written in Go: frame codecs,
a thin map client, a stub member for local testing and tools to inspect
encoded messages.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of hzwire",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hzwire v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(cluster.ClusterCommands)
	RootCmd.AddCommand(imap.MapCommands)
	RootCmd.AddCommand(frames.FramesCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("the level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
