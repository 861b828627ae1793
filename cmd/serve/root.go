package serve

import (
	"context"
	"fmt"
	cmdUtil "github.com/ValentinKolb/hzwire/cmd/util"
	"github.com/ValentinKolb/hzwire/rpc/common"
	"github.com/ValentinKolb/hzwire/rpc/server"
	"github.com/ValentinKolb/hzwire/rpc/transport"
	"github.com/ValentinKolb/hzwire/rpc/transport/base"
	"github.com/ValentinKolb/hzwire/rpc/transport/tcp"
	"github.com/ValentinKolb/hzwire/rpc/transport/unix"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start a stub member",
		Long:    `Start a stub member with the specified configuration. The member answers authentication, ping and map operations from memory. The configuration can be set via command line flags or environment variables. The format of the environment variables is HZWIRE_<flag> (e.g. HZWIRE_CLUSTER_NAME=dev)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// add flags
	key := "cluster-name"
	ServeCmd.PersistentFlags().String(key, "dev", cmdUtil.WrapString("The name of the cluster, clients of other clusters are rejected"))

	key = "partition-count"
	ServeCmd.PersistentFlags().Int32(key, 271, cmdUtil.WrapString("The partition count reported to clients"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:5701", cmdUtil.WrapString("The address on which the member will listen (e.g. 0.0.0.0:5701, /tmp/hzwire.sock, ...)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 0, cmdUtil.WrapString("Read and write deadline of connections in seconds (0 disables deadlines, idle clients are disconnected otherwise)"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, base.DefaultWorkersPerConn, cmdUtil.WrapString("Requests processed concurrently per connection"))

	key = "max-frame-size"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The largest frame accepted in bytes (0 uses the default of 32 MB)"))

	key = "fragment-size"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Responses larger than this many bytes are sent as fragments (0 disables fragmentation)"))

	key = "write-buffer"
	ServeCmd.PersistentFlags().Int(key, 512, cmdUtil.WrapString("The size of the socket write buffer (in KB)"))

	key = "read-buffer"
	ServeCmd.PersistentFlags().Int(key, 512, cmdUtil.WrapString("The size of the socket read buffer (in KB)"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval in seconds (only for tcp)"))

	key = "tcp-linger"
	ServeCmd.PersistentFlags().Int(key, -1, cmdUtil.WrapString("The linger time in seconds (only for tcp, -1 keeps the os default)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.ClusterName = viper.GetString("cluster-name")
	serveCmdConfig.PartitionCount = viper.GetInt32("partition-count")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Transport = common.ServerTransportConfig{
		Endpoint:       viper.GetString("endpoint"),
		WorkersPerConn: viper.GetInt("workers-per-conn"),
		MaxFrameSize:   viper.GetInt("max-frame-size"),
		FragmentSize:   viper.GetInt("fragment-size"),
		SocketConf: common.SocketConf{
			WriteBufferSize: viper.GetInt("write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("read-buffer") * 1024,
		},
		TCPConf: common.TCPConf{
			TCPNoDelay:      viper.GetBool("tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("tcp-linger"),
		},
	}

	if serveCmdConfig.ClusterName == "" {
		return fmt.Errorf("cluster name must not be empty")
	}
	if serveCmdConfig.PartitionCount <= 0 {
		return fmt.Errorf("partition count must be positive, got %d", serveCmdConfig.PartitionCount)
	}

	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the stub member and stops it on SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {

	// Parse the transport
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "tcp":
		t = tcp.NewTCPDefaultServerTransport()
	case "unix":
		t = unix.NewUnixDefaultServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	serv := server.NewRPCServer(*serveCmdConfig, t)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		serv.Close()
	}()

	return serv.Serve()
}
