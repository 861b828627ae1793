package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Socket configuration (shared by client and server)
// --------------------------------------------------------------------------

// SocketConf holds the options of every stream socket
type SocketConf struct {
	// WriteBufferSize is the size of the socket write buffer, 0 keeps the os default
	WriteBufferSize int
	// ReadBufferSize is the size of the socket read buffer, 0 keeps the os default
	ReadBufferSize int
}

// TCPConf holds options only applied to tcp connections
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	// TCPLingerSec < 0 keeps the os default
	TCPLingerSec int
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig holds the parameters of the member side transport
type ServerTransportConfig struct {
	// Endpoint is a host:port for tcp or a socket path for unix
	Endpoint string
	// WorkersPerConn limits the requests processed concurrently per connection
	WorkersPerConn int
	// MaxFrameSize is the largest frame accepted on the wire
	MaxFrameSize int
	// FragmentSize is the wire size above which responses are fragmented, 0 disables fragmentation
	FragmentSize int
	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters of the stub member.
type ServerConfig struct {
	// ClusterName must match the cluster name of authenticating clients
	ClusterName string
	// PartitionCount is reported to clients on authentication
	PartitionCount int32
	// TimeoutSecond is the read and write deadline of connections, 0 disables deadlines
	TimeoutSecond int64
	// LogLevel is one of debug, info, warn, error
	LogLevel string

	Transport ServerTransportConfig
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Member")
	addField("Cluster Name", c.ClusterName)
	addField("Partition Count", strconv.Itoa(int(c.PartitionCount)))

	addSection("Transport")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Conn", strconv.Itoa(c.Transport.WorkersPerConn))
	addField("Max Frame Size", formatBytes(c.Transport.MaxFrameSize))
	addField("Fragment Size", formatBytes(c.Transport.FragmentSize))
	addSocketFields(addField, c.Transport.SocketConf, c.Transport.TCPConf)

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the parameters of the client side transport
type ClientTransportConfig struct {
	Endpoints              []string
	RetryCount             int
	ConnectionsPerEndpoint int
	// MaxFrameSize is the largest frame accepted on the wire
	MaxFrameSize int
	// FragmentSize is the wire size above which requests are fragmented, 0 disables fragmentation
	FragmentSize int
	SocketConf
	TCPConf
}

// ClientConfig holds the parameters of a client, the credentials are sent on authentication
type ClientConfig struct {
	ClusterName   string
	ClientName    string
	Username      string
	Password      string
	Labels        []string
	TimeoutSecond int

	Transport ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Cluster Name", c.ClusterName)
	addField("Client Name", c.ClientName)
	if c.Username != "" {
		addField("Username", c.Username)
		addField("Password", strings.Repeat("*", len(c.Password)))
	}
	addField("Labels", strings.Join(c.Labels, ","))
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.Transport.ConnectionsPerEndpoint)))))
	addField("Max Frame Size", formatBytes(c.Transport.MaxFrameSize))
	addField("Fragment Size", formatBytes(c.Transport.FragmentSize))
	addSocketFields(addField, c.Transport.SocketConf, c.Transport.TCPConf)

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func addSocketFields(addField func(name, value string), socket SocketConf, tcp TCPConf) {
	addField("Write Buffer", formatBytes(socket.WriteBufferSize))
	addField("Read Buffer", formatBytes(socket.ReadBufferSize))
	addField("TCP No Delay", strconv.FormatBool(tcp.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", tcp.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", tcp.TCPLingerSec))
}

// formatBytes formats a size in bytes, 0 is shown as default
func formatBytes(n int) string {
	switch {
	case n <= 0:
		return "default"
	case n%(1024*1024) == 0:
		return fmt.Sprintf("%d MB", n/(1024*1024))
	case n%1024 == 0:
		return fmt.Sprintf("%d KB", n/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
