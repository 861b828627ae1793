// Package tcp implements the TCP socket transport of hzwire. It provides
// concrete implementations of the base package's connector interfaces.
//
// This package builds on the base package's transport functionality, inheriting
// connection pooling, buffer reuse, fragmentation and request correlation. See
// the base package documentation for the underlying transport mechanisms.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// Both connectors apply the socket options of common.SocketConf and
// common.TCPConf (no delay, keep alive, linger, buffer sizes) to every
// connection. The default server buffer size is 512 KB.
package tcp
