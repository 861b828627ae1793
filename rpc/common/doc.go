// Package common provides the configuration structures and the logging setup
// shared by the transport, client and member packages of hzwire.
//
// The package focuses on:
//   - Configuration structures for client and member components
//   - Custom logging implementation integrated with Dragonboat's logger package
//
// Key Components:
//
//   - ClientConfig: Credentials and cluster name sent on authentication, the
//     invocation timeout and the transport parameters (endpoints, retries,
//     connections per endpoint, frame and fragment sizes, socket options).
//
//   - ServerConfig: Configuration of the stub member: the cluster name clients
//     must present, the partition count reported to them, and the transport
//     parameters (endpoint, workers per connection, socket options).
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's
//     logger factory, so every package logger created with logger.GetLogger
//     shares one format. Logs are written to stderr.
package common
