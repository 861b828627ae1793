// Package cmd implements the command-line interface of hzwire. It provides a
// hierarchical command structure with operations for running a stub member and
// interacting with a cluster as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Command for starting and configuring the stub member
//   - cluster: Commands for cluster level operations (ping)
//   - imap: Commands for map operations (put, get, remove, size, entries, perf)
//   - frames: Commands for inspecting encoded messages
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can be set as environment variables with the HZWIRE_ prefix,
// e.g. HZWIRE_CLUSTER_NAME=dev. The files .env and .env.local are loaded on start.
//
// See hzwire -help for a list of all commands.
package cmd
