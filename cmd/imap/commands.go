package imap

import (
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"time"
)

var (
	putTTL time.Duration

	putCmd = &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Sets the value for a key and prints the previous value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			var previous []byte
			var err error
			if putTTL > 0 {
				previous, err = rpcMap.PutWithTTL(context.Background(), []byte(key), []byte(value), putTTL)
			} else {
				previous, err = rpcMap.Put(context.Background(), []byte(key), []byte(value))
			}
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, previous=%s\n", key, formatValue(previous))
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := rpcMap.Get(context.Background(), []byte(key))
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%v, value=%s\n", key, value != nil, formatValue(value))
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:   "remove [key]",
		Short: "Removes a key and prints the removed value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			removed, err := rpcMap.Remove(context.Background(), []byte(key))
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, removed=%s\n", key, formatValue(removed))
			return nil
		},
	}
	sizeCmd = &cobra.Command{
		Use:   "size",
		Short: "Prints the number of entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := rpcMap.Size(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(size)
			return nil
		},
	}
	entriesCmd = &cobra.Command{
		Use:   "entries",
		Short: "Prints all entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := rpcMap.EntrySet(context.Background())
			if err != nil {
				return err
			}
			for _, entry := range entries {
				fmt.Printf("%s=%s\n", entry.Key, formatValue(entry.Value))
			}
			return nil
		},
	}
)

func init() {
	putCmd.Flags().DurationVar(&putTTL, "ttl", 0, "Time to live of the entry (0 keeps it forever)")
}

// formatValue prints null for a missing value
func formatValue(value []byte) string {
	if value == nil {
		return "<null>"
	}
	return string(value)
}
