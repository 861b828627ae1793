package imap

import (
	"context"
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/hzwire/cmd/util"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"github.com/ValentinKolb/hzwire/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for map operations",
		Long:    "Runs parallel benchmarks of the map operations against the cluster. All keys are written to the map given by --name and removed afterwards.",
		Args:    cobra.NoArgs,
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

// perfTest is one benchmark. prepare runs once before the timer starts,
// op is called in parallel with a counter unique to the goroutine.
type perfTest struct {
	name    string
	prepare bool
	op      func(ctx context.Context, key []byte, counter int) error
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("How large the value for the put-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfKeySpread <= 0 {
		return fmt.Errorf("keys must be positive, got %d", perfKeySpread)
	}
	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for map operations")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Map: %s\n", rpcMap.Name())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	smallValue := []byte("test")
	largeValue := make([]byte, perfLargeValueSizeKB*1024)

	tests := []perfTest{
		{name: "put", op: func(ctx context.Context, key []byte, _ int) error {
			_, err := rpcMap.Put(ctx, key, smallValue)
			return err
		}},
		{name: "put-large", op: func(ctx context.Context, key []byte, _ int) error {
			_, err := rpcMap.Put(ctx, key, largeValue)
			return err
		}},
		{name: "get", prepare: true, op: func(ctx context.Context, key []byte, _ int) error {
			_, err := rpcMap.Get(ctx, key)
			return err
		}},
		{name: "get-missing", op: func(ctx context.Context, key []byte, _ int) error {
			_, err := rpcMap.Get(ctx, key)
			return err
		}},
		{name: "remove", prepare: true, op: func(ctx context.Context, key []byte, _ int) error {
			_, err := rpcMap.Remove(ctx, key)
			return err
		}},
		{name: "size", op: func(ctx context.Context, _ []byte, _ int) error {
			_, err := rpcMap.Size(ctx)
			return err
		}},
		{name: "put-all", op: func(ctx context.Context, key []byte, _ int) error {
			return rpcMap.PutAll(ctx, []codec.Entry[[]byte, []byte]{{Key: key, Value: smallValue}})
		}},
		{name: "mixed", prepare: true, op: func(ctx context.Context, key []byte, counter int) error {
			var err error
			switch counter % 3 {
			case 0: // put
				_, err = rpcMap.Put(ctx, key, smallValue)
			case 1: // get
				_, err = rpcMap.Get(ctx, key)
			case 2: // remove
				_, err = rpcMap.Remove(ctx, key)
			}
			return err
		}},
	}

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	for _, test := range tests {
		result := testing.Benchmark(func(b *testing.B) {
			if shouldSkip(test.name) {
				return
			}
			runPerfTest(b, test)
		})
		results[test.name] = result
		printResult(test.name, result)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runPerfTest runs one benchmark and removes its keys afterwards
func runPerfTest(b *testing.B, test perfTest) {
	ctx := context.Background()

	// prepare keys
	getKey, iter := getKeys(test.name)

	// set keys
	if test.prepare {
		iter(func(k []byte) {
			if _, err := rpcMap.Put(ctx, k, []byte("test")); err != nil {
				log.Printf("(%s) - error setting key: %v\n", test.name, err)
			}
		})
	}

	// cleanup
	b.Cleanup(func() {
		iter(func(k []byte) {
			if _, err := rpcMap.Remove(ctx, k); err != nil {
				log.Printf("(%s) - error removing key: %v\n", test.name, err)
			}
		})
	})

	b.SetParallelism(perfNumThreads)

	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			if err := test.op(ctx, getKey(counter), counter); err != nil {
				log.Printf("(%s) - error: %v\n", test.name, err)
			}
			counter++
		}
	})
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) []byte, func(func([]byte))) {
	keys := make([][]byte, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = []byte(fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i))
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) []byte {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func([]byte)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"Map", "Transport", "FragmentSize",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.Transport.RetryCount),
			strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
			rpcMap.Name(),
			viper.GetString("transport"),
			strconv.Itoa(config.Transport.FragmentSize),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
