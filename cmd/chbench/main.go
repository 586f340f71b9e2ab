// Command chbench issues a configurable number of Ping round trips
// through the resilience layer against one or more servers, reporting
// success/failure counts and the distinct failure messages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	ch "github.com/netgraph-io/chwire"
	"github.com/netgraph-io/chwire/resilience"
)

func main() {
	var (
		dsn    = flag.String("dsn", "host=localhost;port=9000", "connection string, e.g. host=localhost;port=9000;compress=true")
		n      = flag.Int("n", 100, "number of requests to issue")
		concur = flag.Int("c", 8, "concurrent workers")
	)
	flag.Parse()

	if err := run(*dsn, *n, *concur); err != nil {
		log.Fatal(err)
	}
}

func run(dsn string, n, concurrency int) error {
	opt, err := ch.DecodeConnectionString(dsn)
	if err != nil {
		return fmt.Errorf("decode connection string: %w", err)
	}

	lg, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	conn, err := resilience.NewConnFromDSN(opt)
	if err != nil {
		return fmt.Errorf("build resilient connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	work := make(chan int, n)
	for i := 0; i < n; i++ {
		work <- i
	}
	close(work)

	results := make(chan error, n)
	for w := 0; w < concurrency; w++ {
		go func() {
			for range work {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				results <- conn.Ping(ctx)
				cancel()
			}
		}()
	}

	var ok, failed int
	var failures []string
	for i := 0; i < n; i++ {
		if err := <-results; err != nil {
			failed++
			failures = append(failures, err.Error())
		} else {
			ok++
		}
	}

	fmt.Printf("requests=%d ok=%d failed=%d\n", n, ok, failed)
	if failed > 0 {
		fmt.Fprintln(os.Stderr, strings.Join(uniq(failures), "\n"))
	}
	return nil
}

func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
