// Command mgquery runs read-only DQL queries against a Dgraph cluster whose
// alphas are listed in MG_ALPHAS.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"
	"github.com/pkg/errors"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grapl-security/graphkit/config"
	"github.com/grapl-security/graphkit/dgraph"
)

func main() {
	fs := flag.NewFlagSet("mgquery", flag.ExitOnError)
	var (
		query    = fs.String("query", "{ q(func: has(node_key), first: 10) { uid node_key } }", "DQL query to run")
		interval = fs.Duration("interval", 0, "repeat the query at this interval; 0 runs it once")
		reinit   = fs.Bool("reinit", false, "force a new client, on a freshly picked alpha, before every query")
		timeout  = fs.Duration("timeout", 10*time.Second, "per-query timeout")
	)
	fs.Usage = usageFor(fs, os.Args[0]+" [flags]")
	fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stderr, cfg)
	if err := cfg.Validate(); err != nil {
		level.Error(logger).Log("during", "config", "err", err)
		os.Exit(1)
	}

	constructions := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: "graphkit",
		Subsystem: "dgraph",
		Name:      "client_constructions_total",
		Help:      "Total count of Dgraph clients constructed, by alpha.",
	}, []string{"alpha"})

	provider := dgraph.NewProvider(
		cfg.Instancer(),
		dgraph.WithLogger(log.With(logger, "component", "provider")),
		dgraph.WithConstructions(constructions),
	)

	err = runGroup(provider, readOnlyQuery, queryOptions{
		query:    *query,
		interval: *interval,
		reinit:   *reinit,
		timeout:  *timeout,
	}, cfg.MetricsAddr, os.Stdout, logger)
	os.Exit(shutdown(provider, err, logger))
}

type queryOptions struct {
	query    string
	interval time.Duration
	reinit   bool
	timeout  time.Duration
}

// runGroup runs the query loop next to the optional metrics listener and a
// signal handler, returning once any of them stops.
func runGroup(src clientSource, do querier, opts queryOptions, metricsAddr string, w io.Writer, logger log.Logger) error {
	var g run.Group
	{
		ctx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			return runQueries(ctx, src, do, w, opts.query, opts.interval, opts.reinit, opts.timeout, logger)
		}, func(error) {
			cancel()
		})
	}
	if metricsAddr != "" {
		ln, err := net.Listen("tcp", metricsAddr)
		if err != nil {
			level.Error(logger).Log("transport", "metrics/HTTP", "during", "Listen", "err", err)
			return err
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		g.Add(func() error {
			level.Info(logger).Log("transport", "metrics/HTTP", "addr", metricsAddr)
			return http.Serve(ln, mux)
		}, func(error) {
			ln.Close()
		})
	}
	g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))
	return g.Run()
}

// shutdown releases the provider's client and maps the run error to an exit
// code. A signal is a clean exit.
func shutdown(provider io.Closer, err error, logger log.Logger) int {
	if cerr := provider.Close(); cerr != nil {
		level.Warn(logger).Log("during", "close", "err", cerr)
	}
	var sig run.SignalError
	switch {
	case err == nil, errors.As(err, &sig):
		level.Info(logger).Log("exit", err)
		return 0
	default:
		level.Error(logger).Log("exit", err)
		return 1
	}
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "ENVIRONMENT\n")
		fmt.Fprintf(os.Stderr, "  MG_ALPHAS        comma-separated alpha endpoints (required)\n")
		fmt.Fprintf(os.Stderr, "  MG_LOG_LEVEL     debug, info, warn or error (default info)\n")
		fmt.Fprintf(os.Stderr, "  MG_LOG_FORMAT    logfmt or json (default logfmt)\n")
		fmt.Fprintf(os.Stderr, "  MG_METRICS_ADDR  serve /metrics on this address\n")
	}
}

// clientSource is the part of *dgraph.Provider the query loop needs.
type clientSource interface {
	Client(forceReinit bool) (*dgraph.Client, error)
}

// querier runs one read-only query on a client.
type querier func(ctx context.Context, c *dgraph.Client, q string) ([]byte, error)

func readOnlyQuery(ctx context.Context, c *dgraph.Client, q string) ([]byte, error) {
	txn := c.NewReadOnlyTxn()
	defer txn.Discard(ctx)
	resp, err := txn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return resp.Json, nil
}

// runQueries runs q once, then every interval until ctx is done. Query errors
// after the first run are logged and the loop carries on; a configuration
// error always ends it.
func runQueries(ctx context.Context, src clientSource, do querier, w io.Writer, q string, interval time.Duration, reinit bool, timeout time.Duration, logger log.Logger) error {
	once := func() error {
		c, err := src.Client(reinit)
		if err != nil {
			return err
		}
		qctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		begin := time.Now()
		out, err := do(qctx, c, q)
		level.Debug(logger).Log("alpha", c.Addr(), "took", time.Since(begin), "err", err)
		if err != nil {
			return errors.Wrapf(err, "query %s", c.Addr())
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	}

	if err := once(); err != nil || interval <= 0 {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := once(); err != nil {
				if dgraph.IsConfigurationError(err) {
					return err
				}
				level.Warn(logger).Log("during", "query", "err", err)
			}
		}
	}
}
