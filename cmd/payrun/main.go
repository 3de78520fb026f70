package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simaogato/payrun/internal/adapter/keystore"
	solanaadapter "github.com/simaogato/payrun/internal/adapter/solana"
	"github.com/simaogato/payrun/internal/config"
	"github.com/simaogato/payrun/internal/logging"
	"github.com/simaogato/payrun/internal/metrics"
	"github.com/simaogato/payrun/internal/usecase/orchestrator"
	"github.com/simaogato/payrun/internal/usecase/poller"
	"github.com/simaogato/payrun/internal/usecase/reporter"
	"github.com/simaogato/payrun/internal/usecase/submitter"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the payment run file")
	workers := flag.Int("workers", orchestrator.DefaultWorkers, "max concurrent ledger calls per phase, 0 or less removes the bound")
	metricsAddr := flag.String("metrics-addr", "", "expose Prometheus metrics on this address for the duration of the run")
	flag.Parse()

	// 1. Logger
	logger := logging.New(logging.FromEnv())

	// 2. Load the payment run
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load payment run", "path", *configPath, "error", err)
		os.Exit(1)
	}

	// A signal cancels in-flight work; outcomes gathered so far still reach
	// the summary.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 3. Metrics
	m := metrics.New()
	if *metricsAddr != "" {
		server := &http.Server{Addr: *metricsAddr, Handler: promhttp.Handler()}
		go func() {
			logger.Info("metrics server listening", "addr", *metricsAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			_ = server.Shutdown(context.Background())
		}()
	}

	// 4. Adapters: one shared RPC client serves every worker
	ledger := solanaadapter.NewClient(cfg.RPCURL)
	keyring := keystore.NewFileKeyring()

	// 5. Pipeline services
	submitService := submitter.New(ledger, keyring,
		submitter.WithLogger(logger),
		submitter.WithMetrics(m),
	)
	pollService := poller.New(ledger,
		poller.Policy{Interval: cfg.PollInterval, MaxAttempts: cfg.MaxPollAttempts},
		poller.WithLogger(logger),
		poller.WithMetrics(m),
	)
	runService := orchestrator.New(submitService, pollService,
		orchestrator.WithWorkers(*workers),
		orchestrator.WithLogger(logger),
	)

	// 6. Execute the run and report
	logger.Info("starting payment run",
		"transfers", len(cfg.Transfers),
		"rpc_url", cfg.RPCURL,
		"workers", *workers,
	)

	submissions, confirmations, elapsed := runService.Run(ctx, cfg.Transfers)

	summary := reporter.Summarize(submissions, confirmations, elapsed)
	reporter.Render(os.Stdout, summary)
}
