package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/denismitr/todostore"
	"github.com/denismitr/todostore/internal/config"
	"github.com/denismitr/todostore/internal/httpapi"
	"github.com/denismitr/todostore/internal/lru"
	"github.com/denismitr/todostore/internal/paywall"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: todostore [serve|validate] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  serve     run the http api (default)")
	fmt.Fprintln(w, "  validate  check payment configuration, routes and the facilitator")
	fmt.Fprintln(w)
	fmt.Fprintln(w, config.Describe())
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFiles := fs.String("env-file", ".env.local,.env", "comma separated dotenv files, missing ones are skipped")
	skipFacilitator := fs.Bool("skip-facilitator", false, "validate: do not contact the facilitator")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(splitList(*envFiles)...)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}

	switch cmd {
	case "serve":
		if err := serve(cfg); err != nil {
			fmt.Fprintf(stderr, "todostore: %v\n", err)
			return 1
		}
		return 0
	case "validate":
		return validate(cfg, !*skipFacilitator, stdout)
	default:
		usage(stderr)
		return 2
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func newLogger(app config.AppConfig) (*zap.Logger, error) {
	var log *zap.Logger
	var err error
	if app.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not build logger")
	}

	return log.With(zap.String("service", app.Name)), nil
}

func newResponseCache(maxBytes int64) (httpapi.ResponseCache, error) {
	if maxBytes < 0 {
		return lru.NullCache{}, nil
	}

	budget := uint64(maxBytes)
	if budget == 0 {
		budget = lru.DefaultMaxBytes()
	}

	return lru.NewCache(lru.DefaultShards, budget, nil)
}

func newPaywall(ctx context.Context, cfg config.PaymentConfig, log *zap.Logger) (*paywall.Paywall, error) {
	if cfg.Disabled {
		log.Warn("paywall disabled, every route is free")
		return nil, nil
	}

	if err := paywall.ValidateAddresses(cfg.EVMAddress, cfg.SVMAddress); err != nil {
		return nil, err
	}

	routes := paywall.DefaultRoutes(cfg.EVMAddress, cfg.SVMAddress)
	if _, err := paywall.ValidateRoutes(routes); err != nil {
		return nil, err
	}

	client := paywall.NewFacilitatorClient(cfg.FacilitatorURL, cfg.FacilitatorTimeout.Duration())
	pw, err := paywall.New(client, routes, log.Named("paywall"))
	if err != nil {
		return nil, err
	}

	// without the fee payer solana clients cannot build a payment, but evm
	// payments still work so this is not fatal
	if _, err := pw.Sync(ctx); err != nil {
		log.Warn("could not sync facilitator payment kinds", zap.Error(err))
	}

	return pw, nil
}

func serve(cfg config.Config) error {
	log, err := newLogger(cfg.App)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc, err := newResponseCache(cfg.Cache.MaxBytes)
	if err != nil {
		return errors.Wrap(err, "could not create response cache")
	}
	cache := httpapi.NewListCache(rc)

	store, closeStore, err := todostore.OpenDSN(ctx, cfg.Store.DSN, &todostore.Config{
		TolerateCorruptDocument: cfg.Store.TolerateCorrupt,
		Watch:                   cfg.Store.Watch,
		OnChange:                cache.Invalidate,
		Logger:                  log.Named("store"),
	})
	if err != nil {
		return errors.Wrapf(err, "could not open store %s", cfg.Store.DSN)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("could not close store", zap.Error(err))
		}
	}()

	pw, err := newPaywall(ctx, cfg.Payment, log)
	if err != nil {
		return err
	}

	router, err := httpapi.NewRouter(httpapi.Options{
		Store:   store,
		Cache:   cache,
		Paywall: pw,
		Logger:  log.Named("http"),
		AppName: cfg.App.Name,
		Env:     cfg.App.Env,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", server.Addr),
			zap.String("store", cfg.Store.DSN),
			zap.Bool("paywall", pw != nil))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}

	return nil
}
