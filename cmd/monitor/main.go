package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"wallet_monitor/internal/app/monitor"
	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
	"wallet_monitor/internal/infrastructure/chain"
	"wallet_monitor/internal/infrastructure/configloader"
	clientprovider "wallet_monitor/internal/infrastructure/network/client"
	networkdefinition "wallet_monitor/internal/infrastructure/network/definition"
	"wallet_monitor/internal/infrastructure/quote"
	"wallet_monitor/internal/infrastructure/restapi"
	"wallet_monitor/internal/infrastructure/targetloader"
	"wallet_monitor/internal/infrastructure/tokenloader"
	"wallet_monitor/internal/pkg/logger"
	"wallet_monitor/internal/pkg/metrics"
	"wallet_monitor/internal/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		logrus.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck
	slogLogger := logger.InstallSlog(zapLogger)

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))
	metrics.MustRegisterMetrics()

	quotes := buildQuoteSource(cfg, zapLogger)

	opts := []monitor.Option{
		monitor.WithLogger(zapLogger),
		monitor.WithNotifier(monitor.NewLogNotifier(zapLogger)),
	}
	balances, err := buildBalanceSource(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize balance source", zap.Error(err))
	}
	opts = append(opts, monitor.WithBalanceSource(balances))
	if cfg.Sources.Transfer == "simulated" {
		opts = append(opts, monitor.WithTransferSource(chain.NewSimulatedTransferSource(cfg.Sources.Seed+1, nil)))
	}

	facade := monitor.NewFacade(monitor.Config{
		BalanceInterval:  cfg.Monitor.BalanceInterval,
		TransferInterval: cfg.Monitor.TransferInterval,
		MaxWorkers:       cfg.Monitor.MaxWorkers,
		FetchTimeout:     cfg.Monitor.FetchTimeout,
		ShutdownGrace:    cfg.Monitor.ShutdownGrace,
		DefaultThreshold: cfg.Monitor.DefaultThreshold,
		Thresholds:       cfg.Monitor.Thresholds,
		IgnoreBaseline:   cfg.Monitor.IgnoreBaseline,
	}, quotes, opts...)

	registerTargets(facade, cfg, targetloader.NewTargetFileLoader(cfg.TargetsFile, slogLogger), zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runRetention(ctx, facade, cfg.Alerts, zapLogger)

	gin.SetMode(gin.ReleaseMode)
	router := restapi.SetupRouter(restapi.NewMonitorHandler(facade, zapLogger), zapLogger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down...")

	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := facade.Shutdown(); err != nil {
		zapLogger.Error("Monitor shutdown incomplete", zap.Error(err))
	}
	zapLogger.Info("Wallet monitor stopped")
}

func buildQuoteSource(cfg *configloader.Config, zapLogger *zap.Logger) port.QuoteSource {
	var src port.QuoteSource
	switch cfg.Quote.Provider {
	case "coingecko":
		cg := cfg.Quote.CoinGecko
		apiKey := cg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("COINGECKO_API_KEY")
		}
		src = quote.NewCoinGeckoSource(quote.CoinGeckoConfig{
			BaseURL:        cg.BaseURL,
			APIKey:         apiKey,
			VsCurrency:     cg.VsCurrency,
			RequestTimeout: cg.RequestTimeout,
			RateLimit:      cg.RateLimit,
			Burst:          cg.Burst,
			SymbolIDs:      cg.SymbolIDs,
		}, zapLogger)
	case "dexscreener":
		ds := cfg.Quote.DexScreener
		tokens := make(map[string]quote.DexToken, len(ds.Tokens))
		for symbol, t := range ds.Tokens {
			tokens[symbol] = quote.DexToken{Chain: t.Chain, Address: t.Address}
		}
		src = quote.NewDexScreenerSource(quote.DexScreenerConfig{
			BaseURL:        ds.BaseURL,
			RequestTimeout: ds.RequestTimeout,
			Tokens:         tokens,
		}, zapLogger)
	default:
		variation := cfg.Quote.Variation
		if variation == 0 {
			variation = quote.DefaultVariation
		}
		src = quote.NewMockSource(cfg.Quote.Prices, variation, cfg.Sources.Seed)
	}
	zapLogger.Info("Quote source initialized", zap.String("provider", cfg.Quote.Provider), zap.Duration("cacheTTL", cfg.Quote.CacheTTL))
	return quote.NewCachedSource(src, cfg.Quote.CacheTTL)
}

// buildBalanceSource reads EVM chains on-chain when configured; every other
// chain falls back to the simulated source.
func buildBalanceSource(cfg *configloader.Config, zapLogger *zap.Logger) (port.BalanceSource, error) {
	simulated := chain.NewSimulatedBalanceSource(cfg.Sources.Seed)
	if cfg.Sources.Balance != "evm" {
		return simulated, nil
	}

	networks := networkdefinition.NewNetworkDefinitionProvider(cfg.Networks, zapLogger)
	defs := networks.GetAllNetworkDefinitions()
	tokens, err := tokenloader.NewTokenLoader(cfg.TokensDir, slog.Default()).GetTokensByNetwork(defs)
	if err != nil {
		return nil, err
	}
	evm := chain.NewEVMBalanceSource(
		networks,
		clientprovider.NewEVMClientProvider(cfg.Sources.RPCCallTimeout, zapLogger),
		tokens,
		cfg.Sources.MaxBatchSize,
		zapLogger,
	)

	router := chain.NewBalanceRouter(simulated)
	for _, def := range defs {
		router.Route(def.Identifier, evm)
		router.Route(def.Name, evm)
	}
	return router, nil
}

func registerTargets(facade *monitor.Facade, cfg *configloader.Config, provider port.TargetProvider, zapLogger *zap.Logger) {
	var regs []entity.Registration
	for _, t := range cfg.Targets {
		kind, _ := entity.ParseTaskKind(t.Kind)
		regs = append(regs, entity.Registration{
			Kind:   kind,
			Target: entity.Target{Chain: t.Chain, Address: t.Address, PortfolioID: t.PortfolioID},
		})
	}
	if cfg.TargetsFile != "" {
		targets, err := provider.GetTargets()
		if err != nil {
			zapLogger.Error("Failed to load targets file", zap.String("path", cfg.TargetsFile), zap.Error(err))
		}
		for _, t := range targets {
			regs = append(regs, entity.Registration{Kind: entity.KindBalance, Target: t})
		}
	}

	for _, r := range regs {
		if _, err := facade.Register(r.Kind, r.Target); err != nil {
			zapLogger.Warn("Failed to register target", zap.String("kind", string(r.Kind)), zap.String("chain", r.Target.Chain), zap.String("address", r.Target.Address), zap.Error(err))
		}
	}
	zapLogger.Info("Initial targets registered", zap.Int("count", len(facade.Targets())))
}

func runRetention(ctx context.Context, facade *monitor.Facade, cfg configloader.AlertsConfig, zapLogger *zap.Logger) {
	ticker := time.NewTicker(cfg.PruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := facade.PruneOldAlerts(cfg.Retention)
			zapLogger.Debug("Alert retention run", zap.Int("removed", removed))
		}
	}
}
