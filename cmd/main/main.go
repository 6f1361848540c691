package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stocksdash/src/cache"
	"stocksdash/src/config"
	"stocksdash/src/freshness"
	"stocksdash/src/helpers"
	"stocksdash/src/interfaces"
	"stocksdash/src/logger"
	"stocksdash/src/market"
	"stocksdash/src/network"
	"stocksdash/src/quotes"
	"stocksdash/src/server"
	"stocksdash/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger.Configure(cfg.MConfig)
	appLogger := logger.NewLogger(cfg.Name)

	// 2. Persistent store; a failure to open degrades to memory-only
	var store interfaces.ICacheStore

	switch cfg.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresCacheStore(cfg.MConfig, logger.NewLogger("PostgresCacheStore"))
	default:
		store, err = storage.NewSQLiteCacheStore(cfg.MConfig, logger.NewLogger("SQLiteCacheStore"))
	}
	if err == nil {
		// Databases can be slow to come up right after boot; retry briefly
		// before falling back to memory-only mode.
		err = helpers.RetryWithBackoff(3, time.Second, store.Initialize)
	}
	if err != nil {
		appLogger.Error("Persistent cache unavailable, running memory-only: %v", err)
		store = storage.NewNopStore()
	}

	// 3. Core components
	memCache := cache.NewMemoryCache()
	oracle := market.NewOracle(logger.NewLogger("MarketOracle"))
	policy := freshness.NewPolicy(cfg.Cache, oracle.Status)
	netMgr := network.NewManager(cfg.MConfig, logger.NewLogger("Network"))
	provider := quotes.NewYahooProvider(cfg.MConfig, netMgr)
	engine := quotes.NewEngine(cfg.MConfig, memCache, store, provider, policy)

	// 4. Seed the cache from disk (prune + filtered load)
	engine.LoadAtStartup()

	// 5. Start the delivery surface
	var srv interfaces.IDataExchanger = server.NewAPIServer(cfg.MConfig, logger.NewLogger("APIServer"), engine, oracle)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	appLogger.Info("%s started", cfg.Name)

	// 6. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("Shutting down...")

	// 7. Let in-flight fetches land in the cache, stop the delivery
	// surface, then flush. Undelivered updates are dropped; their data is
	// already cached and reaches the flush.
	engine.Wait()
	srv.Stop()
	engine.FlushAtShutdown()
	if err := store.Close(); err != nil {
		appLogger.Error("Failed to close store: %v", err)
	}

	appLogger.Info("Shutdown complete")
}
