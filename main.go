package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pricetrack/config"
	"pricetrack/database"
	"pricetrack/handlers"
	"pricetrack/locker"
	"pricetrack/middleware"
	"pricetrack/repository"
	"pricetrack/scheduler"
	"pricetrack/scraper"
	"pricetrack/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	sweepOnce := flag.Bool("sweep-once", false, "run a single price sweep and exit")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	apiCfg := config.DefaultAPIConfig()
	trackerCfg := config.LoadTrackerConfig()
	amazonCfg := config.LoadAmazonConfig()
	mailCfg := config.LoadMailConfig()
	redisCfg := config.LoadRedisConfig()

	db, err := database.InitDatabase(config.LoadDatabaseConfig())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase(db)

	if err := database.CreateTables(context.Background(), db); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	metrics := scraper.NewMetrics()
	fetcher := scraper.NewStaticFetcher(trackerCfg, metrics)

	var renderer scraper.Renderer
	if trackerCfg.BrowserEnabled {
		renderer = scraper.NewBrowserRenderer(trackerCfg, metrics)
	} else {
		log.Println("Headless browser disabled, category listings skip the rendered tier")
	}
	resolver := scraper.NewResolver(trackerCfg, amazonCfg, fetcher, renderer, metrics)

	var notifier services.Notifier
	if mailCfg.IsValid() {
		notifier = services.NewEmailNotifier(mailCfg)
	} else {
		log.Println("⚠️  SMTP not configured, price alerts will only be logged")
	}

	var locks locker.Locker
	if redisCfg.Enabled() {
		rdb, err := locker.NewRedisClient(redisCfg)
		if err != nil {
			log.Fatalf("Failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		locks = locker.NewRedisLocker(rdb, trackerCfg.LockTTL)
	}

	updateService := services.NewPriceUpdateService(
		productRepo, userRepo, resolver,
		services.NewCurrencyNormalizer(trackerCfg.CurrencyRates),
		notifier, locks,
	)
	sweeper := scheduler.NewSweeper(productRepo, updateService, trackerCfg.FreshnessWindow, metrics)
	priceChecker := scheduler.NewPriceChecker(sweeper, trackerCfg.SweepSchedule)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *sweepOnce {
		result, err := priceChecker.RunOnce(ctx)
		if err != nil {
			log.Fatalf("Price sweep failed: %v", err)
		}
		log.Printf("Price sweep complete: %s", result)
		return
	}

	if err := priceChecker.Start(); err != nil {
		log.Fatalf("Failed to start price checker: %v", err)
	}
	defer priceChecker.Stop()

	// Setup router
	r := mux.NewRouter()
	if apiCfg.LoggingEnabled {
		r.Use(middleware.LoggingMiddleware)
	}
	r.Use(middleware.RateLimitMiddleware(apiCfg))

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")
	h := handlers.NewHandlers(productRepo, categoryRepo, updateService, resolver, apiCfg.MaxRequestSize)
	h.RegisterRoutes(r)

	c := cors.New(cors.Options{
		AllowedOrigins:   apiCfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", middleware.UserIDHeader},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         apiCfg.Addr(),
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: apiCfg.RequestTimeout,
	}

	go func() {
		log.Printf("🌐 Server starting on %s", srv.Addr)
		log.Printf("   POST /api/v1/products - Track a product")
		log.Printf("   GET  /api/v1/dashboard - Tracked products by category")
		log.Printf("   GET  /api/v1/browse/{category} - Browse a category")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
