package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"github.com/rs/cors"

	"github.com/iliyamo/thai-itinerary/internal/config"
	"github.com/iliyamo/thai-itinerary/internal/database"
	"github.com/iliyamo/thai-itinerary/internal/handler"
	"github.com/iliyamo/thai-itinerary/internal/middleware"
	"github.com/iliyamo/thai-itinerary/internal/model"
	"github.com/iliyamo/thai-itinerary/internal/queue"
	"github.com/iliyamo/thai-itinerary/internal/repository"
	"github.com/iliyamo/thai-itinerary/internal/router"
	"github.com/iliyamo/thai-itinerary/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}
	if cfg.Seed {
		seeded, err := database.Seed(ctx, db)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		if seeded {
			log.Printf("seeded demo reference data and recommended itineraries")
		}
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		created, err := users.EnsureUser(ctx, cfg.AdminUsername, "Administrator", cfg.AdminPassword, model.RoleAdmin, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
		if created {
			log.Printf("created admin account %q", cfg.AdminUsername)
		}
	}

	// Events are optional; without a broker creation simply isn't announced.
	qcfg := config.LoadQueueConfig()
	var pub service.Publisher
	if qcfg.Enabled {
		pub = service.NewAMQPPublisher(qcfg.URL, qcfg.Queue)
		if qcfg.ConsumerEnabled {
			consumer := &queue.Consumer{URL: qcfg.URL, Queue: qcfg.Queue, LogDir: qcfg.LogDir}
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("itinerary-consumer stopped: %v", err)
				}
			}()
		}
	}

	itineraries := service.NewItineraryService(repository.NewItineraryRepo(db), pub)
	catalog := service.NewCatalogService(
		repository.NewLocationRepo(db),
		repository.NewHotelRepo(db),
		repository.NewActivityRepo(db),
	)

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unavailable: response cache off, rate limiting in-process")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	e := echo.New()
	e.HideBanner = true
	if cfg.Env == "dev" {
		e.Logger.SetLevel(glog.DEBUG)
	} else {
		e.Logger.SetLevel(glog.INFO)
	}
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s id=%s err=%v", v.Method, v.URI, v.Status, v.Latency, v.RequestID, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	// Identity first so the limiter can key on the user.
	e.Use(middleware.OptionalAuth(cfg.JWTSecret, tokens))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	auth := router.Auth{Secret: cfg.JWTSecret, Revoked: tokens, Users: users}
	cache := router.Cache{
		Read:       middleware.NewRedisCache(cacheCfg, rdb),
		Invalidate: middleware.InvalidateCache(cacheCfg, rdb),
	}
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), auth)
	router.RegisterItineraries(e, handler.NewItineraryHandler(itineraries), auth, cache)
	router.RegisterCatalog(e, handler.NewCatalogHandler(catalog), auth, cache)

	go purgeRevokedTokens(ctx, tokens)

	corsCfg := config.LoadCORSConfig()
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: cors.New(cors.Options{
			AllowedOrigins:   corsCfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}).Handler(e),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (env=%s)", srv.Addr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	log.Println("server stopped")
}

// purgeRevokedTokens drops deny-list rows for tokens that have expired on
// their own.
func purgeRevokedTokens(ctx context.Context, tokens *repository.TokenRepo) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			pctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			n, err := tokens.PurgeExpired(pctx, now)
			cancel()
			if err != nil {
				log.Printf("purge revoked tokens: %v", err)
			} else if n > 0 {
				log.Printf("purged %d expired revoked tokens", n)
			}
		}
	}
}
