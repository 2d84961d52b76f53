package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/MikeMC777/geezshoe/internal/cart"
	"github.com/MikeMC777/geezshoe/internal/company"
	"github.com/MikeMC777/geezshoe/internal/config"
	"github.com/MikeMC777/geezshoe/internal/db"
	"github.com/MikeMC777/geezshoe/internal/events"
	"github.com/MikeMC777/geezshoe/internal/httpx"
	"github.com/MikeMC777/geezshoe/internal/idempotency"
	"github.com/MikeMC777/geezshoe/internal/logging"
	"github.com/MikeMC777/geezshoe/internal/order"
	"github.com/MikeMC777/geezshoe/internal/product"
	"github.com/MikeMC777/geezshoe/internal/shutdown"
)

const (
	cartTTL        = 30 * 24 * time.Hour
	idempotencyTTL = 24 * time.Hour
)

func main() {
	log := logging.New()
	cfg := config.Load(log)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("redis ping failed", "err", err)
		os.Exit(1)
	}

	pub, closePub := events.Dial(log, cfg.KafkaAddr, cfg.OrderEventTopic)
	defer func() { _ = closePub() }()

	deps := shopDeps{
		products: product.NewPGRepo(pool),
		company:  company.NewPGRepo(pool),
		carts:    &cartOpener{storage: cart.NewRedisStorage(rdb, cartTTL)},
		placer:   order.NewPlacer(order.NewPGRepo(pool), pub, log),
		idem:     idempotency.NewStore(rdb, idempotencyTTL),
	}

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log), cors.New(corsConfig(cfg.CORSOrigins)))
	registerRoutes(r, deps)

	srv := &http.Server{
		Addr:         cfg.ShopSvcAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("shop-service listening", "addr", cfg.ShopSvcAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("shop-service shutdown complete")
}

func corsConfig(origins string) cors.Config {
	return cors.Config{
		AllowOrigins:     strings.Split(origins, ","),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", cartHeader, "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", cartHeader, cartCountHeader},
		AllowCredentials: origins != "*",
		MaxAge:           12 * time.Hour,
	}
}
