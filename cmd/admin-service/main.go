package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/MikeMC777/geezshoe/internal/admin"
	"github.com/MikeMC777/geezshoe/internal/company"
	"github.com/MikeMC777/geezshoe/internal/config"
	"github.com/MikeMC777/geezshoe/internal/customer"
	"github.com/MikeMC777/geezshoe/internal/db"
	_ "github.com/MikeMC777/geezshoe/internal/docs"
	"github.com/MikeMC777/geezshoe/internal/events"
	"github.com/MikeMC777/geezshoe/internal/grpcx"
	"github.com/MikeMC777/geezshoe/internal/httpx"
	"github.com/MikeMC777/geezshoe/internal/identity"
	"github.com/MikeMC777/geezshoe/internal/logging"
	"github.com/MikeMC777/geezshoe/internal/order"
	"github.com/MikeMC777/geezshoe/internal/product"
	"github.com/MikeMC777/geezshoe/internal/sales"
	"github.com/MikeMC777/geezshoe/internal/shutdown"
	"github.com/MikeMC777/geezshoe/internal/storage"
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

	bucket, err := storage.NewLocalBucket(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		log.Error("media bucket init failed", "err", err)
		os.Exit(1)
	}

	pub, closePub := events.Dial(log, cfg.KafkaAddr, cfg.OrderEventTopic)
	defer func() { _ = closePub() }()

	orders := order.NewPGRepo(pool)
	ids := identity.NewService(identity.NewPGRepo(pool), cfg.JWTSecret)
	admins := admin.NewService(admin.NewPGRepo(pool), ids, log)

	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword != "" {
		if err := admins.Bootstrap(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
			log.Error("main admin bootstrap failed", "err", err)
		}
	}

	deps := adminDeps{
		orders:    orders,
		fulfiller: order.NewFulfiller(order.NewPGFulfillmentStore(pool), pub, log),
		canceller: order.NewCanceller(orders, pub, log),
		products:  product.NewService(product.NewPGRepo(pool), bucket, log),
		company:   company.NewService(company.NewPGRepo(pool), bucket, log),
		sales:     sales.NewPGRepo(pool),
		customers: customer.NewPGRepo(pool),
		bucket:    bucket,
		admins:    admins,
		identity:  ids,
		log:       log,
	}

	r := gin.New()
	r.MaxMultipartMemory = maxUploadBytes
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log), cors.New(cors.Config{
		AllowOrigins:  strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))
	r.Static("/media", bucket.Root())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	registerRoutes(r, deps)

	srv := &http.Server{
		Addr:         cfg.AdminSvcAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	health := grpcx.NewHealthServer("geezshoe.admin", log)
	go health.Watch(ctx, 10*time.Second, func(ctx context.Context) error { return pool.Ping(ctx) })
	go func() {
		l, err := net.Listen("tcp", cfg.AdminGRPCAddr)
		if err != nil {
			log.Error("grpc listen failed", "err", err)
			return
		}
		log.Info("grpc health listening", "addr", cfg.AdminGRPCAddr)
		if err := health.Serve(l); err != nil {
			log.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		log.Info("admin-service listening", "addr", cfg.AdminSvcAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	health.Stop()
	log.Info("admin-service shutdown complete")
}
