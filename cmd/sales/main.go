package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/internal/infrastructure/cache"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-api/internal/infrastructure/mysql"
	"github.com/jhoicas/ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ventas-api/internal/infrastructure/productclient"
	"github.com/jhoicas/ventas-api/internal/infrastructure/redisstore"
	httpRouter "github.com/jhoicas/ventas-api/internal/interfaces/http"
	"github.com/jhoicas/ventas-api/pkg/config"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load("ventas-api", 8081)
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Sales.StoreDriver).
		Str("lock", cfg.Sales.LockDriver).
		Str("products_url", cfg.Products.BaseURL).
		Msg("iniciando servicio de ventas")

	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	saleRepo, closeStore := newSaleRepository(ctx, cfg, log)
	closers = append(closers, closeStore)

	var rdb *redis.Client
	if cfg.Sales.LockDriver == "redis" || cfg.Sales.IdempotencyDriver == "redis" {
		rdb, err = redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		closers = append(closers, func() { _ = rdb.Close() })
	}

	client := productclient.NewHTTPClient(productclient.Config{
		BaseURL:      cfg.Products.BaseURL,
		Timeout:      cfg.Products.Timeout,
		FetchRetries: cfg.Products.FetchRetries,
	}, log)
	productCache := cache.NewTTLCache(cfg.Cache.MaxEntries, cfg.Cache.TTL, productclient.CachedProductLoader(client))

	createUC := sales.NewCreateSaleUseCase(saleRepo, client, productCache, newStockLocker(cfg, rdb, log), log, sales.Config{
		CommitTimeout:      cfg.Sales.CommitTimeout,
		ValidateCustomerCI: cfg.Sales.ValidateCustomerCI,
	})
	saleUC := sales.NewSaleUseCase(createUC, saleRepo, productCache, newIdempotencyStore(cfg, rdb), log)

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		Log:         log,
		SwaggerFile: swaggerFile(),
	})
	httpRouter.SalesRouter(app, saleUC)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// Espera a que terminen las ventas en curso (paso de confirmación incluido).
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Sales.CommitTimeout+5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func newSaleRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.SaleRepository, func()) {
	switch cfg.Sales.StoreDriver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migración PostgreSQL")
		}
		return postgres.NewSaleRepository(pool), pool.Close
	case "mysql":
		db, err := mysql.Connect(ctx, cfg.MySQL.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a MySQL")
		}
		if err := mysql.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migración MySQL")
		}
		return mysql.NewSaleRepository(db), func() { _ = db.Close() }
	default:
		log.Warn().Msg("ventas en memoria: se pierden al reiniciar")
		return memory.NewSaleRepository(), func() {}
	}
}

func newStockLocker(cfg *config.Config, rdb *redis.Client, log *logger.Logger) sales.StockLocker {
	switch cfg.Sales.LockDriver {
	case "redis":
		return redisstore.NewStockLocker(rdb, cfg.Sales.LockTTL, log)
	case "none":
		log.Warn().Msg("SALES_LOCK_DRIVER=none: dos ventas simultáneas del mismo producto pueden sobrevender")
		return memory.NoopLocker{}
	default:
		return memory.NewStockLocker()
	}
}

func newIdempotencyStore(cfg *config.Config, rdb *redis.Client) sales.IdempotencyStore {
	switch cfg.Sales.IdempotencyDriver {
	case "redis":
		return redisstore.NewIdempotencyStore(rdb, cfg.Sales.IdempotencyTTL)
	case "none":
		return nil
	default:
		return memory.NewIdempotencyStore(cfg.Sales.IdempotencyTTL)
	}
}

// swaggerFile devuelve la ruta de docs/swagger.json si existe; el middleware falla si no lo encuentra.
func swaggerFile() string {
	const path = "./docs/swagger.json"
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
