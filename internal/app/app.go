package app

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mahmoodhamdi/sounds-api/internal/app/server"
	"github.com/mahmoodhamdi/sounds-api/internal/config"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/controllers"
	"github.com/mahmoodhamdi/sounds-api/internal/service"
	"github.com/mahmoodhamdi/sounds-api/internal/service/auth"
	"github.com/mahmoodhamdi/sounds-api/internal/service/catalog"
	"github.com/mahmoodhamdi/sounds-api/internal/service/progress"
	"github.com/mahmoodhamdi/sounds-api/internal/service/report"
	"github.com/mahmoodhamdi/sounds-api/internal/service/statistics"
	"github.com/mahmoodhamdi/sounds-api/internal/storage/elastic"
	"github.com/mahmoodhamdi/sounds-api/internal/storage/minio_storage"
	"github.com/mahmoodhamdi/sounds-api/internal/storage/postgres"
	"github.com/mahmoodhamdi/sounds-api/internal/storage/redis_cache"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

const startupTimeout = 30 * time.Second

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("starting", "env", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pg, err := postgres.New(ctx, cfg.Postgres.DSN(), postgres.PoolConfig{
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
	})
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	if cfg.Postgres.ApplySchema {
		if err := pg.ApplySchema(ctx); err != nil {
			log.FatalErr("error applying schema", err)
		}
	}

	cache, err := redis_cache.New(ctx, cfg.Redis.URL)
	if err != nil {
		log.FatalErr("error connecting to redis", err)
	}
	defer cache.Close()

	mc, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.FatalErr("error creating minio client", err)
	}
	levelImages, err := imageStorage(ctx, mc, cfg.Minio, config.LevelImagesBucket, "levels")
	if err != nil {
		log.FatalErr("error preparing level images bucket", err)
	}
	profilePictures, err := imageStorage(ctx, mc, cfg.Minio, config.ProfilePicturesBucket, "users")
	if err != nil {
		log.FatalErr("error preparing profile pictures bucket", err)
	}

	checks := map[string]controllers.HealthCheck{
		"postgres": pg.HealthCheck,
		"redis":    cache.HealthCheck,
		"minio":    mc.HealthCheck,
	}

	// Search is optional: without a cluster the catalog falls back to a
	// name match in postgres.
	var search catalog.SearchIndex
	if len(cfg.ES.Hosts) > 0 {
		es, err := elastic.NewElasticClient(ctx, elastic.ClientConfig{
			Hosts:      cfg.ES.Hosts,
			Username:   cfg.ES.Username,
			Password:   cfg.ES.Password,
			MaxRetries: cfg.ES.MaxRetries,
		})
		if err != nil {
			log.ErrorErr("elasticsearch unavailable, level search degraded", err)
		} else {
			repo := elastic.NewLevelSearchRepository(es, cfg.ES.Index)
			if err := repo.CreateIndexIfNotExist(ctx); err != nil {
				log.ErrorErr("error creating level index", err)
			}
			search = repo
			checks["elasticsearch"] = repo.HealthCheck
		}
	}

	users := postgres.NewUserPostgres(pg.Pool)
	levels := postgres.NewLevelPostgres(pg.Pool)
	videos := postgres.NewVideoPostgres(pg.Pool)
	enrollments := postgres.NewEnrollmentPostgres(pg.Pool)
	recorder := postgres.NewRecorderPostgres(pg.Pool)
	aggregates := postgres.NewStatisticsPostgres(pg.Pool)
	statsCache := redis_cache.NewStatisticsCache(cache, cfg.Statistics.CacheTTL)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.AccessTTL)

	u := service.Collection{
		AuthService:       auth.NewAuthService(log.With("component", "auth"), jwtManager, users, profilePictures),
		CatalogService:    catalog.NewCatalogService(log.With("component", "catalog"), levels, videos, enrollments, search, levelImages),
		ProgressService:   progress.NewProgressService(log.With("component", "progress"), enrollments, recorder, levels, videos, statsCache),
		StatisticsService: statistics.NewStatisticsService(log.With("component", "statistics"), aggregates, users, statsCache),
		ReportService:     report.NewReportService(log.With("component", "report"), users, enrollments, levels, videos, recorder),
	}

	r := http.InitRoutes(log.With("component", "http"), u, http.Options{
		AllowOrigins: cfg.HTTPServer.AllowOrigins,
		HealthChecks: checks,
	})

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("http server started", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal", "signal", s.String())
	case err := <-srv.Notify():
		if err != nil {
			log.ErrorErr("http server stopped", err)
		}
	}

	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("error shutting down http server", err)
	}
}

func imageStorage(ctx context.Context, mc *minio_storage.MinioStorage, cfg config.Minio, key, prefix string) (*minio_storage.ImageStorage, error) {
	bucket, ok := cfg.Buckets[key]
	if !ok || bucket.Name == "" {
		bucket.Name = strings.ReplaceAll(key, "_", "-")
	}
	return minio_storage.NewImageStorage(ctx, mc, bucket.Name, prefix, bucket.PresignTTL)
}
