package app

import (
	"fmt"
	"time"

	"buildhub/internal/config"
	"buildhub/internal/model"
	"buildhub/internal/moderation"
	"buildhub/internal/repository"
	"buildhub/internal/service"
	"buildhub/internal/util"
	"buildhub/internal/websocket"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Services is everything the HTTP layer and the management CLI call into
type Services struct {
	Auth           service.AuthService
	Post           service.PostService
	Comment        service.CommentService
	Reaction       service.ReactionService
	ModerationRule service.ModerationRuleService
	Newsletter     service.NewsletterService
	Project        service.ProjectService
	Diary          service.DiaryService
	Search         service.SearchService
	Sitemap        service.SitemapService
	Stats          service.StatsService
}

// Container owns the connections and the wired services
type Container struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *util.RedisClient
	RabbitMQ *util.RabbitMQClient
	Hub      *websocket.Hub

	Services         Services
	NewsletterWorker *service.NewsletterWorker
}

// Options tunes Bootstrap. The management CLI gives up on optional
// dependencies faster than the server does.
type Options struct {
	ConnectAttempts int
	Migrate         bool
}

func DefaultOptions() Options {
	return Options{ConnectAttempts: 10, Migrate: true}
}

// Bootstrap connects to Postgres (required), Redis and RabbitMQ (optional)
// and Cloudinary (optional), then wires repositories and services.
func Bootstrap(cfg *config.Config, opts Options) (*Container, error) {
	db, err := initDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if opts.Migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	c := &Container{
		Config: cfg,
		DB:     db,
		Hub:    websocket.NewHub(),
	}

	if redis, ok := connectWithRetry("Redis", opts.ConnectAttempts, func() (*util.RedisClient, error) {
		return util.NewRedisClient(cfg)
	}); ok {
		c.Redis = redis
	} else {
		zap.L().Warn("continuing without Redis caching")
	}

	if rabbitMQ, ok := connectWithRetry("RabbitMQ", opts.ConnectAttempts, func() (*util.RabbitMQClient, error) {
		return util.NewRabbitMQClient(cfg)
	}); ok {
		c.RabbitMQ = rabbitMQ
	} else {
		zap.L().Warn("continuing without RabbitMQ, newsletters will be sent inline")
	}

	var uploader util.ImageUploader
	if cfg.CloudinaryEnabled() {
		cld, err := util.NewCloudinaryClient(cfg)
		if err != nil {
			zap.L().Warn("image uploads disabled", zap.Error(err))
		} else {
			uploader = cld
			zap.L().Info("cloudinary initialized")
		}
	} else {
		zap.L().Info("cloudinary credentials not configured, image uploads disabled")
	}

	c.wire(uploader)
	return c, nil
}

func (c *Container) wire(uploader util.ImageUploader) {
	cfg := c.Config

	userRepo := repository.NewUserRepository(c.DB)
	postRepo := repository.NewPostRepository(c.DB, c.Redis)
	taxonomyRepo := repository.NewTaxonomyRepository(c.DB, c.Redis)
	commentRepo := repository.NewCommentRepository(c.DB, c.Redis)
	likeRepo := repository.NewCommentLikeRepository(c.DB, c.Redis)
	ruleRepo := repository.NewModerationRuleRepository(c.DB, c.Redis)
	newsletterRepo := repository.NewNewsletterRepository(c.DB)
	projectRepo := repository.NewProjectRepository(c.DB, c.Redis)
	diaryRepo := repository.NewDiaryRepository(c.DB)

	moderator := moderation.New(ModerationConfig(cfg))

	var publisher service.JobPublisher
	if c.RabbitMQ != nil {
		publisher = c.RabbitMQ
	}

	newsletters := service.NewNewsletterService(newsletterRepo, service.NewEmailService(cfg), publisher, cfg.SiteURL)

	c.Services = Services{
		Auth:           service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry),
		Post:           service.NewPostService(postRepo, taxonomyRepo, uploader),
		Comment:        service.NewCommentService(commentRepo, postRepo, userRepo, ruleRepo, moderator, c.Hub),
		Reaction:       service.NewReactionService(commentRepo, likeRepo, c.Hub),
		ModerationRule: service.NewModerationRuleService(ruleRepo, moderator),
		Newsletter:     newsletters,
		Project:        service.NewProjectService(projectRepo, userRepo, uploader),
		Diary:          service.NewDiaryService(diaryRepo, projectRepo),
		Search:         service.NewSearchService(postRepo, projectRepo),
		Sitemap:        service.NewSitemapService(postRepo, projectRepo, cfg.SiteURL),
		Stats:          service.NewStatsService(commentRepo, postRepo, projectRepo, userRepo, newsletterRepo),
	}
	c.NewsletterWorker = service.NewNewsletterWorker(newsletters, c.RabbitMQ)
}

// HealthChecks lists the dependencies reported by /health
func (c *Container) HealthChecks() map[string]HealthCheck {
	checks := map[string]HealthCheck{
		"database": func() error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Ping
	}
	if c.RabbitMQ != nil {
		checks["rabbitmq"] = func() error {
			if c.RabbitMQ.GetChannel() == nil {
				return fmt.Errorf("channel closed")
			}
			return nil
		}
	}
	return checks
}

func (c *Container) Close() {
	if c.RabbitMQ != nil {
		if err := c.RabbitMQ.Close(); err != nil {
			zap.L().Warn("failed to close RabbitMQ", zap.Error(err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			zap.L().Warn("failed to close Redis", zap.Error(err))
		}
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// ModerationConfig applies the configured thresholds to the default scorer
func ModerationConfig(cfg *config.Config) moderation.Config {
	mc := moderation.DefaultConfig()
	mc.SpamThreshold = cfg.SpamThreshold
	mc.PendingThreshold = cfg.PendingThreshold
	mc.MaxLinks = cfg.MaxLinks
	if len(cfg.SpamKeywords) > 0 {
		mc.Keywords = cfg.SpamKeywords
	}
	return mc
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}
	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
}

// connectWithRetry retries connect with exponential backoff, starting at 2s
// and capped at 30s. It returns false once all attempts have failed.
func connectWithRetry[T any](name string, attempts int, connect func() (T, error)) (T, bool) {
	const (
		initialDelay = 2 * time.Second
		maxDelay     = 30 * time.Second
	)

	var zero T
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := connect()
		if err == nil {
			zap.L().Info(name+" connected", zap.Int("attempt", attempt))
			return client, true
		}

		if attempt == attempts {
			zap.L().Warn("giving up on "+name, zap.Int("attempts", attempts), zap.Error(err))
			break
		}

		delay := initialDelay * time.Duration(1<<uint(attempt-1))
		if delay > maxDelay {
			delay = maxDelay
		}
		zap.L().Warn("failed to connect to "+name+", retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err))
		time.Sleep(delay)
	}
	return zero, false
}
