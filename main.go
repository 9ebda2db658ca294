package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"folio/analytics"
	"folio/api"
	"folio/auth"
	"folio/cache"
	"folio/common"
	"folio/database"
	"folio/email"
	"folio/models"
	"folio/render"
	"folio/repository"
	"folio/scheduler"
	"folio/service"
	"folio/storage"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	logger := common.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *common.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := common.ConnectDb(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db); err != nil {
		return err
	}

	responseCache, memory, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer responseCache.Close()

	store, local, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}

	services, err := buildServices(db, cfg, store, logger)
	if err != nil {
		return err
	}

	views, err := analytics.NewViewTracker(db, map[models.ContentType]analytics.ViewCounter{
		models.ContentBlogPost: repository.NewBlogPostRepository(db),
	}, logger.With("module", "analytics"))
	if err != nil {
		return err
	}

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})

	module := api.NewModule(*services, logger)
	module.Views = views
	module.Renderer = render.New(responseCache, cfg.CacheTTL, logger.With("module", "render"))
	module.Cache = responseCache
	module.CacheTTL = cfg.CacheTTL
	module.Sessions = sessionStore
	module.AuthRate = cfg.AuthRateLimit
	module.AuthBurst = cfg.AuthRateBurst

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))
	router.MaxMultipartMemory = cfg.UploadMaxBytes
	if local != nil {
		router.Static(cfg.UploadBaseURL, local.Dir())
	}
	module.RegisterRoutes(router)

	jobs := scheduler.New(logger.With("module", "scheduler"))
	if err := jobs.Add("session-cleanup", cfg.SessionCleanupSchedule, time.Minute, func(ctx context.Context) error {
		_, err := services.Auth.CleanupExpiredSessions(ctx)
		return err
	}); err != nil {
		return err
	}
	if memory != nil {
		if err := jobs.Add("cache-purge", "@every 10m", time.Minute, func(context.Context) error {
			memory.Purge()
			return nil
		}); err != nil {
			return err
		}
	}
	jobs.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	jobs.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}

// openCache prefers Redis when configured. The in-memory cache is also
// returned on its own so expired entries can be purged on a schedule.
func openCache(ctx context.Context, cfg *common.Config) (cache.Cache, *cache.Memory, error) {
	if cfg.RedisURL != "" {
		c, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CachePrefix, cfg.CacheTTL)
		return c, nil, err
	}
	m := cache.NewMemory(cfg.CacheTTL)
	return m, m, nil
}

func openStorage(ctx context.Context, cfg *common.Config) (storage.Storage, *storage.Local, error) {
	if cfg.UseS3() {
		s, err := storage.NewS3(ctx, storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		return s, nil, err
	}
	l, err := storage.NewLocal(cfg.UploadDir, cfg.UploadBaseURL)
	return l, l, err
}

func buildServices(db *gorm.DB, cfg *common.Config, store storage.Storage, logger *slog.Logger) (*api.Services, error) {
	v := common.NewValidator()
	base := func(name string) service.Base {
		return service.NewBase(logger, name, v)
	}

	var mailer service.Mailer
	if m := email.NewSMTPMailer(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		SiteURL:  cfg.SiteURL,
	}); m != nil {
		mailer = m
	}

	authService, err := service.NewAuthService(base("auth"),
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn),
		mailer,
		service.AuthOptions{BcryptCost: cfg.BcryptCost, RefreshTTL: cfg.RefreshTokenTTL()},
	)
	if err != nil {
		return nil, err
	}

	return &api.Services{
		Auth:         authService,
		Blog:         service.NewBlogService(base("blog"), repository.NewBlogPostRepository(db)),
		Projects:     service.NewProjectService(base("projects"), repository.NewProjectRepository(db)),
		Experience:   service.NewExperienceService(base("experience"), repository.NewExperienceRepository(db)),
		Education:    service.NewEducationService(base("education"), repository.NewEducationRepository(db)),
		Testimonials: service.NewTestimonialService(base("testimonials"), repository.NewTestimonialRepository(db)),
		Tags:         service.NewTaxonomyService[models.Tag](base("tags"), repository.NewTagRepository(db), "Tag"),
		Categories:   service.NewTaxonomyService[models.Category](base("categories"), repository.NewCategoryRepository(db), "Category"),
		Frameworks:   service.NewTaxonomyService[models.Framework](base("frameworks"), repository.NewFrameworkRepository(db), "Framework"),
		Languages:    service.NewTaxonomyService[models.ProgrammingLanguage](base("programming-languages"), repository.NewProgrammingLanguageRepository(db), "Programming language"),
		About:        aboutSections(db, base),
		Translations: service.NewTranslationService(base("translations"), repository.NewTranslationRepository(db)),
		Uploads:      service.NewUploadService(base("uploads"), repository.NewUploadRepository(db), store, cfg.UploadMaxBytes),
	}, nil
}

func aboutSections(db *gorm.DB, base func(string) service.Base) []api.AboutSection {
	return []api.AboutSection{
		api.About[models.Hobby]("hobbies", service.NewAboutService[models.Hobby](base("hobbies"), repository.NewAboutRepository[models.Hobby](db), "Hobby")),
		api.About[models.Anime]("anime", service.NewAboutService[models.Anime](base("anime"), repository.NewAboutRepository[models.Anime](db), "Anime")),
		api.About[models.Book]("books", service.NewAboutService[models.Book](base("books"), repository.NewAboutRepository[models.Book](db), "Book")),
		api.About[models.Game]("games", service.NewAboutService[models.Game](base("games"), repository.NewAboutRepository[models.Game](db), "Game")),
		api.About[models.Music]("music", service.NewAboutService[models.Music](base("music"), repository.NewAboutRepository[models.Music](db), "Music")),
		api.About[models.Instrument]("instruments", service.NewAboutService[models.Instrument](base("instruments"), repository.NewAboutRepository[models.Instrument](db), "Instrument")),
		api.About[models.SpokenLanguage]("languages", service.NewAboutService[models.SpokenLanguage](base("spoken-languages"), repository.NewAboutRepository[models.SpokenLanguage](db), "Language")),
		api.About[models.MartialArt]("martial-arts", service.NewAboutService[models.MartialArt](base("martial-arts"), repository.NewAboutRepository[models.MartialArt](db), "Martial art")),
	}
}
