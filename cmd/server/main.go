package main

import (
	"context"
	"log"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/compliance/api/handler"
	"github.com/fastygo/compliance/internal/config"
	"github.com/fastygo/compliance/internal/infrastructure/mail"
	"github.com/fastygo/compliance/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/compliance/internal/infrastructure/redis"
	"github.com/fastygo/compliance/internal/infrastructure/storage"
	"github.com/fastygo/compliance/internal/middleware"
	"github.com/fastygo/compliance/internal/router"
	"github.com/fastygo/compliance/internal/services/lifecycle"
	"github.com/fastygo/compliance/internal/services/scheduler"
	"github.com/fastygo/compliance/pkg/httpcontext"
	"github.com/fastygo/compliance/pkg/logger"
	"github.com/fastygo/compliance/repository"
	redisRepo "github.com/fastygo/compliance/repository/redis"
	analyticsUC "github.com/fastygo/compliance/usecase/analytics"
	authUC "github.com/fastygo/compliance/usecase/auth"
	clientUC "github.com/fastygo/compliance/usecase/client"
	contactUC "github.com/fastygo/compliance/usecase/contact"
	documentUC "github.com/fastygo/compliance/usecase/document"
	"github.com/fastygo/compliance/usecase/mutation"
	profileUC "github.com/fastygo/compliance/usecase/profile"
	taskUC "github.com/fastygo/compliance/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	mon := monitor.New(zapLogger.Named("monitor"))

	supabase, err := newSupabaseClient(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("supabase client failed", zap.Error(err))
	}

	gw, err := newGateway(appCtx, cfg, supabase, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("gateway unavailable", zap.Error(err))
	}
	mon.Register(gw.dependency)

	var redisClient *goRedis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis, zapLogger.Named("redis"))
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.RegisterCloser("redis", redisClient)
		mon.Register(redisDependency(redisClient))
	}

	listCache, boltStore, err := newListCache(cfg, redisClient, manager)
	if err != nil {
		zapLogger.Fatal("list cache unavailable", zap.Error(err))
	}
	if boltStore != nil {
		mon.Register(boltDependency(boltStore))
	}

	notifiers := mutation.Fanout{mutation.NewLogNotifier(zapLogger)}
	var sessionRepo repository.SessionRepository
	if redisClient != nil {
		notifiers = append(notifiers, redisRepo.NewNotificationPublisher(redisClient))
		sessionRepo = redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)
	}
	pipeline := mutation.New(listCache, notifiers, zapLogger.Named("mutation"))

	var objects documentUC.ObjectStore
	if cfg.Storage.Enabled {
		store, err := storage.New(appCtx, storage.Config{
			Endpoint:     cfg.Storage.Endpoint,
			Region:       cfg.Storage.Region,
			Bucket:       cfg.Storage.Bucket,
			AccessKey:    cfg.Storage.AccessKey,
			SecretKey:    cfg.Storage.SecretKey,
			PublicURL:    cfg.Storage.PublicURL,
			UsePathStyle: cfg.Storage.UsePathStyle,
			PresignTTL:   cfg.Storage.PresignTTL,
		}, zapLogger.Named("storage"))
		if err != nil {
			zapLogger.Fatal("object storage unavailable", zap.Error(err))
		}
		objects = store
		mon.Register(monitor.Dependency{Name: "object_storage", Check: monitor.PingCheck(store)})
	}

	var mailer contactUC.Mailer
	if cfg.Mail.Enabled {
		smtp, err := mail.NewSMTPMailer(mail.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			FromName: cfg.Mail.FromName,
			To:       cfg.Mail.To,
		}, zapLogger.Named("mail"))
		if err != nil {
			zapLogger.Fatal("mailer misconfigured", zap.Error(err))
		}
		mailer = smtp
	}

	var identityProvider authUC.IdentityProvider
	if supabase != nil {
		identityProvider = supabase
	}

	authUseCase := authUC.New(identityProvider, sessionRepo, zapLogger)
	contactUseCase := contactUC.New(mailer, zapLogger)
	profileUseCase := profileUC.New(gw.profiles, pipeline, zapLogger)
	clientUseCase := clientUC.New(gw.clients, pipeline, zapLogger)
	taskUseCase := taskUC.New(gw.tasks, gw.clients, pipeline, zapLogger)
	documentUseCase := documentUC.New(gw.documents, gw.clients, gw.tasks, pipeline, documentUC.Options{
		Objects:   objects,
		ObjectKey: storage.ObjectKey,
		MaxUpload: cfg.Storage.MaxUpload,
	}, zapLogger)
	analyticsUseCase := analyticsUC.New(taskUseCase, clientUseCase, documentUseCase, zapLogger)

	jobs := scheduler.New(zapLogger.Named("scheduler"))
	scheduled := []scheduler.Job{{
		Name:       "health_checks",
		Interval:   cfg.Monitor.Interval,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			mon.Refresh(ctx)
			return nil
		},
	}}
	if boltStore != nil {
		scheduled = append(scheduled, scheduler.Job{
			Name:     "cache_sweep",
			Interval: cfg.Cache.SweepInterval,
			Run: func(ctx context.Context) error {
				removed, err := boltStore.Sweep(time.Now())
				if removed > 0 {
					zapLogger.Debug("expired list cache entries removed", zap.Int("count", removed))
				}
				return err
			},
		})
	}
	for _, job := range scheduled {
		if err := jobs.Add(job); err != nil {
			zapLogger.Fatal("scheduled job registration failed", zap.String("job", job.Name), zap.Error(err))
		}
	}
	jobs.Start()
	manager.Register("scheduler", func(ctx context.Context) error {
		jobs.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Contact:   apiHandler.NewContactHandler(contactUseCase, ctxAdapter, zapLogger),
		Profile:   apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Client:    apiHandler.NewClientHandler(clientUseCase, ctxAdapter, zapLogger),
		Task:      apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Document:  apiHandler.NewDocumentHandler(documentUseCase, ctxAdapter, zapLogger),
		Analytics: apiHandler.NewAnalyticsHandler(analyticsUseCase, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	var sessions middleware.SessionResolver
	if sessionRepo != nil {
		sessions = authUseCase
	}
	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, sessions, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		MaxRequestBodySize: cfg.HTTP.MaxRequestBody,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("gateway", cfg.Gateway.Driver),
			zap.String("cache", cfg.Cache.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
