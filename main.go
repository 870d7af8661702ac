package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"secondserving/internal/auth"
	"secondserving/internal/classifier"
	"secondserving/internal/config"
	"secondserving/internal/database"
	"secondserving/internal/handlers"
	"secondserving/internal/jobs"
	"secondserving/internal/logging"
	"secondserving/internal/metrics"
	"secondserving/internal/middleware"
	"secondserving/internal/notify"
	"secondserving/internal/service"
	"secondserving/internal/store/mongostore"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal(err)
	}
	cfg := config.AppEnv

	if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal(err)
	}
	logger := logging.For(logging.Database)

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		logger.WithError(err).Fatal("mongo connection failed")
	}
	db := client.Database(cfg.DBName)
	logger.WithField("db", db.Name()).Info("MongoDB connected")

	if err := database.EnsureAccountIndexes(db); err != nil {
		logger.WithError(err).Warn("account index warning")
	}
	if err := database.EnsureHungerSpotIndexes(db); err != nil {
		logger.WithError(err).Warn("hunger spot index warning")
	}
	if err := database.EnsureDonationIndexes(db); err != nil {
		logger.WithError(err).Warn("donation index warning")
	}

	cl, err := buildClassifier(cfg)
	if err != nil {
		logging.For(logging.Classifier).WithError(err).Fatal("classifier setup failed")
	}
	notifier, group := buildNotifier(cfg)

	svc := service.New(
		mongostore.New(db),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		cl,
		notifier,
		group,
		service.Options{
			OTPTTL:                cfg.OTPTTL,
			VolunteerRadiusMeters: cfg.VolunteerRadiusMeters,
			AcceptURL:             cfg.AcceptURL,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(ctx, 10*time.Minute)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestIDs(),
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.CORS(cfg.Origins()),
		limiter.Handler(),
		middleware.SanitizeBody(),
	)

	r.GET("/healthz", handlers.Health(func(ctx context.Context) error {
		return database.Ping(ctx, client)
	}))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	handlers.RegisterRoutes(r.Group("/api/v1"), svc, handlers.CookieConfig{
		TTL:    cfg.JWTCookieTTL,
		Secure: cfg.IsProduction(),
	})

	scheduler, err := jobs.NewScheduler(cfg.ExpirySweepSchedule, svc)
	if err != nil {
		logging.For(logging.Jobs).WithError(err).Fatal("expiry sweep setup failed")
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.For(logging.HTTP).WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.For(logging.HTTP).WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logging.For(logging.HTTP).Info("shutting down")
	shutdown(srv, scheduler, client)
}

func shutdown(srv *http.Server, scheduler *jobs.Scheduler, client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.For(logging.HTTP).WithError(err).Error("server shutdown")
	}
	scheduler.Stop(ctx)
	if err := client.Disconnect(ctx); err != nil {
		logging.For(logging.Database).WithError(err).Error("mongo disconnect")
	}
}

// buildClassifier uses Groq when a key is configured, otherwise the keyword
// rules. A Groq failure classifies as everyone in the service.
func buildClassifier(cfg config.Config) (classifier.Classifier, error) {
	if cfg.GroqAPIKey == "" {
		logging.For(logging.Classifier).Info("GROQ_API_KEY not set, using keyword rules")
	}
	return classifier.New(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, cfg.ClassifierRulesFile)
}

// buildNotifier fans out to every configured transport. Without any, messages
// go to the log so OTPs are still visible in development.
func buildNotifier(cfg config.Config) (notify.Notifier, notify.GroupPoster) {
	entry := logging.For(logging.Notify)
	var fanout notify.Fanout
	var group notify.GroupPoster

	if cfg.TwilioEnabled() {
		fanout = append(fanout, notify.NewWhatsApp(cfg.TwilioSID, cfg.TwilioAuth, cfg.TwilioFrom))
	}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramVolunteerChatID)
		if err != nil {
			entry.WithError(err).Warn("telegram disabled")
		} else {
			fanout = append(fanout, tg)
			group = tg
		}
	}
	if len(fanout) == 0 {
		entry.Warn("no notification transport configured, logging messages instead")
		fanout = append(fanout, notify.Log{})
	}
	return fanout, group
}
