package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/diag"
	"github.com/Zachkp/portfolio/internal/emailjs"
	"github.com/Zachkp/portfolio/internal/geo"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/visitor"
)

// app holds everything the handlers share. Each piece has a single owner:
// the theme lives in the visitor's cookie, the visitor marker in the
// notifier, contact outcomes in the per-request form.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	sink      *diag.Sink
	notifier  *visitor.Notifier
	submitter *contact.Submitter
	desk      *contact.Desk
	admin     *adminAuth
	metrics   *prometheus.Registry
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger, err := logging.New(cfg.Production(), cfg.App.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	if !cfg.EmailConfigured() {
		logger.Warn("EmailJS is not configured; contact and visitor emails will fail")
	}

	marker, closeMarker, err := openMarker(cfg)
	if err != nil {
		logger.Fatal("failed to open visitor marker store", zap.Error(err))
	}
	defer closeMarker()

	var purge *cron.Cron
	if p, ok := marker.(visitor.Purger); ok {
		purge, err = visitor.SchedulePurge(cfg.Session.PurgeSpec, p, logger)
		if err != nil {
			logger.Fatal("failed to schedule marker purge", zap.Error(err))
		}
	}

	mailer := emailjs.NewClient(
		cfg.EmailJS.APIURL,
		cfg.EmailJS.ServiceID,
		cfg.EmailJS.PublicKey,
		emailjs.WithPrivateKey(cfg.EmailJS.PrivateKey),
		emailjs.WithRateLimit(cfg.EmailJS.RatePerSecond),
		emailjs.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}),
	)

	a := newApp(cfg, logger, marker, geo.NewIPAPI(cfg.Geo.APIURL, nil), mailer)

	r := setupRouter(a)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("portfolio listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	if purge != nil {
		<-purge.Stop().Done()
	}
	a.notifier.Wait()
}

func newApp(cfg *config.Config, logger *zap.Logger, marker visitor.Marker, locator geo.Locator, mailer *emailjs.Client) *app {
	sink := diag.NewSink(logger, 100)
	metrics := prometheus.NewRegistry()
	metrics.MustRegister(collectors.NewGoCollector())
	return &app{
		cfg:       cfg,
		logger:    logger,
		sink:      sink,
		notifier:  visitor.NewNotifier(marker, locator, mailer, cfg.EmailJS.VisitorTemplateID, sink, logger, metrics),
		submitter: contact.NewSubmitter(mailer, cfg.EmailJS.ContactTemplateID, logger),
		desk:      contact.NewDesk(),
		admin:     newAdminAuth(cfg.Admin, logger),
		metrics:   metrics,
	}
}

func openMarker(cfg *config.Config) (visitor.Marker, func(), error) {
	switch cfg.Session.MarkerBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return visitor.NewRedisMarker(client, cfg.Session.TTL), func() { client.Close() }, nil
	case "sqlite":
		m, err := visitor.OpenSQLiteMarker(cfg.Session.SQLitePath, cfg.Session.TTL)
		if err != nil {
			return nil, nil, err
		}
		return m, func() { m.Close() }, nil
	default:
		return visitor.NewMemoryMarker(cfg.Session.TTL), func() {}, nil
	}
}

func setupRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(a.logger))
	r.LoadHTMLGlob("templates/*")

	r.Static("/static", "./static")
	r.Static("/projects", "./static/projects")
	r.StaticFile(ResumePath, "./static/resume.pdf")

	r.GET("/", a.handleIndex)

	r.POST("/theme", a.handleThemeToggle)
	r.POST("/theme/ambient", a.handleAmbientChange)

	r.POST("/visit", a.handleVisit)

	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"title":   "Contact Me",
			"message": contact.Message{},
		})
	})
	r.POST("/contact", a.handleContact)

	r.GET("/work-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "work-content.html", gin.H{
			"positions": Experience,
		})
	})
	r.GET("/education-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "education-content.html", gin.H{
			"positions": Education,
		})
	})

	setupAdminRoutes(r, a)
	return r
}
