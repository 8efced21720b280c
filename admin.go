// admin.go - diagnostics behind a single admin login
package main

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/diag"
	"github.com/Zachkp/portfolio/internal/visitor"
)

const adminCookie = "admin_token"

// adminAuth holds the per-process admin token. Restarting the server logs
// the admin out.
type adminAuth struct {
	username    string
	password    string
	token       string
	hashingSalt string
	logger      *zap.Logger
}

type DiagnosticsReport struct {
	Notifier        visitor.Stats `json:"notifier"`
	TotalFailures   int64         `json:"total_failures"`
	RecentFailures  []diag.Entry  `json:"recent_failures"`
	ContactInFlight int           `json:"contact_in_flight"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

func newAdminAuth(cfg config.AdminConfig, logger *zap.Logger) *adminAuth {
	a := &adminAuth{
		username:    cfg.Username,
		password:    cfg.Password,
		token:       generateAdminToken(),
		hashingSalt: generateAdminToken(), // Use for IP hashing
		logger:      logger,
	}

	// Default credentials for development only
	if gin.Mode() == gin.DebugMode {
		if a.username == "" {
			a.username = "admin"
			logger.Warn("Using default admin username. Set ADMIN_USERNAME environment variable.")
		}
		if a.password == "" {
			a.password = "admin123"
			logger.Warn("Using default admin password. Set ADMIN_PASSWORD environment variable.")
		}
	}

	return a
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to generate admin token: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}

// hashIP keeps raw addresses out of the admin logs.
func (a *adminAuth) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.hashingSalt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *adminAuth) enabled() bool {
	return a.username != "" && a.password != ""
}

func (a *adminAuth) checkCredentials(username, password string) bool {
	if !a.enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

// Middleware to check admin authentication
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *app) diagnostics() DiagnosticsReport {
	return DiagnosticsReport{
		Notifier:        a.notifier.Stats(),
		TotalFailures:   a.sink.Total(),
		RecentFailures:  a.sink.Recent(),
		ContactInFlight: a.desk.InFlight(),
		GeneratedAt:     time.Now().UTC(),
	}
}

// Setup all admin routes
func setupAdminRoutes(r *gin.Engine, a *app) {
	auth := a.admin

	// Privacy policy route
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title": "Privacy Policy",
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if auth.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			// Set secure cookie (24 hours)
			c.SetCookie(adminCookie, auth.token, 3600*24, "/admin", "", false, true)
			auth.logger.Info("admin login", zap.String("from", auth.hashIP(c.ClientIP())))
			c.Redirect(http.StatusFound, "/admin/diagnostics")
			return
		}

		auth.logger.Warn("failed admin login", zap.String("from", auth.hashIP(c.ClientIP())))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	// Protected admin routes group
	adminGroup := r.Group("/admin")
	adminGroup.Use(auth.middleware())

	adminGroup.GET("/diagnostics", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-diagnostics.html", gin.H{
			"report": a.diagnostics(),
		})
	})

	adminGroup.GET("/api/diagnostics", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.diagnostics())
	})

	adminGroup.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{})))
}
