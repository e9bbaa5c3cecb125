// admin.go - privacy-conscious admin area: login, visitor stats, contact inbox
package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zachkp/portfolio/internal/catalog"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/errors"
	"github.com/Zachkp/portfolio/internal/visitors"
)

const (
	adminCookie     = "admin_token"
	adminSessionTTL = 24 * time.Hour
	adminIssuer     = "portfolio-admin"
	devPassword     = "admin123"
)

// CatalogStats describes the loaded project catalog.
type CatalogStats struct {
	State     catalog.State `json:"state"`
	SourceURL string        `json:"source_url,omitempty"`
	Projects  int           `json:"projects"`
	Featured  int           `json:"featured"`
	FromCache bool          `json:"from_cache"`
	LoadedAt  time.Time     `json:"loaded_at,omitzero"`
	Warning   string        `json:"warning,omitempty"`
}

type AdminStats struct {
	visitors.Stats
	TotalMessages  int64             `json:"total_messages"`
	UnreadMessages int64             `json:"unread_messages"`
	Catalog        CatalogStats      `json:"catalog"`
	RecentVisitors []visitors.Visit  `json:"recent_visitors"`
	RecentMessages []contact.Message `json:"recent_messages"`
}

// adminAuth checks credentials and issues signed session cookies.
type adminAuth struct {
	username string
	password string
	hash     []byte
	secret   []byte
	disabled bool
	now      func() time.Time
	logger   *slog.Logger
}

func newAdminAuth(cfg AdminConfig, logger *slog.Logger) (*adminAuth, error) {
	a := &adminAuth{
		username: cfg.Username,
		password: cfg.Password,
		now:      time.Now,
		logger:   logger,
	}
	if cfg.PasswordHash != "" {
		a.hash = []byte(cfg.PasswordHash)
	}

	if cfg.JWTSecret != "" {
		a.secret = []byte(cfg.JWTSecret)
	} else {
		a.secret = make([]byte, 32)
		if _, err := rand.Read(a.secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("JWT_SECRET not set, admin sessions end when the server restarts")
	}

	if a.password == "" && a.hash == nil {
		if gin.Mode() == gin.ReleaseMode {
			a.disabled = true
			logger.Warn("admin login disabled: set ADMIN_PASSWORD_HASH or ADMIN_PASSWORD")
		} else {
			a.password = devPassword
			logger.Warn("using default admin password, set ADMIN_PASSWORD_HASH for anything but local development")
		}
	}
	logger.Info("admin access available", "path", "/admin/login")
	return a, nil
}

// checkCredentials compares in constant time and prefers the bcrypt hash.
func (a *adminAuth) checkCredentials(username, password string) bool {
	if a.disabled {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	var passOK bool
	if a.hash != nil {
		passOK = bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	}
	return userOK && passOK
}

func (a *adminAuth) issue() (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:    adminIssuer,
		Subject:   a.username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(adminSessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (a *adminAuth) verify(tokenString string) (*jwt.RegisteredClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(adminIssuer),
		jwt.WithSubject(a.username),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// Middleware to check admin authentication
func (s *server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err == nil {
			_, err = s.auth.verify(token)
		}
		if err != nil {
			if wantsJSON(c) || c.Request.Method != http.MethodGet {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errors.NewUnauthorized("login required").Message})
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Privacy-conscious visitor tracking middleware
func (s *server) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip tracking for static files, admin pages and probes
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet ||
			strings.HasPrefix(path, "/static/") ||
			strings.HasPrefix(path, "/images/") ||
			strings.HasPrefix(path, "/admin/") ||
			strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, "/favicon") ||
			strings.HasPrefix(path, "/privacy") ||
			path == "/healthz" {
			c.Next()
			return
		}

		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		ip, ua := c.ClientIP(), c.GetHeader("User-Agent")
		s.background(func(ctx context.Context) {
			if err := s.visitors.Record(ctx, ip, ua, path); err != nil {
				s.logger.Warn("error recording visitor", "error", err)
			}
		})
		c.Next()
	}
}

// getAdminStats collects the dashboard numbers.
func (s *server) getAdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}

	vs, err := s.visitors.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Stats = vs

	repo := s.contact.Repository()
	stats.TotalMessages, stats.UnreadMessages, err = repo.Counts(ctx)
	if err != nil {
		return nil, err
	}

	stats.RecentVisitors, err = s.visitors.Recent(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats.RecentMessages, err = repo.List(ctx, contact.ListOptions{Limit: 10})
	if err != nil {
		return nil, err
	}

	snap := s.store.Snapshot()
	stats.Catalog = CatalogStats{
		State:     snap.State,
		SourceURL: snap.SourceURL,
		Projects:  len(snap.Projects),
		Featured:  len(catalog.NewView(snap.Projects).FeaturedOnly()),
		FromCache: snap.FromCache,
		LoadedAt:  snap.LoadedAt,
		Warning:   snap.Warning,
	}
	return stats, nil
}

// Setup all admin routes
func (s *server) setupAdminRoutes(r *gin.Engine) {
	// Privacy policy route
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":     "Privacy Policy",
			"retention": "12 months",
		})
	})

	// Admin login page
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	// Admin login handler
	r.POST("/admin/login", func(c *gin.Context) {
		hashedIP := s.visitors.HashIP(c.ClientIP())
		if !s.auth.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			s.logger.Warn("failed admin login attempt", "from", hashedIP)
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}

		token, err := s.auth.issue()
		if err != nil {
			s.respondError(c, errors.NewInternal(err))
			return
		}
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, token, int(adminSessionTTL.Seconds()), "/admin", "", gin.Mode() == gin.ReleaseMode, true)
		s.logger.Info("admin login successful", "from", hashedIP)
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	// Admin logout
	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", gin.Mode() == gin.ReleaseMode, true)
		s.logger.Info("admin logout", "from", s.visitors.HashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	// Protected admin routes group
	adminGroup := r.Group("/admin")
	adminGroup.Use(s.adminAuthMiddleware())

	// Admin dashboard
	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.getAdminStats(c.Request.Context())
		if err != nil {
			s.logger.Error("error loading admin stats", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}

		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	// Admin API endpoints for HTMX/AJAX
	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.getAdminStats(c.Request.Context())
		if err != nil {
			s.logger.Error("error loading admin stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	// Contact inbox
	adminGroup.GET("/messages", func(c *gin.Context) {
		unread := c.Query("unread") == "1"
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		messages, err := s.contact.Repository().List(c.Request.Context(), contact.ListOptions{
			Limit:      limit,
			UnreadOnly: unread,
		})
		if err != nil {
			s.logger.Error("error loading messages", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load messages",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-messages.html", gin.H{
			"messages": messages,
			"unread":   unread,
		})
	})

	adminGroup.POST("/messages/:id/read", func(c *gin.Context) {
		id := c.Param("id")
		if err := s.contact.Repository().MarkRead(c.Request.Context(), id); err != nil {
			s.respondAdminError(c, err)
			return
		}
		s.logger.Info("message marked read", "id", id)
		c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
	})

	adminGroup.DELETE("/messages/:id", func(c *gin.Context) {
		id := c.Param("id")
		if err := s.contact.Repository().Delete(c.Request.Context(), id); err != nil {
			s.respondAdminError(c, err)
			return
		}
		s.logger.Info("message deleted by admin", "id", id, "from", s.visitors.HashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
	})

	// View visitors
	adminGroup.GET("/visitors", func(c *gin.Context) {
		visits, err := s.visitors.Recent(c.Request.Context(), 200)
		if err != nil {
			s.logger.Error("error loading visitors", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}

		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visits,
		})
	})

	// Force a fresh fetch of the project sheet
	adminGroup.POST("/catalog/refresh", func(c *gin.Context) {
		ctx := c.Request.Context()
		if s.store.Snapshot().State == catalog.StateIdle {
			s.store.Load(ctx, s.cfg.Catalog.SheetURL)
		}
		snap := s.store.Reload(ctx, true)
		s.logger.Info("catalog refreshed by admin", "state", snap.State, "projects", len(snap.Projects))
		c.JSON(http.StatusOK, gin.H{
			"state":    snap.State,
			"projects": len(snap.Projects),
			"warning":  snap.Warning,
		})
	})

	// Privacy compliance endpoint - remove visits past the retention window
	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		removed, err := s.visitors.Cleanup(c.Request.Context())
		if err != nil {
			s.respondAdminError(c, errors.NewInternal(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": removed})
	})

	// Admin statistics export (for backups or analysis)
	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.getAdminStats(c.Request.Context())
		if err != nil {
			s.logger.Error("error exporting admin stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.logger.Info("admin stats exported", "by", s.visitors.HashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}

func (s *server) respondAdminError(c *gin.Context, err error) {
	status := errors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("admin request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": errors.MessageOf(err)})
}
