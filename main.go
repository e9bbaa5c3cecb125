package main

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/catalog"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/db"
	"github.com/Zachkp/portfolio/internal/errors"
	"github.com/Zachkp/portfolio/internal/visitors"
)

//go:embed templates/*.html
var templateFS embed.FS

func main() {
	if err := newCLIApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// server holds everything the handlers share.
type server struct {
	cfg      Config
	logger   *slog.Logger
	db       *sql.DB
	store    *catalog.Store
	contact  *contact.Service
	visitors *visitors.Tracker
	auth     *adminAuth
	profile  Profile

	bg sync.WaitGroup
}

func newServer(cfg Config, logger *slog.Logger) (*server, error) {
	conn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return nil, err
	}

	profile, err := loadProfile(cfg.ProfilePath)
	if err != nil {
		conn.Close()
		return nil, err
	}

	tracker, err := visitors.NewTracker(conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}

	auth, err := newAdminAuth(cfg.Admin, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}

	contactOpts := []contact.Option{contact.WithLogger(logger)}
	if n := cfg.SMTP.notifier(); n != nil {
		contactOpts = append(contactOpts, contact.WithNotifier(n))
		logger.Info("contact notifications enabled", "to", cfg.SMTP.To)
	}

	store := catalog.NewStore(
		catalog.NewHTTPFetcher(cfg.Catalog.FetchTimeout),
		catalog.WithCache(catalog.NewSQLiteCache(conn, nil)),
		catalog.WithLogger(logger),
	)

	s := &server{
		cfg:      cfg,
		logger:   logger,
		db:       conn,
		store:    store,
		visitors: tracker,
		auth:     auth,
		profile:  profile,
	}
	contactOpts = append(contactOpts, contact.WithSpawner(s.spawn))
	s.contact = contact.NewService(contact.NewRepository(conn), contactOpts...)
	return s, nil
}

// Close waits for background writes and closes the database.
func (s *server) Close() error {
	s.bg.Wait()
	return s.db.Close()
}

// background runs fn outside the request with its own deadline.
func (s *server) background(fn func(ctx context.Context)) {
	s.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fn(ctx)
	})
}

// spawn runs fn in a goroutine that Close waits for.
func (s *server) spawn(fn func()) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn()
	}()
}

// catalog returns the current catalog, loading it on first use.
func (s *server) catalog(ctx context.Context) catalog.Snapshot {
	return s.store.Load(ctx, s.cfg.Catalog.SheetURL)
}

var templateFuncs = template.FuncMap{
	"categoryLabel": catalog.CategoryLabel,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"join": strings.Join,
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

func (s *server) router() (*gin.Engine, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		r.Use(gin.Logger())
	}
	r.SetHTMLTemplate(tmpl)

	r.Static("/images", "./images")
	r.Static("/static", "./static")

	r.Use(s.visitorTrackingMiddleware())

	// Home page route
	r.GET("/", s.handleIndex)

	// Project grid and modal fragments
	r.GET("/projects", s.handleProjects)
	r.GET("/projects/:id", s.handleProjectDetail)
	r.GET("/api/projects", s.handleProjectsAPI)

	// HTMX Contact form endpoint - returns just the form HTML
	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"title": "Contact Me",
		})
	})

	// Work experience content
	r.GET("/work-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "work-content.html", gin.H{
			"roles": s.profile.Experience,
		})
	})

	// Education content
	r.GET("/education-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "education-content.html", gin.H{
			"credentials": s.profile.Education,
		})
	})

	// Handle contact form submission with HTMX
	r.POST("/contact", s.handleContactForm)

	// JSON contact API
	r.POST("/api/send-message", s.handleSendMessage)
	r.OPTIONS("/api/send-message", s.handleSendMessageOptions)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead} {
		r.Handle(method, "/api/send-message", s.handleMethodNotAllowed)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "catalog": s.store.Snapshot().State})
	})

	s.setupAdminRoutes(r)
	return r, nil
}

// projectsData is the template data for the project grid.
type projectsData struct {
	Active     string
	Categories []catalog.CategoryCount
	Featured   []catalog.Project
	Others     []catalog.Project
	Total      int
	Warning    string
}

func newProjectsData(snap catalog.Snapshot, category string) projectsData {
	if category == "" {
		category = catalog.AllCategories
	}
	view := catalog.NewView(snap.Projects)
	shown := catalog.NewView(view.FilterBy(category))
	return projectsData{
		Active:     category,
		Categories: view.Categories(),
		Featured:   shown.FeaturedOnly(),
		Others:     shown.NonFeaturedOnly(),
		Total:      shown.Len(),
		Warning:    snap.Warning,
	}
}

func (s *server) handleIndex(c *gin.Context) {
	snap := s.catalog(c.Request.Context())
	c.HTML(http.StatusOK, "index.html", gin.H{
		"profile":  s.profile,
		"projects": newProjectsData(snap, catalog.AllCategories),
	})
}

func (s *server) handleProjects(c *gin.Context) {
	snap := s.catalog(c.Request.Context())
	c.HTML(http.StatusOK, "projects.html", newProjectsData(snap, c.Query("category")))
}

// modalData is the template data for the project modal.
type modalData struct {
	Project     catalog.Project
	Image       string
	HasImage    bool
	ImageIndex  int
	ImageCount  int
	HasImageNav bool
	PrevIndex   int
	NextIndex   int
	Sections    []catalog.Section
}

func (s *server) handleProjectDetail(c *gin.Context) {
	snap := s.catalog(c.Request.Context())
	p, ok := catalog.NewView(snap.Projects).Lookup(c.Param("id"))
	if !ok {
		s.respondError(c, errors.NewNotFound("project", c.Param("id")))
		return
	}

	// Scroll locking happens in the browser; the server only needs the
	// image navigation state.
	detail := catalog.NewDetail(nil)
	detail.Open(p)
	defer detail.Close()
	if raw := c.Query("image"); raw != "" {
		if i, err := strconv.Atoi(raw); err == nil {
			detail.SetImage(i)
		}
	}

	image, hasImage := detail.CurrentImage()
	c.HTML(http.StatusOK, "project-modal.html", modalData{
		Project:     p,
		Image:       image,
		HasImage:    hasImage,
		ImageIndex:  detail.ImageIndex(),
		ImageCount:  len(p.Images),
		HasImageNav: detail.HasImageNav(),
		PrevIndex:   detail.PrevIndex(),
		NextIndex:   detail.NextIndex(),
		Sections:    catalog.Sections(p),
	})
}

func (s *server) handleProjectsAPI(c *gin.Context) {
	snap := s.catalog(c.Request.Context())
	view := catalog.NewView(snap.Projects)
	projects := view.FilterBy(c.Query("category"))
	switch c.Query("featured") {
	case "true":
		projects = catalog.NewView(projects).FeaturedOnly()
	case "false":
		projects = catalog.NewView(projects).NonFeaturedOnly()
	}
	c.JSON(http.StatusOK, gin.H{
		"state":      snap.State,
		"projects":   projects,
		"categories": view.Categories(),
		"warning":    snap.Warning,
		"from_cache": snap.FromCache,
	})
}

func (s *server) handleContactForm(c *gin.Context) {
	var sub contact.Submission
	if err := c.ShouldBind(&sub); err != nil {
		s.respondError(c, errors.NewInvalidRequest(contact.MsgMissingFields))
		return
	}

	if _, err := s.contact.Submit(c.Request.Context(), sub); err != nil {
		// Fragments are swapped in place, so errors still answer 200.
		msg := "Sorry, there was an error sending your message. Please try again later."
		if errors.Is(err, errors.ErrInvalidRequest) {
			msg = errors.MessageOf(err)
		}
		c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": msg})
		return
	}

	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success": "Thank you for your message! I'll get back to you soon.",
	})
}

func (s *server) handleSendMessage(c *gin.Context) {
	setCORSHeaders(c)

	var sub contact.Submission
	if err := c.ShouldBind(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": contact.MsgMissingFields})
		return
	}

	m, err := s.contact.Submit(c.Request.Context(), sub)
	if err != nil {
		c.JSON(errors.StatusOf(err), gin.H{"success": false, "error": errors.MessageOf(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      m.ID,
		"message": "Message sent successfully",
	})
}

func (s *server) handleSendMessageOptions(c *gin.Context) {
	setCORSHeaders(c)
	c.Status(http.StatusOK)
}

func (s *server) handleMethodNotAllowed(c *gin.Context) {
	err := errors.NewMethodNotAllowed()
	c.Header("Allow", "POST, OPTIONS")
	c.JSON(err.Status, gin.H{"error": err.Message})
}

func setCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
}

// respondError writes err as JSON for API clients and as an HTML
// fragment otherwise.
func (s *server) respondError(c *gin.Context, err error) {
	status := errors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": errors.MessageOf(err)})
		return
	}
	c.HTML(status, "error.html", gin.H{"error": errors.MessageOf(err)})
}

func wantsJSON(c *gin.Context) bool {
	if c.GetHeader("HX-Request") == "true" {
		return false
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
