package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zachkp/portfolio/internal/catalog"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/db"
)

// newCLIApp creates the CLI application with all commands. Running the
// binary without a command starts the web server.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:  "portfolio",
		Usage: "Portfolio site with a spreadsheet-driven project catalog",
		Commands: []*cli.Command{
			serveCmd(),
			catalogCmd(),
			messagesCmd(),
			hashPasswordCmd(),
		},
		Action: serve,
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the web server (default)",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}
	logger := newLogger(c.App.ErrWriter, cfg.Log.Level)
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.GinMode)

	s, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	router, err := s.router()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Clean up old visitor data for privacy compliance
	s.background(func(ctx context.Context) {
		if _, err := s.visitors.Cleanup(ctx); err != nil {
			logger.Warn("privacy cleanup failed", "error", err)
		}
	})

	if cfg.Catalog.SheetURL == "" {
		logger.Warn("SHEET_URL not set, serving sample projects")
	}
	if cfg.Catalog.Refresh > 0 {
		s.bg.Add(1)
		go func() {
			defer s.bg.Done()
			s.store.Load(ctx, cfg.Catalog.SheetURL)
			s.store.Refresh(ctx, cfg.Catalog.Refresh)
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return run(ctx, srv, logger)
}

// run starts srv and shuts it down gracefully when ctx ends.
func run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("portfolio running", "addr", srv.Addr, "mode", gin.Mode())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Load the project sheet and print the normalized catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "Sheet CSV URL (defaults to SHEET_URL)"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Value: catalog.AllCategories, Usage: "Only projects in this category"},
			&cli.BoolFlag{Name: "featured", Usage: "Only featured projects"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|table"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadValidConfig()
			if err != nil {
				return err
			}
			sourceURL := c.String("url")
			if sourceURL == "" {
				sourceURL = cfg.Catalog.SheetURL
			}

			store := catalog.NewStore(
				catalog.NewHTTPFetcher(cfg.Catalog.FetchTimeout),
				catalog.WithLogger(newLogger(c.App.ErrWriter, cfg.Log.Level)),
			)
			snap := store.Load(c.Context, sourceURL)
			if snap.Warning != "" {
				fmt.Fprintf(c.App.ErrWriter, "warning: %s (%v)\n", snap.Warning, snap.Err)
			}

			view := catalog.NewView(snap.Projects)
			projects := view.FilterBy(c.String("category"))
			if c.Bool("featured") {
				projects = catalog.NewView(projects).FeaturedOnly()
			}

			switch c.String("format") {
			case "json":
				return outputJSON(c.App.Writer, projects)
			case "table":
				return outputProjectTable(c.App.Writer, projects)
			default:
				return fmt.Errorf("unknown format %q", c.String("format"))
			}
		},
	}
}

func messagesCmd() *cli.Command {
	return &cli.Command{
		Name:  "messages",
		Usage: "List stored contact messages",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "unread", Usage: "Only unread messages"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Max messages"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Skip this many messages"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadValidConfig()
			if err != nil {
				return err
			}
			conn, err := db.Init(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer conn.Close()

			messages, err := contact.NewRepository(conn).List(c.Context, contact.ListOptions{
				Limit:      c.Int("limit"),
				Offset:     c.Int("offset"),
				UnreadOnly: c.Bool("unread"),
			})
			if err != nil {
				return err
			}
			return outputJSON(c.App.Writer, messages)
		},
	}
}

func hashPasswordCmd() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print a bcrypt hash for ADMIN_PASSWORD_HASH (reads stdin when no argument is given)",
		ArgsUsage: "[password]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "cost", Value: bcrypt.DefaultCost, Usage: "bcrypt cost"},
		},
		Action: func(c *cli.Context) error {
			password := c.Args().First()
			if password == "" {
				line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("password is required")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), c.Int("cost"))
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(c.App.Writer, string(hash))
			return nil
		},
	}
}

func loadValidConfig() (Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, _ := parseLogLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputProjectTable(w io.Writer, projects []catalog.Project) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tFEATURED\tPRIORITY")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\n", p.ID, p.Title, p.Category, p.Featured, p.PriorityOrder)
	}
	return tw.Flush()
}
