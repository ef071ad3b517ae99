package main

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// App wires the store, feed and flows for one process.
type App struct {
	cfg   *Config
	db    *gorm.DB
	feed  *Feed
	store *Store
	forum *Forum
	mod   *Moderator
	relay *RedisRelay

	// closed when the HTTP server starts shutting down; ends open event streams
	draining  chan struct{}
	drainOnce sync.Once
}

func NewApp(ctx context.Context, cfg *Config) (*App, error) {
	db, err := OpenDB(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		CloseDB(db)
		return nil, err
	}

	feed := NewFeed()
	store, err := NewStore(db, feed)
	if err != nil {
		CloseDB(db)
		return nil, err
	}
	a := &App{
		cfg:   cfg,
		db:    db,
		feed:  feed,
		store: store,
		forum: NewForum(store),
		mod:   NewModerator(store, cfg.AtomicCredit),

		draining: make(chan struct{}),
	}

	if cfg.RedisURL != "" {
		relay, err := NewRedisRelay(ctx, cfg.RedisURL, cfg.RedisChannel, feed)
		if err != nil {
			CloseDB(db)
			return nil, err
		}
		a.relay = relay
	}
	return a, nil
}

// StartView returns a running view over both tables.
func (a *App) StartView(ctx context.Context) *View {
	v := NewView(a.store, tableQuestions, tableStudents)
	v.Start(ctx)
	return v
}

// Server returns the HTTP server for the router. Shutdown ends every open
// event stream; other in-flight requests are left to finish.
func (a *App) Server(view *View) *http.Server {
	srv := &http.Server{Addr: a.cfg.Addr, Handler: a.Router(view)}
	srv.RegisterOnShutdown(a.drain)
	return srv
}

func (a *App) drain() {
	a.drainOnce.Do(func() { close(a.draining) })
}

func (a *App) Close() error {
	if a.relay != nil {
		if err := a.relay.Close(); err != nil {
			logFor("app").WithError(err).Warn("close relay")
		}
	}
	return CloseDB(a.db)
}

func (a *App) Router(view *View) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	allowed := map[string]bool{}
	for _, o := range a.cfg.AllowedOrigins {
		allowed[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			// any http://localhost:PORT during development
			return allowed[origin] || strings.HasPrefix(origin, "http://localhost:")
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", sessionHeader},
		ExposeHeaders:    []string{sessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(EnsureParticipant(a.db, a.cfg.SecureCookies))
	{
		// Session
		api.GET("/session", GetSession())
		api.PUT("/session", EnterForum(a.db))
		api.DELETE("/session", LeaveForum(a.db))
		api.GET("/session/key", ExportKey())
		api.POST("/session/restore", RestoreSession(a.db, a.cfg.SecureCookies))

		// Forum
		api.GET("/questions", ListQuestions(view))
		api.POST("/questions", PostQuestion(a.forum))
		api.DELETE("/questions/:id", WithdrawQuestion(a.forum))
		api.GET("/students", ListStudents(view))
		api.GET("/stats", Stats(view))
		api.GET("/events", Events(a.feed, a.draining))

		// Admin panel
		admin := api.Group("/admin")
		admin.GET("/questions", AdminListQuestions(view))
		admin.POST("/questions/:id/dismiss", DismissQuestion(a.mod))
		admin.POST("/questions/:id/credit", CreditQuestion(a.store, view, a.mod))
		admin.POST("/credit-all", CreditAll(view, a.mod))
		admin.POST("/reset", ResetSession(a.mod, a.cfg.ResetStudents))
	}
	return r
}
