package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"expensebook/internal/cache"
	"expensebook/internal/core"
	"expensebook/internal/log"
	"expensebook/internal/middleware/ratelimit"
	"expensebook/internal/middleware/security"
	"expensebook/internal/middleware/trace"
	appweb "expensebook/web"
)

// ExpenseStore is what the UI needs from the expense store.
type ExpenseStore interface {
	Snapshot() ([]core.Expense, []core.Category)
	Categories() []core.Category
	Expense(id string) (core.Expense, bool)
	AddExpense(ctx context.Context, draft core.ExpenseDraft) (core.Expense, error)
	EditExpense(ctx context.Context, id string, draft core.ExpenseDraft) error
	DeleteExpense(ctx context.Context, id string) error
	AddCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	Flush(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Options configures NewServer.
type Options struct {
	Addr               string
	Currency           string
	RateLimitPerMinute int
	// TrustedProxies are CIDRs allowed to report the client address through
	// X-Forwarded-For or X-Real-IP.
	TrustedProxies []string
	Logger         *log.Logger
}

// Server is the local web UI. It keeps no expense state of its own.
type Server struct {
	http.Server
	store     ExpenseStore
	templates *template.Template
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	cacheMgr *cache.Manager
}

// NewServer parses the embedded templates and mounts every route.
func NewServer(opts Options, st ExpenseStore) (*Server, error) {
	if st == nil {
		return nil, errors.New("http: nil store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	currency := opts.Currency
	if !core.IsSupportedCurrency(currency) {
		currency = core.DefaultCurrency
	}

	t, err := template.New("").Funcs(templateFuncs(currency)).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	clientIP := security.NewClientIP()
	for _, cidr := range opts.TrustedProxies {
		if err := clientIP.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		store:     st,
		templates: t,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:    trace.NewMiddleware(logger, clientIP.Extract),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(security.NoStoreMiddleware)
		r.Use(s.limiter.Middleware(clientIP.Extract, s.onRateLimit))

		r.Get("/", s.handleIndex)
		r.Get("/export", s.handleExport)

		r.Route("/ui", func(r chi.Router) {
			r.Get("/expense-form", s.handleExpenseForm)
			r.Get("/expenses", s.handleExpenseList)
			r.Get("/summary", s.handleSummary)
			r.Get("/categories", s.handleCategories)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", s.handleCreateExpense)
			r.Get("/{id}/edit", s.handleEditExpenseForm)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Post("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", s.handleCreateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})
	})

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.cacheMgr = cache.NewManager(logger)
	s.cacheMgr.Register(s.limiter.Clients())
	s.cacheMgr.StartCleanup(5 * time.Minute)
	return s, nil
}

// Shutdown stops accepting requests, then flushes any unsaved store changes.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cacheMgr.Stop()
	s.logMetrics(ctx)

	err := s.Server.Shutdown(ctx)
	if flushErr := s.store.Flush(ctx); flushErr != nil {
		s.logger.ErrorTypeContext(ctx, "Failed to flush pending changes", log.ErrorTypeDatabase, flushErr,
			log.FieldOperation, log.OpShutdown)
		err = errors.Join(err, flushErr)
	}
	return err
}

func (s *Server) logMetrics(ctx context.Context) {
	tm := s.tracer.GetMetrics()
	lm := s.limiter.GetMetrics()
	s.logger.InfoContext(ctx, "HTTP server metrics",
		log.FieldOperation, log.OpShutdown,
		"requests", tm.TotalRequests,
		"avg_response_us", tm.AverageResponseTime,
		"rate_limited", lm.TotalHits,
		"tracked_clients", lm.ClientCount)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	NoticeError(http.StatusTooManyRequests, "Too many changes at once. Please wait a minute and try again.").Write(w)
}
