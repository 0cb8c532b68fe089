package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	mW "github.com/vendora/backend/internal/middleware"
	"github.com/vendora/backend/internal/models"
	"go.uber.org/zap"
)

// RouterConfig holds the HTTP settings the router needs.
type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	SwaggerURL     string
}

// Router bundles the handlers mounted by NewRouter.
type Router struct {
	Users         *UserHandler
	Products      *ProductHandler
	QR            *QRHandler
	Authenticator *mW.Authenticator
}

func NewRouter(cfg RouterConfig, h Router, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mW.SecurityHeaders)
	r.Use(mW.RequestLogger(logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	if cfg.SwaggerURL != "" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(cfg.SwaggerURL)))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/user/signup", h.Users.Signup)
		r.Post("/user/login", h.Users.Login)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(h.Authenticator.Middleware)

			r.Post("/user/logout", h.Users.Logout)
			r.Post("/user/logout/all", h.Users.LogoutAll)
			r.Get("/user/sessions", h.Users.Sessions)

			r.Get("/product/{id}", h.Products.Get)
			r.Get("/product/{id}/qr", h.QR.ProductLabel)

			r.Group(func(r chi.Router) {
				r.Use(mW.RequireRole(models.RoleBuyer))

				r.Get("/user/account", h.Users.Account)
				r.Put("/user/deposit/reset", h.Users.ResetDeposit)
				r.Put("/user/deposit/{amount}", h.Users.Deposit)
				r.Post("/product/buy/{id}", h.Products.Buy)
			})

			r.Group(func(r chi.Router) {
				r.Use(mW.RequireRole(models.RoleSeller))

				r.Post("/product", h.Products.Create)
				r.Put("/product/{id}", h.Products.Update)
				r.Delete("/product/{id}", h.Products.Delete)
			})
		})
	})

	return r
}
