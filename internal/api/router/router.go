package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"furnistock/internal/api/inventory"
	"furnistock/internal/domain"
	"furnistock/internal/pkg/cache"
	"furnistock/internal/pkg/logger"
	"furnistock/internal/pkg/middleware"
)

// Deps reúne o que o roteador precisa, já inicializado por injeção de dependências no main.go.
type Deps struct {
	Inventory *inventory.Handler
	Tokens    middleware.TokenService
	// Cache é opcional: sem ele as rotas não têm rate limit.
	Cache           cache.Client
	RateLimit       int
	RateLimitWindow time.Duration
	Metrics         http.Handler
	Logger          logger.Logger
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- 1. Middlewares globais ---
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(d.Logger))
	r.Use(chimw.Recoverer)

	// --- 2. Rotas de Health Check e Métricas ---
	r.Get("/ping", PingHandler)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	// --- 3. Rotas do Módulo de Inventário (v1) ---
	r.Route("/v1/inventory", func(r chi.Router) {
		if d.Cache != nil {
			r.Use(middleware.RateLimiter(d.Cache, d.RateLimit, d.RateLimitWindow, d.Logger))
		}

		// Leitura: sem autenticação
		r.Get("/items", d.Inventory.QueryByColumnHandler)
		r.Get("/items/price", d.Inventory.QueryByPriceRangeHandler)
		r.Get("/items/{id}", d.Inventory.GetItemHandler)
		r.Post("/resolve", d.Inventory.ResolveHandler)
		r.Post("/availability", d.Inventory.AvailabilityHandler)

		// Escrita: exige JWT
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(d.Tokens))
			r.Post("/adjust", d.Inventory.AdjustHandler)
			r.With(middleware.RequireRole(domain.RoleManager)).Post("/restock", d.Inventory.RestockHandler)
		})
	})

	return r
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
