package fakeapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/bookshelf/pkg/health"
	"github.com/utafrali/bookshelf/pkg/middleware"
)

const serviceName = "mockapi"

// newRouter registers every backend route.
func newRouter(h *handler, faults *faultInjector, healthHandler *health.Handler, cors middleware.CORSConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.StripSlashes)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cors))
	r.Use(faults.middleware)

	r.Get("/health", healthHandler.LivenessHandler())
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	auth := middleware.Auth(h.validateToken)
	admin := middleware.RequireRole(middleware.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.With(auth).Post("/logout", h.logout)
			r.With(auth).Get("/me", h.me)
		})

		r.Route("/books", func(r chi.Router) {
			r.Use(middleware.CacheControl(60))
			r.Get("/", h.listBooks)
			r.Get("/search", h.searchBooks)
			r.Get("/{bookID}", h.getBook)
			r.Group(func(r chi.Router) {
				r.Use(auth, admin)
				r.Post("/", h.createBook)
				r.Put("/{bookID}", h.updateBook)
				r.Delete("/{bookID}", h.deleteBook)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(auth)
			r.Get("/", h.getCart)
			r.Post("/add", h.addToCart)
			r.Delete("/clear", h.clearCart)
			r.Put("/update/{bookID}", h.updateCartItem)
			r.Delete("/{bookID}", h.removeFromCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.createOrder)
			r.Get("/", h.listOrders)
			r.With(admin).Get("/admin", h.adminListOrders)
			r.Get("/{orderID}", h.getOrder)
			r.Put("/{orderID}/cancel", h.cancelOrder)
			r.With(admin).Patch("/{orderID}/status", h.updateOrderStatus)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth)
			r.Route("/admin", func(r chi.Router) {
				r.Use(admin)
				r.Get("/list", h.adminListUsers)
				r.Put("/{userID}", h.adminUpdateUser)
				r.Delete("/{userID}", h.adminDeleteUser)
			})
			r.Get("/{userID}", h.getUser)
			r.Put("/{userID}", h.updateUser)
			r.Get("/{userID}/history", h.userHistory)
			r.Put("/{userID}/preferences", h.updatePreferences)
		})

		r.Route("/interactions", func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.createInteraction)
			r.Get("/user/{userID}", h.userInteractions)
			r.Get("/likes", h.likes)
			r.Post("/toggle-like/{bookID}", h.toggleLike)
			r.With(admin).Get("/admin/list", h.adminListInteractions)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.With(auth).Get("/for-you", h.forYou)
			r.Get("/similar/{bookID}", h.similar)
			r.Get("/trending", h.trending)
			r.Get("/by-genre/{genre}", h.byGenre)
			r.Get("/new", h.newArrivals)
		})

		r.With(auth).Get("/analytics/user-behavior", h.userBehavior)
	})

	return r
}
