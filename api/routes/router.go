package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modawear/modawear-backend/api/controllers"
	"github.com/modawear/modawear-backend/api/middleware"
	authsvc "github.com/modawear/modawear-backend/internal/auth"
	cartsvc "github.com/modawear/modawear-backend/internal/cart"
	checkoutsvc "github.com/modawear/modawear-backend/internal/checkout"
	ordersvc "github.com/modawear/modawear-backend/internal/orders"
	productsvc "github.com/modawear/modawear-backend/internal/products"
	usersvc "github.com/modawear/modawear-backend/internal/users"
	"github.com/modawear/modawear-backend/pkg/auth/session"
	"github.com/modawear/modawear-backend/pkg/config"
	"github.com/modawear/modawear-backend/pkg/logger"
	"github.com/modawear/modawear-backend/pkg/metrics"
	"github.com/modawear/modawear-backend/pkg/redis"
)

// Deps bundles everything the router needs wired in.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry

	Auth     authsvc.Service
	Products productsvc.Service
	Carts    cartsvc.Service
	Orders   ordersvc.Service
	Checkout checkoutsvc.Service
	Users    usersvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/register", controllers.Register(deps.Auth, logg))
		r.Post("/refresh", controllers.Refresh(deps.Auth, logg))
		r.Post("/logout", controllers.Logout(deps.Auth, logg))
	})

	// Catalog reads are public; the storefront browses without an account.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/", controllers.CreateProduct(deps.Products, logg))
			r.Put("/{productId}", controllers.UpdateProduct(deps.Products, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(deps.Products, logg))
		})
	})

	r.Route("/api/v1/carts", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.With(middleware.RequireAdmin(logg)).Get("/", controllers.ListCarts(deps.Carts, logg))
		r.With(middleware.RequireAdmin(logg)).Delete("/{userId}", controllers.DeleteCart(deps.Carts, logg))

		r.Get("/{userId}", controllers.GetCart(deps.Carts, logg))
		r.Put("/{userId}", controllers.ClearCart(deps.Carts, logg))
		r.With(middleware.Idempotency(deps.Redis, logg)).Post("/{userId}/items", controllers.AddCartItem(deps.Carts, logg))
		r.Post("/{userId}/items/{productId}", controllers.AdjustCartItem(deps.Carts, logg))
		r.Delete("/{userId}/items/{productId}", controllers.RemoveCartItem(deps.Carts, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.With(middleware.RequireAdmin(logg)).Get("/", controllers.ListAllOrders(deps.Orders, logg))
		r.With(middleware.RequireAdmin(logg)).Put("/{orderId}/status", controllers.UpdateOrderStatus(deps.Orders, logg))

		r.Get("/{userId}", controllers.ListUserOrders(deps.Orders, logg))
		r.Delete("/{userId}/{orderId}", controllers.CancelOrder(deps.Orders, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.With(middleware.Idempotency(deps.Redis, logg)).Post("/api/v1/checkout", controllers.Checkout(deps.Checkout, logg))
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.With(middleware.RequireAdmin(logg)).Get("/", controllers.ListUsers(deps.Users, logg))
		r.Get("/{userId}", controllers.GetUser(deps.Users, logg))
		r.Put("/{userId}", controllers.UpdateUser(deps.Users, logg))
		r.Delete("/{userId}", controllers.DeleteUser(deps.Users, logg))
	})

	return r
}
