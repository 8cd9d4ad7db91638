package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autotradehub/autotradehub-backend/api/controllers"
	"github.com/autotradehub/autotradehub-backend/api/middleware"
	"github.com/autotradehub/autotradehub-backend/internal/cart"
	"github.com/autotradehub/autotradehub-backend/internal/catalog"
	"github.com/autotradehub/autotradehub-backend/internal/emails"
	"github.com/autotradehub/autotradehub-backend/internal/orders"
	"github.com/autotradehub/autotradehub-backend/internal/partners"
	"github.com/autotradehub/autotradehub-backend/internal/paymentmethods"
	"github.com/autotradehub/autotradehub-backend/internal/payouts"
	"github.com/autotradehub/autotradehub-backend/pkg/config"
	"github.com/autotradehub/autotradehub-backend/pkg/db"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
	"github.com/autotradehub/autotradehub-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	catalogService catalog.Service,
	resolver partners.Resolver,
	cartService cart.Service,
	ordersService orders.Service,
	paymentMethodsService paymentmethods.Service,
	payoutsService payouts.Service,
	emailsService emails.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.CORS(),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.UserContext(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/orders/{orderNumber}", controllers.PublicOrderLookup(ordersService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(catalogService, logg))
		r.Get("/products/{id}", controllers.GetProduct(catalogService, resolver, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(cartService, logg))
				r.Delete("/", controllers.ClearCart(cartService, logg))
				r.Post("/items", controllers.AddCartItem(cartService, logg))
				r.Patch("/items/{productID}", controllers.UpdateCartItem(cartService, logg))
				r.Delete("/items/{productID}", controllers.RemoveCartItem(cartService, logg))
			})

			r.Route("/payment-methods", func(r chi.Router) {
				r.Get("/", controllers.ListPaymentMethods(paymentMethodsService, logg))
				r.Post("/", controllers.CreatePaymentMethod(paymentMethodsService, logg))
			})

			r.Post("/orders/{id}/payout", controllers.PayoutOrder(payoutsService, logg))
		})

		r.Post("/emails/password-reset", controllers.SendPasswordResetEmail(emailsService, logg))
	})

	return r
}
