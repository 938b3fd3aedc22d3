package router

import (
	"net/http"

	"foodcourt/internal/handler"
	"foodcourt/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers bundles the HTTP handlers the router wires up.
type Handlers struct {
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Payment *handler.PaymentHandler
	Review  *handler.ReviewHandler
	Address *handler.AddressHandler
	Admin   *handler.AdminHandler
	Upload  *handler.UploadHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, jwtSecret string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.BearerAuth(jwtSecret, logger)
	admin := func(next http.Handler) http.Handler {
		return auth(middleware.RequireAdmin(logger)(next))
	}

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalogue routes are public.
	mux.HandleFunc("GET /api/products", h.Product.GetAll)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.Review.ListByProduct)

	// Webhook authenticity comes from the payload signature, not a bearer
	// token.
	mux.HandleFunc("POST /api/payments/webhook", h.Payment.Webhook)

	// Authenticated customer routes.
	mux.Handle("GET /api/cart", auth(http.HandlerFunc(h.Cart.Get)))
	mux.Handle("POST /api/cart/items", auth(http.HandlerFunc(h.Cart.AddItem)))
	mux.Handle("PUT /api/cart/items", auth(http.HandlerFunc(h.Cart.UpdateItem)))
	mux.Handle("DELETE /api/cart/items/{productId}", auth(http.HandlerFunc(h.Cart.RemoveItem)))

	mux.Handle("POST /api/orders", auth(http.HandlerFunc(h.Order.Create)))
	mux.Handle("GET /api/orders", auth(http.HandlerFunc(h.Order.List)))
	mux.Handle("GET /api/orders/{id}", auth(http.HandlerFunc(h.Order.GetByID)))
	mux.Handle("GET /api/orders/{id}/history", auth(http.HandlerFunc(h.Order.GetStatusHistory)))
	mux.Handle("DELETE /api/orders/{id}", auth(http.HandlerFunc(h.Order.Delete)))

	mux.Handle("POST /api/payments/session", auth(http.HandlerFunc(h.Payment.CreateSession)))

	mux.Handle("POST /api/reviews", auth(http.HandlerFunc(h.Review.Create)))

	mux.Handle("GET /api/addresses", auth(http.HandlerFunc(h.Address.List)))
	mux.Handle("POST /api/addresses", auth(http.HandlerFunc(h.Address.Create)))
	mux.Handle("PUT /api/addresses/{id}/default", auth(http.HandlerFunc(h.Address.SetDefault)))
	mux.Handle("DELETE /api/addresses/{id}", auth(http.HandlerFunc(h.Address.Delete)))

	mux.Handle("POST /api/uploads", auth(http.HandlerFunc(h.Upload.Upload)))

	// Admin routes.
	mux.Handle("GET /api/admin/orders", admin(http.HandlerFunc(h.Admin.ListOrders)))
	mux.Handle("PUT /api/admin/orders/{id}/status", admin(http.HandlerFunc(h.Admin.UpdateStatus)))
	mux.Handle("PUT /api/admin/orders/{id}/payment-status", admin(http.HandlerFunc(h.Admin.UpdatePaymentStatus)))
	mux.Handle("PUT /api/admin/orders/{id}", admin(http.HandlerFunc(h.Admin.EditOrder)))
	mux.Handle("GET /api/admin/stats", admin(http.HandlerFunc(h.Admin.Stats)))

	// Apply middleware in order: Recovery -> Logging -> CORS
	var root http.Handler = mux
	root = middleware.CORS(root)
	root = middleware.Logging(logger)(root)
	root = middleware.Recovery(logger)(root)

	return root
}
