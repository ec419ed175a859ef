package router

import (
	"github.com/RoyceAzure/lab/mmart/internal/api"
	m "github.com/RoyceAzure/lab/mmart/internal/api/middleware"
	"github.com/RoyceAzure/lab/mmart/internal/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func SetupRouter(server *api.Server, tokenMaker *token.Maker, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(m.AuthPayloadMiddleware(tokenMaker))
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", server.AuthHandler.Register)
			r.Post("/verify-otp", server.AuthHandler.VerifyOTP)
			r.With(m.AuthMiddleware).Get("/b2b-status", server.AuthHandler.B2BStatus)
			r.With(m.AuthMiddleware).Post("/apply-wholesale", server.AuthHandler.ApplyWholesale)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", server.ProductHandler.GetProducts)
			r.Get("/{productID}", server.ProductHandler.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(m.AuthMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", server.CartHandler.GetCart)
				r.Post("/lines", server.CartHandler.AddLine)
				r.Put("/lines", server.CartHandler.ManageLine)
				r.Delete("/lines/{productID}", server.CartHandler.RemoveLine)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", server.OrderHandler.GetOrders)
				r.Get("/{orderID}", server.OrderHandler.GetOrder)
				r.Get("/{orderID}/payment-target", server.OrderHandler.GetPaymentTarget)
				r.Post("/{orderID}/checkout", server.OrderHandler.Checkout)
				r.Post("/{orderID}/receipt", server.OrderHandler.AttachReceipt)
				r.Put("/{orderID}/lines", server.CartHandler.SetLineQuantity)
			})

			r.Route("/loyalty", func(r chi.Router) {
				r.Get("/card", server.LoyaltyHandler.MyCard)
				r.Get("/bonuses", server.LoyaltyHandler.MyBonuses)
				r.Get("/history", server.LoyaltyHandler.History)
				r.Get("/referrals", server.LoyaltyHandler.MyReferrals)
			})
		})

		// TODO: admin 路由目前只擋登入，等 profile 加上角色欄位後補權限檢查
		r.Route("/admin", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Post("/orders/{orderID}/approve", server.AdminHandler.ApproveOrder)
			r.Post("/orders/{orderID}/reject", server.AdminHandler.RejectOrder)
			r.Post("/orders/{orderID}/sent", server.AdminHandler.MarkSent)
			r.Post("/bonuses/{bonusID}/approve", server.AdminHandler.ApproveBonus)
		})
	})

	return r
}
