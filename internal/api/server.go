package api

import "github.com/RoyceAzure/lab/mmart/internal/api/handler"

type Server struct {
	AuthHandler    *handler.AuthHandler
	ProductHandler *handler.ProductHandler
	CartHandler    *handler.CartHandler
	OrderHandler   *handler.OrderHandler
	LoyaltyHandler *handler.LoyaltyHandler
	AdminHandler   *handler.AdminHandler
}

func NewServer(
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	loyaltyHandler *handler.LoyaltyHandler,
	adminHandler *handler.AdminHandler,
) *Server {
	return &Server{
		AuthHandler:    authHandler,
		ProductHandler: productHandler,
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
		LoyaltyHandler: loyaltyHandler,
		AdminHandler:   adminHandler,
	}
}
