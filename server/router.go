package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the gin engine with all routes and middleware
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.metrics.GinMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// The webhook is authenticated by its signature, not a bearer token
	api.POST("/wallet/deposit", s.handleDepositWebhook)
	api.GET("/draws/:id/winners", s.handleListWinners)

	authed := api.Group("")
	authed.Use(authMiddleware(s.jwtSecret))
	{
		authed.POST("/wallet/deposit/intent", s.handleDepositIntent)
		authed.GET("/wallet", s.handleGetWallet)
		authed.GET("/wallet/transactions", s.handleListTransactions)
		authed.PUT("/user/withdrawal-address", s.handleSetWithdrawalAddress)
		authed.GET("/user/ticket-limits", s.handleTicketLimits)
		authed.POST("/draws/:id/enter", s.handleEnterDraw)
		authed.POST("/withdrawals", s.handleCreateWithdrawal)
		authed.GET("/withdrawals", s.handleListWithdrawals)
	}

	admin := api.Group("/admin")
	admin.Use(authMiddleware(s.jwtSecret), requireAdmin())
	{
		admin.POST("/draws", s.handleCreateDraw)
		admin.POST("/draws/execute", s.handleExecuteDraw)
		admin.POST("/withdrawals/update", s.handleReviewWithdrawal)
	}

	return r
}
