package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"bace/config"
	"bace/middleware"

	"github.com/gin-gonic/gin"
)

// Router wires every route. Static directories are optional; empty paths
// skip them.
func (h *Handler) Router(features config.Features, publicDir, qrDir string) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(middleware.RequestID(), middleware.Logging(), middleware.Recovery())
	r.Use(middleware.Maintenance(features, filepath.Join(publicDir, "coming-soon.html")))

	if qrDir != "" {
		r.Static("/qrcodes", qrDir)
	}
	if publicDir != "" {
		r.Static("/static", publicDir)
	}
	r.NoRoute(siteFallback(publicDir))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/subscribe", h.Subscribe)
		api.POST("/login-with-qr", h.LoginWithQR)
		api.POST("/orders", h.CreateOrder)

		api.POST("/payment/start", h.StartPayment)
		api.POST("/payment/notify", h.PaymentNotify)
		api.GET("/payment/success", h.PaymentSuccess)
		api.GET("/payment/failure", h.PaymentFailure)

		member := api.Group("", middleware.MemberRequired(h.Sessions))
		{
			member.GET("/verify-auth", h.VerifyAuth)
			member.POST("/logout", h.Logout)
			member.GET("/documents", h.ListDocuments)
			member.GET("/documents/:id/download", h.DownloadDocument)
			member.GET("/my/orders", h.MyOrders)
		}

		api.POST("/admin/login", h.AdminLogin)
		admin := api.Group("/admin", middleware.AdminRequired(h.Sessions))
		{
			admin.GET("/orders", h.ListOrders)
			admin.GET("/order/:id", h.GetOrder)
			admin.GET("/order/:id/proof", h.OrderProof)
			admin.PUT("/order/:id/status", h.UpdateOrderStatus)
			admin.GET("/subscribers", h.ListSubscribers)
			admin.GET("/stats", h.GetStatsOverview)
		}
	}

	return r
}

// siteFallback serves the public site for unmatched GETs outside /api.
func siteFallback(publicDir string) gin.HandlerFunc {
	var files http.Handler
	if publicDir != "" {
		files = http.FileServer(http.Dir(publicDir))
	}
	return func(c *gin.Context) {
		method := c.Request.Method
		if files != nil && (method == http.MethodGet || method == http.MethodHead) &&
			!strings.HasPrefix(c.Request.URL.Path, "/api/") {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Not found"})
	}
}
