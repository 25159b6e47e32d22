package handler

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/krishilink/krishi/internal/krishi/service"
	"github.com/krishilink/krishi/internal/krishi/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupAPITest wires the marketplace routes against an isolated test
// schema. Kafka and MinIO are left nil; both are optional backends.
func setupAPITest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	logger := zap.NewNop()
	repos := repository.NewRepositories(db)

	freightSvc := service.NewFreightService(db, repos, logger, nil)
	quoteSvc := service.NewQuoteService(db, repos, logger, nil)
	orderSvc := service.NewOrderService(repos.Order, logger, nil)
	deliverySvc := service.NewDeliveryService(db, repos, logger, nil)
	uploadSvc := service.NewUploadService(repos.Delivery, nil, "", logger)
	statsSvc := service.NewStatsService(repos, logger)

	freightHandler := NewFreightHandler(freightSvc)
	quoteHandler := NewQuoteHandler(quoteSvc)
	orderHandler := NewOrderHandler(orderSvc)
	deliveryHandler := NewDeliveryHandler(deliverySvc, uploadSvc)
	statsHandler := NewStatsHandler(statsSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	freight := api.Group("/freight")
	freight.GET("", freightHandler.List)
	freight.POST("", freightHandler.Create)
	freight.GET("/:id", freightHandler.Get)
	freight.GET("/:id/qr", freightHandler.QRPayload)
	freight.POST("/:id/accept", freightHandler.Accept)
	freight.POST("/:id/complete", freightHandler.Complete)

	quotes := api.Group("/quotes")
	quotes.GET("", quoteHandler.List)
	quotes.POST("", quoteHandler.Create)
	quotes.GET("/:id", quoteHandler.Get)
	quotes.POST("/:id/respond", quoteHandler.Respond)
	quotes.POST("/:id/approve", quoteHandler.Approve)
	quotes.POST("/:id/confirm", quoteHandler.Confirm)

	orders := api.Group("/orders")
	orders.GET("", orderHandler.List)
	orders.POST("", orderHandler.Create)
	orders.GET("/:id", orderHandler.Get)
	orders.PUT("/:id/progress", orderHandler.UpdateProgress)

	deliveries := api.Group("/deliveries")
	deliveries.GET("", deliveryHandler.List)
	deliveries.GET("/mine", deliveryHandler.ListMine)
	deliveries.GET("/:id", deliveryHandler.Get)
	deliveries.POST("/:id/accept", deliveryHandler.Accept)
	deliveries.POST("/:id/split", deliveryHandler.AcceptSplit)
	deliveries.POST("/:id/split/confirm", deliveryHandler.ConfirmSplit)
	deliveries.POST("/:id/complete", deliveryHandler.Complete)
	deliveries.GET("/:id/earnings", deliveryHandler.Earnings)

	stats := api.Group("/stats")
	stats.GET("/summary", statsHandler.Summary)
	stats.GET("/leaderboard", statsHandler.Leaderboard)

	return router, db
}

// data extracts the payload object from an envelope response.
func data(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response has no data object: %v", resp)
	}
	return d
}
