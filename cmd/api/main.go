package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fulfillment-platform/warehouse-core/internal/api/dto"
	"github.com/fulfillment-platform/warehouse-core/internal/application"
	"github.com/fulfillment-platform/warehouse-core/internal/domain"
	kafkaInfra "github.com/fulfillment-platform/warehouse-core/internal/infrastructure/kafka"
	mongoRepo "github.com/fulfillment-platform/warehouse-core/internal/infrastructure/mongodb"
	"github.com/fulfillment-platform/warehouse-core/internal/infrastructure/projections"
	"github.com/fulfillment-platform/warehouse-core/pkg/kafka"
	"github.com/fulfillment-platform/warehouse-core/pkg/logging"
	"github.com/fulfillment-platform/warehouse-core/pkg/metrics"
	"github.com/fulfillment-platform/warehouse-core/pkg/middleware"
	"github.com/fulfillment-platform/warehouse-core/pkg/mongodb"
	"github.com/fulfillment-platform/warehouse-core/pkg/tracing"
)

const serviceName = "warehouse-core"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting warehouse-core API")

	config := loadConfig()
	ctx := context.Background()

	// Tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))

	// MongoDB
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Kafka producer behind a circuit breaker
	producer := kafka.NewProducer(config.Kafka)
	breakerProducer := kafka.NewCircuitBreakerProducer(producer, logger)
	defer breakerProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Repositories
	eventRepo := mongoRepo.NewEventRepository(mongoClient)
	reservationRepo := mongoRepo.NewReservationRepository(mongoClient)
	statusRepo := projections.NewOrderStatusRepository(mongoClient)
	notifier := kafkaInfra.NewMoveNotifier(breakerProducer)

	// Application services
	eventService := application.NewEventService(eventRepo, statusRepo, mongoClient, logger, m)
	reservationService := application.NewReservationService(reservationRepo, eventRepo, logger, m)
	availabilityService := application.NewAvailabilityService(eventRepo, reservationRepo, logger)
	warehouseService := application.NewWarehouseService(eventRepo, config.Layout, logger)
	moveService := application.NewMoveService(eventRepo, mongoClient, notifier, logger, m)

	// Router
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	{
		orders := api.Group("/orders")
		{
			orders.GET("", listOrdersHandler(eventService, logger))
			orders.GET("/:orderType", orderIDsHandler(eventService, logger))
			orders.POST("/:orderType/events", appendEventHandler(eventService, logger))
			orders.POST("/:orderType/:orderId/events", appendEventHandler(eventService, logger))
			orders.GET("/:orderType/:orderId/events", historyHandler(eventService, logger))
			orders.GET("/:orderType/:orderId/status", statusHandler(eventService, logger))
			orders.DELETE("/:orderType/:orderId/draft", purgeDraftHandler(eventService, logger))
		}

		reservations := api.Group("/reservations")
		{
			reservations.PUT("/:orderId", replaceReservationsHandler(reservationService, logger))
			reservations.GET("/:orderId", getReservationsHandler(reservationService, logger))
		}

		api.GET("/availability", availabilityHandler(availabilityService, logger))

		warehouse := api.Group("/warehouse")
		{
			warehouse.GET("/map", warehouseMapHandler(warehouseService, logger))
			warehouse.GET("/pallets/:code", palletHandler(warehouseService, logger))
		}

		moves := api.Group("/moves")
		{
			moves.POST("", createMoveHandler(moveService, logger))
			moves.GET("", listMovesHandler(moveService, logger))
			moves.GET("/:moveId", getMoveHandler(moveService, logger))
			moves.POST("/:moveId/take", takeMoveHandler(moveService, logger))
			moves.POST("/:moveId/complete", completeMoveHandler(moveService, logger))
		}
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
	Layout     application.WarehouseLayout
}

func loadConfig() *Config {
	layout := application.DefaultLayout()
	layout.Rows = getEnvInt("WAREHOUSE_ROWS", layout.Rows)
	layout.SectionsPerRow = getEnvInt("WAREHOUSE_SECTIONS_PER_ROW", layout.SectionsPerRow)
	layout.TiersPerSection = getEnvInt("WAREHOUSE_TIERS_PER_SECTION", layout.TiersPerSection)
	layout.CellsPerTier = getEnvInt("WAREHOUSE_CELLS_PER_TIER", layout.CellsPerTier)

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8020"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "warehouse"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
			ReplicaSet:     getEnv("MONGODB_REPLICA_SET", ""),
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
		Layout: layout,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// HTTP Handlers

func appendEventHandler(service *application.EventService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.AppendEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.type": c.Param("orderType"),
			"order.id":   c.Param("orderId"),
		})

		result, err := service.Append(c.Request.Context(), application.AppendCommand{
			OrderType: c.Param("orderType"),
			OrderID:   c.Param("orderId"),
			Action:    req.Action,
			Payload:   req.Payload,
			Agency:    req.Agency,
			User:      req.User,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

func historyHandler(service *application.EventService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderType := domain.OrderType(c.Param("orderType"))
		orderID := c.Param("orderId")

		events, err := service.History(c.Request.Context(), orderType, orderID)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		status := domain.ResolveStatus(events)
		c.JSON(http.StatusOK, dto.NewHistoryResponse(orderID, status, events))
	}
}

func statusHandler(service *application.EventService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		status, err := service.GetStatus(c.Request.Context(), domain.OrderType(c.Param("orderType")), c.Param("orderId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, status)
	}
}

func listOrdersHandler(service *application.EventService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		filter := projections.StatusFilter{
			Agency:    c.Query("agency"),
			OrderType: domain.OrderType(c.Query("order_type")),
			Bucket:    domain.Bucket(c.Query("bucket")),
		}

		orders, err := service.ListStatuses(c.Request.Context(), filter)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
	}
}

func orderIDsHandler(service *application.EventService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		ids, err := service.ListOrders(c.Request.Context(), c.Query("agency"), c.Param("orderType"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order_ids": ids, "total": len(ids)})
	}
}

func purgeDraftHandler(service *application.EventService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		err := service.PurgeDraft(c.Request.Context(), domain.OrderType(c.Param("orderType")), c.Param("orderId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func replaceReservationsHandler(service *application.ReservationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.ReplaceReservationsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		rows := make([]domain.StockRow, 0, len(req.Rows))
		for _, r := range req.Rows {
			rows = append(rows, domain.StockRow{
				Article:   r.Article,
				Size:      r.Size,
				Barcode:   r.Barcode,
				GoodsType: r.GoodsType,
				Qty:       r.Qty,
			})
		}

		err := service.Replace(c.Request.Context(), application.ReplaceCommand{
			Agency:  req.Agency,
			OrderID: c.Param("orderId"),
			Rows:    rows,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func getReservationsHandler(service *application.ReservationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		agency := c.Query("agency")
		if agency == "" {
			responder.RespondBadRequest("agency is required")
			return
		}

		rows, err := service.ListByOrder(c.Request.Context(), agency, c.Param("orderId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"rows": rows, "total": len(rows)})
	}
}

func availabilityHandler(service *application.AvailabilityService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		agency := c.Query("agency")
		if agency == "" {
			responder.RespondBadRequest("agency is required")
			return
		}

		rows, err := service.Table(c.Request.Context(), agency, c.Query("exclude_order_id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, dto.AvailabilityResponse{Agency: agency, Rows: rows})
	}
}

func warehouseMapHandler(service *application.WarehouseService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		agency := c.Query("agency")
		if agency == "" {
			responder.RespondBadRequest("agency is required")
			return
		}

		rows, err := service.Map(c.Request.Context(), agency)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"rows": rows})
	}
}

func palletHandler(service *application.WarehouseService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		agency := c.Query("agency")
		if agency == "" {
			responder.RespondBadRequest("agency is required")
			return
		}

		info, err := service.FindPallet(c.Request.Context(), agency, c.Param("code"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, info)
	}
}

func createMoveHandler(service *application.MoveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.CreateMoveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"pallet.code": req.PalletCode,
			"target.zone": req.Target.Zone,
		})

		task, err := service.CreateMove(c.Request.Context(), application.CreateMoveCommand{
			Agency:     req.Agency,
			PalletCode: req.PalletCode,
			Target:     req.Target.ToLocation(),
			ActorID:    req.ActorID,
			ActorName:  req.ActorName,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, task)
	}
}

func listMovesHandler(service *application.MoveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		agency := c.Query("agency")
		if agency == "" {
			responder.RespondBadRequest("agency is required")
			return
		}

		queue, err := service.ListMoves(c.Request.Context(), agency)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, queue)
	}
}

func getMoveHandler(service *application.MoveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		task, err := service.GetMove(c.Request.Context(), c.Param("moveId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func takeMoveHandler(service *application.MoveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.DriverRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		task, err := service.TakeMove(c.Request.Context(), c.Param("moveId"), req.DriverID, req.DriverName)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func completeMoveHandler(service *application.MoveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.DriverRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		task, err := service.CompleteMove(c.Request.Context(), c.Param("moveId"), req.DriverID)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}
