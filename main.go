package main

import (
	"log"
	"net/http"
	"os"

	"booth/config"
	"booth/jobs"
	"booth/routes"
	"booth/services"
	"booth/services/logger"
	"booth/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: không load được file .env, sử dụng biến môi trường có sẵn: %v", err)
	}

	router, m, c, err := config.InitApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	appLogger := logger.NewDefaultLogger(logger.InfoLevel)
	notifier := notification.NewMelodyService(m)

	transactionService := services.NewTransactionService(services.TransactionServiceOptions{
		DB:     config.DB,
		Logger: appLogger,
	})
	settlementService := services.NewSettlementService(services.SettlementServiceOptions{
		DB:       config.DB,
		Logger:   appLogger,
		Notifier: notifier,
	})
	compensationService := services.NewCompensationService(services.CompensationServiceOptions{
		DB:       config.DB,
		Logger:   appLogger,
		Notifier: notifier,
	})
	reconcileService := services.NewReconcileService(services.ReconcileServiceOptions{
		Transactions: transactionService,
		Settlement:   settlementService,
		Compensation: compensationService,
		Logger:       appLogger,
	})
	syncService := services.NewSyncService(services.SyncServiceOptions{
		DB:     config.DB,
		Logger: appLogger,
	})

	jobs.SetReconciler(reconcileService)
	jobs.SetSyncer(syncService)
	jobs.SetRedisClient(config.RedisClient)

	if err := jobs.InitCronJobs(c); err != nil {
		log.Fatalf("Failed to initialize cron jobs: %v", err)
	}

	config.InitWebSocket(router, m)

	routes.SetupRoutes(router, config.DB, config.RedisClient, reconcileService)

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8083"
	}

	log.Println("Server starting on port " + port + "...")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
