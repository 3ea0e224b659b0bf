package routes

import (
	"booth/constants"
	"booth/controllers"
	middlewares "booth/middleware"
	"booth/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, redisCli *redis.Client, reconciler controllers.Reconciler) {

	checkoutController := controllers.NewCheckoutController(db)
	boothController := controllers.NewBoothController(db, redisCli)
	reconcileController := controllers.NewReconcileController(reconciler, services.NewRedisRunLock(redisCli))

	v1 := router.Group("/api/v1")

	v1.POST("/auth/login", controllers.Login)

	v1.GET("/booths", middlewares.AuthMiddleware(), boothController.GetBooths)
	v1.PUT("/boothMaintenance", middlewares.AuthMiddleware(constants.RoleSuperAdmin, constants.RoleOperator), boothController.SetMaintenance)

	v1.POST("/checkout", middlewares.AuthMiddleware(), checkoutController.Checkout)
	v1.GET("/transactions/:id", middlewares.AuthMiddleware(), checkoutController.GetTransaction)

	v1.POST("/reconcile/:provider", middlewares.AuthMiddleware(constants.RoleSuperAdmin, constants.RoleOperator), reconcileController.RunReconcile)
}
