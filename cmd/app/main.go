package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"wander/cmd/fx/account_fx"
	"wander/cmd/fx/controllers_fx"
	"wander/cmd/fx/db_fx"
	"wander/cmd/fx/expiry_fx"
	"wander/cmd/fx/mail_fx"
	"wander/cmd/fx/tour_fx"
	"wander/internal/api/controllers"
	"wander/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	app := fx.New(
		db_fx.Module,
		expiry_fx.Module,
		mail_fx.Module,
		account_fx.Module,
		tour_fx.Module,
		controllers_fx.Module,

		fx.Invoke(StartServer),
		fx.Provide(ProvideRouter),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Println("Starting HTTP server at ${PORT}")
				if err := engine.Run(":" + os.Getenv("PORT")); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	tourController *controllers.TourController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, accountController, tourController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	tourController *controllers.TourController) {

	accounts := r.Group("/accounts")
	accounts.POST("/register", accountController.Register)
	accounts.GET("/:id", accountController.GetAccount)

	accounts.POST("/forgot-password", accountController.ForgotPassword)
	accounts.PATCH("/reset-password/:email/:token", accountController.ResetPassword)

	accounts.POST("/:id/update-email", accountController.RequestEmailChange)
	accounts.PATCH("/reset-email/:email/:token", accountController.ConfirmEmailChange)
	accounts.PATCH("/confirm-email/:email/:currentEmail/:token", accountController.VerifyNewEmail)

	accounts.POST("/activate", accountController.RequestActivation)
	accounts.PATCH("/activate-confirm/:email/:token", accountController.ConfirmActivation)

	accounts.PATCH("/:id/password", accountController.UpdatePassword)
	accounts.PATCH("/:id/name", accountController.UpdateName)
	accounts.DELETE("/:id", accountController.Deactivate)

	tours := r.Group("/tours")
	tours.GET("", tourController.ListTours)
	tours.GET("/top-5-cheap", tourController.TopCheapTours)
	tours.GET("/stats", tourController.TourStats)
	tours.GET("/monthly-plan/:year", tourController.MonthlyPlan)
	tours.GET("/:id", tourController.GetTourById)
}
