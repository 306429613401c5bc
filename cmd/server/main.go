package main

import (
	"fmt"
	"os"

	"github.com/kitandahub/kitanda/internal/handler"
	"github.com/kitandahub/kitanda/internal/identity"
	"github.com/kitandahub/kitanda/internal/middleware"
	"github.com/kitandahub/kitanda/internal/model"
	"github.com/kitandahub/kitanda/internal/provision"
	"github.com/kitandahub/kitanda/internal/storage"
	"github.com/kitandahub/kitanda/pkg/config"
	"github.com/kitandahub/kitanda/pkg/database"
	"github.com/kitandahub/kitanda/pkg/jwtutil"
	"github.com/kitandahub/kitanda/pkg/logger"
	"github.com/kitandahub/kitanda/pkg/metrics"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.Load("kitanda")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.Info("Starting kitanda...", conf.LogConfig()...)

	db, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	err = database.MigrateModels(
		&model.Identity{},
		&model.Store{},
		&model.StoreUser{},
		&model.Activity{},
		&model.Product{},
		&model.Plan{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database models", zap.Error(err))
	}

	seedPlans(log)

	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	mailer := &identity.LogMailer{From: conf.Mail.FromAddress}
	identities := identity.NewService(db, mailer)

	saga := provision.NewSaga(
		identities,
		&provision.GormTenantStore{DB: db},
		&provision.GormMembershipStore{DB: db},
		&provision.GormActivityStore{DB: db},
	)

	objects, err := storage.NewDiskStorage(conf.Upload.Dir, conf.Upload.PublicURL, conf.Upload.MaxBytes)
	if err != nil {
		log.Fatal("Failed to initialize upload storage", zap.Error(err))
	}

	authHandler := handler.NewAuthHandler(identities, saga, jwt, conf.Mail.RedirectOrigin)
	productHandler := handler.NewProductHandler(objects)

	httpMetrics := metrics.NewHTTPMetrics(conf.ServiceName)

	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	// Public routes
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))
	e.GET("/plans", handler.ListPlans)
	e.Static(conf.Upload.PublicURL, conf.Upload.Dir)

	auth := e.Group("/auth")
	auth.POST("/register-store", authHandler.RegisterStore)
	auth.POST("/login", authHandler.Login)
	auth.GET("/confirm", authHandler.Confirm)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(jwt))

	products := api.Group("/products")
	products.GET("", productHandler.ListProducts)
	products.POST("", productHandler.CreateProduct)
	products.GET("/:id", productHandler.GetProduct)
	products.PUT("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)
	products.POST("/image", productHandler.UploadProductImage)

	api.GET("/activities", handler.ListActivities)

	users := api.Group("/store-users")
	users.GET("", handler.ListStoreUsers)
	users.POST("", handler.AddStoreUser)
	users.DELETE("/:id", handler.RemoveStoreUser)

	log.Info("Starting server", zap.String("port", conf.Server.Port))
	if err := e.Start(":" + conf.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// seedPlans creates the default subscription plans when they do not exist
func seedPlans(log *zap.Logger) {
	plans := []model.Plan{
		{Name: "basic", Price: 0, ProductLimit: 25, UserLimit: 2},
		{Name: "standard", Price: 4900, ProductLimit: 250, UserLimit: 10},
		{Name: "premium", Price: 14900, ProductLimit: 2500, UserLimit: 50},
	}

	for _, plan := range plans {
		result := database.GetDB().Where(model.Plan{Name: plan.Name}).FirstOrCreate(&plan)
		if result.Error != nil {
			log.Warn("Failed to seed plan",
				zap.String("plan", plan.Name),
				zap.Error(result.Error))
		}
	}
}
