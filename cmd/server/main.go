package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/config"
	fraentity "github.com/emberwatch/emberwatch/internal/fra/entity"
	frahandler "github.com/emberwatch/emberwatch/internal/fra/handler"
	frarepo "github.com/emberwatch/emberwatch/internal/fra/repository"
	frasvc "github.com/emberwatch/emberwatch/internal/fra/service"
	"github.com/emberwatch/emberwatch/internal/middleware"
	procentity "github.com/emberwatch/emberwatch/internal/procurement/entity"
	prochandler "github.com/emberwatch/emberwatch/internal/procurement/handler"
	procrepo "github.com/emberwatch/emberwatch/internal/procurement/repository"
	procsvc "github.com/emberwatch/emberwatch/internal/procurement/service"
	"github.com/emberwatch/emberwatch/internal/shared/mailer"
	"github.com/emberwatch/emberwatch/internal/shared/render"
	"github.com/emberwatch/emberwatch/internal/shared/storage"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting emberwatch service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := autoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	store, err := storage.NewMinIOStore(context.Background(), storage.Options{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		zapLogger.Fatal("Failed to connect to object storage", zap.Error(err))
	}

	renderer, err := render.NewTemplateRenderer()
	if err != nil {
		zapLogger.Fatal("Failed to load document templates", zap.Error(err))
	}

	notifier := mailer.NewClient(cfg.Mailer.BaseURL, cfg.Mailer.APIKey, cfg.Mailer.From, cfg.Mailer.Timeout)
	resolver := access.NewResolver(db, rdb)

	fraRepos := frarepo.NewRepositories(db)
	fraServices := frasvc.NewServices(fraRepos, db, store, renderer, notifier, zapLogger)
	fraHandlers := frahandler.NewHandlers(fraServices)

	procRepos := procrepo.NewRepositories(db)
	procServices := procsvc.NewServices(procRepos, db, cfg, zapLogger)
	procHandlers := prochandler.NewHandlers(procServices)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, cfg, resolver, fraHandlers, procHandlers)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&fraentity.User{},
		&access.Permission{},
		&fraentity.Customer{},
		&fraentity.BillingAddress{},
		&fraentity.Requirement{},
		&fraentity.RequirementDefect{},
		&fraentity.RequirementImage{},
		&fraentity.STW{},
		&fraentity.STWDefect{},
		&fraentity.Report{},
		&fraentity.Quotation{},
		&fraentity.Invoice{},
		&fraentity.RateCatalogItem{},
		&procentity.Vendor{},
		&procentity.InventoryLocation{},
		&procentity.PurchaseOrder{},
		&procentity.PurchaseOrderItem{},
		&procentity.PurchaseOrderInvoice{},
		&procentity.PurchaseOrderReceivedInventory{},
	)
}

func registerRoutes(r *gin.Engine, cfg *config.Config, resolver *access.Resolver, fra *frahandler.Handlers, proc *prochandler.Handlers) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))

	requirements := v1.Group("/requirements")
	{
		requirements.GET("", middleware.RequireScope(resolver, access.ModuleRequirement, access.ActionList), fra.Requirement.List)
		requirements.POST("", middleware.RequireScope(resolver, access.ModuleRequirement, access.ActionCreate), fra.Requirement.Create)
		requirements.GET("/:id", middleware.RequireScope(resolver, access.ModuleRequirement, access.ActionView), fra.Requirement.Get)
		requirements.PUT("/:id", middleware.RequireScope(resolver, access.ModuleRequirement, access.ActionUpdate), fra.Requirement.Update)
		requirements.PUT("/:id/status", middleware.RequireScope(resolver, access.ModuleRequirement, access.ActionUpdate), fra.Requirement.ChangeStatus)
		requirements.PUT("/:id/surveyors", middleware.RequireScope(resolver, access.ModuleRequirement, access.ActionUpdate), fra.Requirement.AssignSurveyors)
		requirements.POST("/:id/defects", middleware.RequireScope(resolver, access.ModuleDefect, access.ActionCreate), fra.Requirement.AddDefect)
		requirements.PUT("/:id/defects/:defectId", middleware.RequireScope(resolver, access.ModuleDefect, access.ActionUpdate), fra.Requirement.UpdateDefect)
	}

	stws := v1.Group("/stws")
	{
		stws.GET("", middleware.RequireScope(resolver, access.ModuleSTW, access.ActionList), fra.STW.List)
		stws.POST("", middleware.RequireScope(resolver, access.ModuleSTW, access.ActionCreate), fra.STW.Create)
		stws.GET("/:id", middleware.RequireScope(resolver, access.ModuleSTW, access.ActionView), fra.STW.Get)
		stws.PUT("/:id", middleware.RequireScope(resolver, access.ModuleSTW, access.ActionUpdate), fra.STW.Update)
		stws.POST("/:id/convert", middleware.RequireScope(resolver, access.ModuleRequirement, access.ActionCreate), fra.Requirement.ConvertSTW)
	}

	reports := v1.Group("/reports")
	{
		reports.GET("", middleware.RequireScope(resolver, access.ModuleReport, access.ActionList), fra.Report.List)
		reports.POST("", middleware.RequireScope(resolver, access.ModuleReport, access.ActionCreate), fra.Report.Create)
		reports.GET("/:id", middleware.RequireScope(resolver, access.ModuleReport, access.ActionView), fra.Report.Get)
		reports.PUT("/:id", middleware.RequireScope(resolver, access.ModuleReport, access.ActionUpdate), fra.Report.Update)
		reports.POST("/:id/submit", middleware.RequireScope(resolver, access.ModuleReport, access.ActionUpdate), fra.Report.Submit)
	}

	quotations := v1.Group("/quotations")
	{
		quotations.GET("", middleware.RequireScope(resolver, access.ModuleQuotation, access.ActionList), fra.Quotation.List)
		quotations.POST("", middleware.RequireScope(resolver, access.ModuleQuotation, access.ActionCreate), fra.Quotation.Create)
		quotations.GET("/:id", middleware.RequireScope(resolver, access.ModuleQuotation, access.ActionView), fra.Quotation.Get)
		quotations.PUT("/:id", middleware.RequireScope(resolver, access.ModuleQuotation, access.ActionUpdate), fra.Quotation.Save)
		quotations.POST("/:id/submit", middleware.RequireScope(resolver, access.ModuleQuotation, access.ActionUpdate), fra.Quotation.Submit)
		quotations.POST("/:id/regenerate", middleware.RequireScope(resolver, access.ModuleQuotation, access.ActionUpdate), fra.Quotation.Regenerate)
		quotations.POST("/:id/send-for-approval", middleware.RequireScope(resolver, access.ModuleQuotation, access.ActionUpdate), fra.Quotation.SendForApproval)
		quotations.POST("/:id/approve", middleware.RequireScope(resolver, access.ModuleQuotation, access.ActionApprove), fra.Quotation.Approve)
		quotations.POST("/:id/reject", middleware.RequireScope(resolver, access.ModuleQuotation, access.ActionApprove), fra.Quotation.Reject)
	}

	invoices := v1.Group("/invoices")
	{
		invoices.GET("", middleware.RequireScope(resolver, access.ModuleInvoice, access.ActionList), fra.Invoice.List)
		invoices.POST("", middleware.RequireScope(resolver, access.ModuleInvoice, access.ActionCreate), fra.Invoice.Create)
		invoices.GET("/:id", middleware.RequireScope(resolver, access.ModuleInvoice, access.ActionView), fra.Invoice.Get)
		invoices.PUT("/:id/status", middleware.RequireScope(resolver, access.ModuleInvoice, access.ActionUpdate), fra.Invoice.ChangeStatus)
	}

	catalog := v1.Group("/catalog")
	{
		catalog.GET("", middleware.RequireScope(resolver, access.ModuleRateCatalog, access.ActionList), fra.Catalog.List)
		catalog.POST("", middleware.RequireScope(resolver, access.ModuleRateCatalog, access.ActionCreate), fra.Catalog.Create)
		catalog.GET("/:id", middleware.RequireScope(resolver, access.ModuleRateCatalog, access.ActionView), fra.Catalog.Get)
		catalog.PUT("/:id", middleware.RequireScope(resolver, access.ModuleRateCatalog, access.ActionUpdate), fra.Catalog.Update)
	}

	customers := v1.Group("/customers")
	{
		customers.GET("", middleware.RequireScope(resolver, access.ModuleCustomer, access.ActionList), fra.Customer.List)
		customers.POST("", middleware.RequireScope(resolver, access.ModuleCustomer, access.ActionCreate), fra.Customer.Create)
		customers.GET("/:id", middleware.RequireScope(resolver, access.ModuleCustomer, access.ActionView), fra.Customer.Get)
		customers.PUT("/:id", middleware.RequireScope(resolver, access.ModuleCustomer, access.ActionUpdate), fra.Customer.Update)
		customers.PUT("/:id/billing-address", middleware.RequireScope(resolver, access.ModuleCustomer, access.ActionUpdate), fra.Customer.SaveBillingAddress)
	}

	vendors := v1.Group("/vendors")
	{
		vendors.GET("", middleware.RequireScope(resolver, access.ModuleVendor, access.ActionList), proc.Vendor.ListVendors)
		vendors.POST("", middleware.RequireScope(resolver, access.ModuleVendor, access.ActionCreate), proc.Vendor.CreateVendor)
		vendors.GET("/:id", middleware.RequireScope(resolver, access.ModuleVendor, access.ActionView), proc.Vendor.GetVendor)
		vendors.PUT("/:id", middleware.RequireScope(resolver, access.ModuleVendor, access.ActionUpdate), proc.Vendor.UpdateVendor)
	}

	locations := v1.Group("/locations")
	{
		locations.GET("", middleware.RequireScope(resolver, access.ModuleVendor, access.ActionList), proc.Vendor.ListLocations)
		locations.POST("", middleware.RequireScope(resolver, access.ModuleVendor, access.ActionCreate), proc.Vendor.CreateLocation)
		locations.GET("/:id", middleware.RequireScope(resolver, access.ModuleVendor, access.ActionView), proc.Vendor.GetLocation)
		locations.PUT("/:id", middleware.RequireScope(resolver, access.ModuleVendor, access.ActionUpdate), proc.Vendor.UpdateLocation)
	}

	orders := v1.Group("/purchase-orders")
	{
		orders.GET("", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionList), proc.PO.List)
		orders.POST("", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionCreate), proc.PO.Create)
		orders.GET("/:id", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionView), proc.PO.Get)
		orders.PUT("/:id/status", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionUpdate), proc.PO.ChangeStatus)
		orders.PUT("/:id/items/:itemId", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionUpdate), proc.PO.UpdateItem)
		orders.POST("/:id/receipts", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionUpdate), proc.PO.AddReceipt)
		orders.GET("/:id/receipts", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionView), proc.PO.ListReceipts)
	}

	v1.GET("/receipts/:id", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionView), proc.PO.GetReceipt)
}
