package main

import (
	"context"
	"log"
	"net/http"

	"github.com/standberg/catalog-service/internal/adapter/httpapi"
	"github.com/standberg/catalog-service/internal/adapter/repository/mongodb"
	"github.com/standberg/catalog-service/internal/adapter/storage/s3"
	"github.com/standberg/catalog-service/internal/catalog/usecase"
	"github.com/standberg/catalog-service/internal/config"
	"github.com/standberg/catalog-service/internal/imaging"
	"github.com/standberg/catalog-service/internal/mailer"
	"github.com/standberg/catalog-service/internal/platform/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		zapLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	productRepo := mongodb.NewProductRepository(mongoClient.Database(cfg.MongoDB))

	imageStore, err := s3.NewS3Storage(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey,
		cfg.MinIOBucket, cfg.MinIOUseSSL, cfg.MinIOPublicURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	leadSender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		From:      cfg.SMTPUsername,
		Recipient: cfg.LeadRecipient,
	}, zapLogger)

	catalogUC := usecase.NewCatalogUsecase(productRepo, zapLogger)

	publicHandler := httpapi.NewHandler(catalogUC, leadSender, zapLogger)
	adminHandler := httpapi.NewAdminHandler(productRepo, imageStore, imaging.NewCompressor(),
		cfg.JWTSecret, cfg.AdminUsername, cfg.AdminPassword, zapLogger)

	router := httpapi.NewRouter(publicHandler, adminHandler, cfg.JWTSecret, cfg.AllowedOrigins, zapLogger)

	zapLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		zapLogger.Fatal("HTTP server stopped", zap.Error(err))
	}
}
