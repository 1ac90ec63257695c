package main

import (
	"io"
	"log"
	"os"

	"github.com/traveltales/api/internal/config"
	"github.com/traveltales/api/internal/enrichment"
	"github.com/traveltales/api/internal/logging"
	miniostore "github.com/traveltales/api/internal/repository/minio"
	"github.com/traveltales/api/internal/repository/postgres"
	"github.com/traveltales/api/internal/service"
	transport "github.com/traveltales/api/internal/transport/http"
	"github.com/traveltales/api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewTCPWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("Warning: logstash writer unavailable: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	minioClient, err := miniostore.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect minio: %v", err)
	}
	storage := miniostore.NewStorage(minioClient, cfg.MinIOPublicURL, cfg.MinIOUseSSL)

	tokens := util.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	userRepo := postgres.NewUserRepo(db)
	diaryRepo := postgres.NewDiaryRepo(db)
	tripRepo := postgres.NewTripRepo(db)

	weather := enrichment.NewWeatherClient(cfg.WeatherAPIKey)
	geocode := enrichment.NewGeocodeClient(cfg.MapsAPIKey)
	events := enrichment.NewEventsClient(cfg.EventsAPIKey)

	authSvc := service.NewAuthService(userRepo, tokens)
	diarySvc := service.NewDiaryService(diaryRepo, weather)
	tripSvc := service.NewTripService(tripRepo)

	e := transport.NewRouter(cfg.AllowOrigins)
	uploads := transport.NewUploader(storage, cfg.MinIOBucket, cfg.UploadMaxBytes)

	transport.RegisterAuth(e, authSvc, uploads)
	transport.RegisterDiaries(e, authSvc, diarySvc, uploads)
	transport.RegisterTrips(e, authSvc, tripSvc, uploads)
	transport.RegisterEnrichment(e, weather, geocode, events)
	transport.RegisterSwagger(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
