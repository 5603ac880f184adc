package main

import (
	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/handler"
	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/repository"
	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/service"
	"github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/validator"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/app"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/config"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/kafka"
	kafkaconfig "github.com/ye-spencer/ACMWebsitePort-sub000/pkg/kafka/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service", "room", cfg.RoomName)
	reservationService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ReservationService {
	reservationValidator := validator.NewReservationValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewMongoRoomLockRepository(cfg)

	var publisher service.EventPublisher
	if cfg.KafkaEnabled {
		kafkaCfg, err := kafkaconfig.Load()
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
		producer, err := kafka.NewProducer(kafkaCfg, cfg.ReservationTopic, cfg.ReservationDLQ)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		publisher = producer
		cfg.Log.Info("Reservation events enabled", "topic", cfg.ReservationTopic)
	}

	reservationService := service.NewReservationService(
		bookingRepo,
		lockRepo,
		reservationValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}
