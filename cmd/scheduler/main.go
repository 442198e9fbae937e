package main

import (
	"github.com/joho/godotenv"

	appthandler "lexsched/internal/appointments/handler"
	apptrepo "lexsched/internal/appointments/repository"
	apptservice "lexsched/internal/appointments/service"
	"lexsched/internal/documents"
	eventshandler "lexsched/internal/events/handler"
	eventsrepo "lexsched/internal/events/repository"
	"lexsched/internal/events/tracker"
	lshandler "lexsched/internal/legalservices/handler"
	lsrepo "lexsched/internal/legalservices/repository"
	"lexsched/internal/notifications"
	"lexsched/internal/waitinglist/engine"
	wlhandler "lexsched/internal/waitinglist/handler"
	wlrepo "lexsched/internal/waitinglist/repository"
	wlservice "lexsched/internal/waitinglist/service"
	"lexsched/pkg/app"
	"lexsched/pkg/config"
	"lexsched/pkg/kafka"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load("scheduler")
	cfg.SetMongo()

	application := app.NewApplication(cfg)

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	store, err := documents.NewGridFSStore(db, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to open document store", "error", err)
	}

	notifier := notifications.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailSender, cfg.Log)

	var producer *kafka.Producer
	var enginePublisher engine.Publisher
	var appointmentPublisher apptservice.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to create kafka producer", "error", err)
		}
		enginePublisher = producer
		appointmentPublisher = producer
		application.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close kafka producer", "error", err)
			}
		})
	}

	eventRepository := eventsrepo.NewMongoEventRepository(cfg)
	availability := tracker.NewTracker(eventRepository, cfg.Log)

	waitingListRepository := wlrepo.NewMongoWaitingListRepository(cfg)
	waitingListService := wlservice.NewWaitingListService(
		waitingListRepository, store, cfg.WaitingListCapacity, cfg.Log)

	reassignmentEngine := engine.NewEngine(
		waitingListRepository, store, availability, notifier,
		enginePublisher, cfg.HoldDuration, cfg.Log)

	appointmentRepository := apptrepo.NewMongoAppointmentRepository(cfg)
	appointmentService := apptservice.NewAppointmentService(
		appointmentRepository, store, availability, reassignmentEngine,
		appointmentPublisher, cfg.Log)

	application.SetApp(
		wlhandler.NewHandler(waitingListService, reassignmentEngine, cfg.Log),
		appthandler.NewHandler(appointmentService, cfg.Log),
		eventshandler.NewHandler(eventRepository, cfg.Log),
		lshandler.NewHandler(lsrepo.NewMongoLegalServiceRepository(cfg), cfg.Log),
		documents.NewHandler(store, cfg.Log),
	)
	application.Run()
}
