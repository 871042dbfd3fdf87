package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barberbook-backend/config"
	"barberbook-backend/controllers"
	"barberbook-backend/queue"
	"barberbook-backend/routes"
	"barberbook-backend/services"
	"barberbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
}

func main() {
	if os.Getenv("JWT_SECRET") == "" && gin.Mode() != gin.ReleaseMode {
		// Tokens stop verifying on restart; fine for local runs only.
		os.Setenv("JWT_SECRET", utils.GenerateJWTSecret())
		log.Println("JWT_SECRET not set, using a generated development secret")
	}
	cfg := config.Load()

	config.ConnectDB(cfg.DatabaseURL)
	if err := config.Migrate(config.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	busyCache := services.NewBusyCache(config.NewRedisClient(), 0)
	dispatcher := services.NewDispatcher(cfg)
	sender := services.NewMessageSender(config.DB, dispatcher, cfg.ShopLocation)

	var publisher queue.Publisher
	if cfg.AMQPURL != "" {
		amqpPublisher := queue.NewAMQPPublisher(cfg.AMQPURL)
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		go func() {
			if err := queue.StartBookingConsumer(ctx, cfg.AMQPURL, sender.HandleBookingCreated); err != nil && ctx.Err() == nil {
				log.Printf("Booking consumer stopped: %v", err)
			}
		}()
	} else {
		publisher = queue.NewDirectPublisher(sender.HandleBookingCreated)
	}

	notifications := services.NewNotificationService(config.DB, services.NewHub())
	appointments := services.NewAppointmentService(config.DB, cfg.ShopLocation, busyCache)
	availability := services.NewAvailabilityService(config.DB, cfg.ShopLocation,
		services.WithPolicy(services.ParseSlotPolicy(cfg.SlotPolicy)),
		services.WithStep(cfg.SlotStep),
		services.WithWorkingHours(cfg.SlotWindow == "schedule"),
		services.WithBusyCache(busyCache),
	)
	h := &controllers.Handlers{
		Availability: availability,
		Booking: services.NewBookingService(config.DB, cfg.ShopLocation, notifications,
			services.WithSlotGrid(availability),
			services.WithBookingCache(busyCache),
			services.WithPublisher(publisher),
			services.WithBookingTimeout(cfg.BookingTimeout),
		),
		Appointments:  appointments,
		Notifications: notifications,
		Reports:       services.NewReportService(config.DB, cfg.ShopLocation),
		Messages:      sender,
	}

	reminders := services.NewReminderService(config.DB, sender, appointments, cfg.ShopLocation)
	if err := reminders.StartScheduler(cfg.ReminderCron, cfg.ExpiryCron); err != nil {
		log.Fatalf("Scheduler setup failed: %v", err)
	}
	defer reminders.Stop()

	r := routes.SetupRouter(h, cfg.CORSOrigins)
	printRoutes(r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	if direct, ok := publisher.(*queue.DirectPublisher); ok {
		direct.Wait()
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
