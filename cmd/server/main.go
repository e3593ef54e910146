package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"parkmate/internal/api"
	"parkmate/internal/auth"
	"parkmate/internal/qrproof"
	"parkmate/internal/repository"
	"parkmate/internal/service"
	"parkmate/internal/store"
)

func main() {
	godotenv.Load()

	slotCount := envInt("SLOT_COUNT", 5)
	hourlyRate := envInt("HOURLY_RATE_CENTS", 500)
	location := envString("LOCATION_NAME", "Central Parking, Downtown")
	ownerName := envString("OWNER_NAME", "ParkMate Operations")

	signingSecret := os.Getenv("QR_SIGNING_SECRET")
	if signingSecret == "" {
		log.Fatal("QR_SIGNING_SECRET not set")
	}

	slotStore := store.NewSlotStore(slotCount)
	notifier := service.NewSenderService()
	bookingSvc := service.NewBookingService(slotStore, notifier, location, ownerName, hourlyRate)
	availability := service.NewAvailabilityQuery(slotStore)
	codec := qrproof.NewCodec(qrproof.NewHMACSigner(signingSecret))
	jobSvc := service.NewJobService(slotStore)

	// The archive is optional; without DATABASE_URL a purge only removes
	// bookings from memory.
	var archive *repository.ArchiveRepository
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			log.Fatalf("Failed to open DB: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		archive = repository.NewArchiveRepository(db)
	} else {
		log.Println("DATABASE_URL not set; booking archive disabled")
	}

	bookingHandler := api.NewBookingHandler(bookingSvc, availability)
	qrHandler := api.NewQRHandler(bookingSvc, codec)
	adminHandler := api.NewAdminHandler(bookingSvc, archive)
	adminAuthHandler := api.NewAdminAuthHandler(service.NewAdminAuthService())

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/book-slot", bookingHandler.BookSlot).Methods("POST")
	r.HandleFunc("/api/slots", bookingHandler.ListBookedSlots).Methods("GET")
	r.HandleFunc("/api/slot-grid", bookingHandler.SlotGrid).Methods("GET")
	r.HandleFunc("/api/availability", bookingHandler.CheckAvailability).Methods("GET")
	r.HandleFunc("/api/price-quote", bookingHandler.QuotePrice).Methods("GET")
	r.HandleFunc("/api/bookings", bookingHandler.ListBookings).Methods("GET")
	r.HandleFunc("/api/bookings/{id}/cancel", bookingHandler.CancelBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{id}/extend", bookingHandler.ExtendBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{id}/qr", qrHandler.BookingQR).Methods("GET")
	r.HandleFunc("/api/bookings/{id}/proof", qrHandler.BookingProof).Methods("GET")
	r.HandleFunc("/api/qr/verify", qrHandler.VerifyProof).Methods("POST")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/purge", adminHandler.PurgeTerminal).Methods("POST")
	admin.HandleFunc("/archive", adminHandler.ListArchived).Methods("GET")

	c := cron.New()
	if _, err := c.AddFunc("@every 10m", jobSvc.PruneExpiredIntervals); err != nil {
		log.Fatalf("Failed to schedule maintenance job: %v", err)
	}
	c.Start()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := envString("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handlers.LoggingHandler(os.Stdout, cors(r)),
	}

	go func() {
		log.Printf("Server running on port %s with %d slots", port, slotCount)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	c.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return n
}
