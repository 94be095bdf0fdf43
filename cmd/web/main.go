package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/EmptySpace206/PHRatings/internal/cron"
	"github.com/EmptySpace206/PHRatings/internal/db"
	"github.com/EmptySpace206/PHRatings/internal/service"
	"github.com/EmptySpace206/PHRatings/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	database := db.InitDB(os.Getenv("DATABASE_DSN"))
	defer database.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := db.RunMigrations(database, migrationsPath); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = 24 * time.Hour
	sessionManager.Store = sqlite3store.New(database.DB)

	clock := clockwork.NewRealClock()

	playerStore := store.NewPlayerStore(database)
	adminStore := store.NewAdminStore(database)
	challengeStore := store.NewChallengeStore(database)
	matchStore := store.NewMatchStore(database)
	tournamentStore := store.NewTournamentStore(database)

	sweeper := service.NewSweeper(database, challengeStore, matchStore, tournamentStore, clock)

	app := &application{
		sessionManager: sessionManager,
		players:        service.NewPlayerService(database, playerStore, challengeStore, matchStore, tournamentStore, clock),
		admins:         service.NewAdminService(adminStore, clock),
		challenges:     service.NewChallengeService(database, challengeStore, matchStore, playerStore, sweeper, clock),
		tournaments:    service.NewTournamentService(database, tournamentStore, playerStore, matchStore, sweeper, clock),
		matches:        service.NewMatchService(database, matchStore, playerStore, sweeper, clock),
	}

	if username := os.Getenv("DEFAULT_ADMIN_USERNAME"); username != "" {
		if err := app.admins.EnsureDefaultAdmin(context.Background(), username, os.Getenv("DEFAULT_ADMIN_PASSWORD")); err != nil {
			log.Fatal("Failed to bootstrap admin:", err)
		}
	}

	scheduler := cron.NewScheduler(sweeper)
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start sweep scheduler:", err)
	}
	defer scheduler.Stop()

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	log.Println("Server starting on", addr)
	if err := http.ListenAndServe(addr, app.routes()); err != nil {
		log.Fatal(err)
	}
}
