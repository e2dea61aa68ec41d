package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"ambulance-dispatch-service/internal/adapters/cache"
	"ambulance-dispatch-service/internal/adapters/repositories"
	"ambulance-dispatch-service/internal/api"
	"ambulance-dispatch-service/internal/config"
	"ambulance-dispatch-service/internal/ports"
	"ambulance-dispatch-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Redis) behind ports and starts
// the HTTP server.
func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/despacho.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/despacho.json")
	port := config.Get("PORT", "8080")

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal().Err(err).Msg("init and seed")
	}

	// Route caching is optional; without Redis every route read goes
	// straight to the store.
	var rutaCache ports.RutaCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cliente := redis.NewClient(&redis.Options{Addr: addr})
		ttl := time.Duration(config.GetInt("ROUTE_CACHE_TTL_MIN", 30)) * time.Minute
		rutaCache = cache.NewRedisRutaCache(cliente, ttl)
		log.Info().Str("addr", addr).Dur("ttl", ttl).Msg("route cache enabled")
	}

	almacen := repositories.NewSqliteSolicitudRepository(db)
	lotes := repositories.NewSqliteLoteRepository(db)
	rutas := repositories.NewSqliteRutaRepository(db)
	ambulancias := repositories.NewSqliteAmbulanciaRepository(db)

	servicio := services.NuevoServicioDespacho(almacen, lotes, rutas, ambulancias, rutaCache, log.Logger)
	router := api.NewRouter(servicio)

	log.Info().Str("addr", ":"+port).Msg("server listening")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
