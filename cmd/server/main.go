// @title           Bookmark Manager API
// @version         1.0
// @host            localhost
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/psisco/zakladki/internal/api"
	"github.com/psisco/zakladki/internal/config"
	"github.com/psisco/zakladki/internal/database"

	_ "github.com/psisco/zakladki/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Failed to ping the database: %v", err)
	}
	log.Println("Connected to the database")

	store := database.NewStore(dbpool)
	server := api.NewServer(cfg, store)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("https://localhost/swagger/doc.json"),
	))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Bookmark server is running. Documentation available at /swagger/index.html"))
	})

	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/auth/register", server.RegisterHandler)
	r.Post("/api/v1/auth/login", server.LoginHandler)
	r.Post("/api/v1/auth/refresh", server.RefreshTokenHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.AuthMiddleware)
		r.Get("/bookmarks/", server.ListBookmarksHandler)
		r.Post("/bookmarks/", server.CreateBookmarkHandler)
		r.Get("/bookmarks/sync", server.SyncBookmarksHandler)
		r.Put("/bookmarks/{bookmarkId}", server.UpdateBookmarkHandler)
		r.Delete("/bookmarks/{bookmarkId}", server.DeleteBookmarkHandler)
		r.Get("/export/{format}", server.ExportBookmarksHandler)
		r.Post("/import/{format}", server.ImportBookmarksHandler)
	})

	log.Printf("Starting server on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
