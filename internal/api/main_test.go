package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/psisco/zakladki/internal/auth"
	"github.com/psisco/zakladki/internal/config"
	"github.com/psisco/zakladki/internal/database"
	"github.com/psisco/zakladki/internal/models"
)

const testJWTSecret = "api_test_secret"

var testServer *Server
var testRouter chi.Router

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:14-alpine",
		postgres.WithDatabase("test_api_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		log.Fatalf("Could not start postgres: %s", err)
	}
	defer pgContainer.Terminate(ctx)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("Could not get connection string: %s", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	schema, err := os.ReadFile("../../db/init.sql")
	if err != nil {
		log.Fatalf("Could not read schema file: %s", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("Could not apply schema: %s", err)
	}

	store := database.NewStore(pool)
	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: testJWTSecret},
		Limits: config.LimitsConfig{FreeBookmarks: 100},
	}
	testServer = NewServer(cfg, store)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", testServer.RegisterHandler)
	r.Post("/api/v1/auth/login", testServer.LoginHandler)
	r.Post("/api/v1/auth/refresh", testServer.RefreshTokenHandler)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(testServer.AuthMiddleware)
		r.Get("/bookmarks/", testServer.ListBookmarksHandler)
		r.Post("/bookmarks/", testServer.CreateBookmarkHandler)
		r.Get("/bookmarks/sync", testServer.SyncBookmarksHandler)
		r.Put("/bookmarks/{bookmarkId}", testServer.UpdateBookmarkHandler)
		r.Delete("/bookmarks/{bookmarkId}", testServer.DeleteBookmarkHandler)
		r.Get("/export/{format}", testServer.ExportBookmarksHandler)
		r.Post("/import/{format}", testServer.ImportBookmarksHandler)
	})
	testRouter = r

	os.Exit(m.Run())
}

// createAPITestUser inserts a user directly and returns it together
// with a valid access token.
func createAPITestUser(t *testing.T, accountType string) (*models.User, string) {
	t.Helper()

	suffix := uuid.New().String()[:8]
	hashedPassword, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user, err := testServer.store.CreateUser(context.Background(), database.CreateUserParams{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("api_user_%s", suffix),
		Email:        fmt.Sprintf("api_user_%s@example.com", suffix),
		PasswordHash: hashedPassword,
	})
	require.NoError(t, err)

	if accountType != models.AccountTypeFree {
		_, err = testServer.store.GetPool().Exec(context.Background(),
			`UPDATE users SET account_type = $1 WHERE id = $2`, accountType, user.ID)
		require.NoError(t, err)
		user.AccountType = accountType
	}

	token, err := auth.GenerateToken(user.ID, auth.TokenTypeAccess, testJWTSecret)
	require.NoError(t, err)

	return user, token
}

func createAPITestBookmark(t *testing.T, ownerID uuid.UUID, url, title string) *models.Bookmark {
	t.Helper()

	bookmark, err := testServer.store.CreateBookmark(context.Background(), database.CreateBookmarkParams{
		ID:      uuid.New(),
		OwnerID: ownerID,
		URL:     url,
		Title:   title,
	})
	require.NoError(t, err)
	return bookmark
}
