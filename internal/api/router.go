package api

import (
	"fmt"
	"net/http"

	_ "github.com/estately/api/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/estately/api/internal/api/handlers"
	"github.com/estately/api/internal/api/middleware"
	"github.com/estately/api/internal/config"
	"github.com/estately/api/internal/repositories"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// SetupRouter wires repositories, handlers and middleware into the full
// HTTP handler chain. images may be nil when object storage is not
// configured; the upload route then reports 503.
func SetupRouter(cfg *config.Config, db *gorm.DB, images *repositories.ImageStore) http.Handler {
	users := repositories.NewUserRepository(db)
	listings := repositories.NewListingRepository(db)

	authHandler := handlers.NewAuthHandler(users, cfg)
	listingHandler := handlers.NewListingHandler(listings)
	userHandler := handlers.NewUserHandler(users, listings, cfg)
	uploadHandler := handlers.NewUploadHandler(images)

	requireAuth := middleware.Auth(cfg.JWTSecret)

	mainMux := http.NewServeMux()

	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	// ---------- AUTH ROUTES ----------
	authMux := http.NewServeMux()
	authMux.HandleFunc("/signup", authHandler.Signup)
	authMux.HandleFunc("/signin", authHandler.Signin)
	authMux.HandleFunc("/signout", authHandler.Signout)
	authMux.HandleFunc("/google", authHandler.GoogleLogin)
	authMux.HandleFunc("/google/callback", authHandler.GoogleCallback)

	mainMux.Handle("/api/auth/", http.StripPrefix("/api/auth", authMux))

	// ---------- LISTING ROUTES ----------
	// Search and single-listing reads are public; every mutation and the
	// image presign go through the token resolver.
	listingMux := http.NewServeMux()
	listingMux.HandleFunc("/get", listingHandler.Search)
	listingMux.HandleFunc("/get/{id}", listingHandler.Get)
	listingMux.Handle("/create", requireAuth(http.HandlerFunc(listingHandler.Create)))
	listingMux.Handle("/update/{id}", requireAuth(http.HandlerFunc(listingHandler.Update)))
	listingMux.Handle("/delete/{id}", requireAuth(http.HandlerFunc(listingHandler.Delete)))
	listingMux.Handle("/upload-url", requireAuth(http.HandlerFunc(uploadHandler.PresignUpload)))

	mainMux.Handle("/api/listing/", http.StripPrefix("/api/listing", listingMux))

	// ---------- USER ROUTES ----------
	userMux := http.NewServeMux()
	userMux.HandleFunc("GET /{id}", userHandler.Get)
	userMux.Handle("/update/{id}", requireAuth(http.HandlerFunc(userHandler.Update)))
	userMux.Handle("/delete/{id}", requireAuth(http.HandlerFunc(userHandler.Delete)))
	userMux.Handle("/listings/{id}", requireAuth(http.HandlerFunc(userHandler.Listings)))

	mainMux.Handle("/api/user/", http.StripPrefix("/api/user", userMux))

	handler := cors.New(cfg.CorsConfig).Handler(mainMux)
	handler = middleware.Logger(handler)
	return middleware.Recovery(handler)
}
