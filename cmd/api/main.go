package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"balikin/internal/adapter/api"
	"balikin/internal/adapter/api/handler"
	apimiddleware "balikin/internal/adapter/api/middleware"
	"balikin/internal/adapter/api/router"
	"balikin/internal/adapter/repository"
	domainrepo "balikin/internal/domain/repository"
	"balikin/internal/infrastructure/auth"
	"balikin/internal/infrastructure/ratelimit"
	"balikin/internal/infrastructure/websocket"
	"balikin/internal/usecase"
	"balikin/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var (
		listingRepo      domainrepo.ListingRepository
		chatRepo         domainrepo.ChatRepository
		notificationRepo domainrepo.NotificationRepository
		userRepo         domainrepo.UserRepository
		verifier         auth.TokenVerifier
		devVerifier      *auth.DevVerifier
	)

	switch cfg.StorageDriver {
	case "firestore":
		var opt option.ClientOption

		// Service account from environment variable (production) or file
		// path (local development).
		if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
			opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
		} else {
			serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
			if serviceAccountPath == "" {
				log.Fatalf("FIREBASE_SERVICE_ACCOUNT_JSON or FIREBASE_SERVICE_ACCOUNT_PATH is required for the firestore driver")
			}
			if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
				log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
			}
			opt = option.WithCredentialsFile(serviceAccountPath)
		}

		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}

		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		verifier, err = auth.NewFirebaseVerifier(ctx, firebaseApp)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}

		listingRepo = repository.NewFirestoreListingRepository(firestoreClient)
		chatRepo = repository.NewFirestoreChatRepository(firestoreClient)
		notificationRepo = repository.NewFirestoreNotificationRepository(firestoreClient)
		userRepo = repository.NewFirestoreUserRepository(firestoreClient)

	case "memory":
		listingRepo = repository.NewMemoryListingRepository()
		chatRepo = repository.NewMemoryChatRepository()
		notificationRepo = repository.NewMemoryNotificationRepository()
		userRepo = repository.NewMemoryUserRepository()

		devVerifier = auth.NewDevVerifier(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
		verifier = devVerifier

	default:
		log.Fatalf("Unknown storage driver: %s", cfg.StorageDriver)
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, userRepo, wsManager)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, wsManager, notificationUseCase)
	wsManager.Bind(chatUseCase)

	matchingUseCase := usecase.NewMatchingUseCase(listingRepo, userRepo)
	listingUseCase := usecase.NewListingUseCase(listingRepo, matchingUseCase, notificationUseCase)

	cleanupUseCase := usecase.NewCleanupUseCase(chatUseCase, cfg.ChatRoomTTL, cfg.SweepInterval)
	go cleanupUseCase.Start(ctx)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	e := echo.New()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier)

	routers := router.Routers{
		Listing:      handler.NewListingHandler(listingUseCase),
		Chat:         handler.NewChatHandler(chatUseCase, rateLimiter),
		Notification: handler.NewNotificationHandler(notificationUseCase),
		WebSocket:    handler.NewWebSocketHandler(wsManager, authMiddleware),
		Health:       handler.NewHealthHandler(cfg.StorageDriver),
	}
	if devVerifier != nil {
		routers.DevToken = handler.NewDevTokenHandler(devVerifier, userRepo)
	}

	router.Setup(e, routers, authMiddleware, cfg.Environment)

	log.Printf("Starting server on port %s (storage=%s)", cfg.ServerPort, cfg.StorageDriver)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
