package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"field_mates_server/config"
	"field_mates_server/identity"
	"field_mates_server/logging"
	"field_mates_server/routes"
	"field_mates_server/services"
	"field_mates_server/settings"
	"field_mates_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/pflag"
)

var (
	flagEnvFile = pflag.StringP("env-file", "e", ".env", "Load environment variables from the given file if it exists.")
	flagPort    = pflag.StringP("port", "p", "", "Listen on the given port instead of $PORT.")
)

func main() {
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(*flagEnvFile)
	if err != nil {
		return err
	}
	if *flagPort != "" {
		cfg.Port = *flagPort
	}

	log, err := logging.New(cfg.LogFile)
	if err != nil {
		return err
	}

	db, pushers, err := initBackend(ctx, cfg, log)
	if err != nil {
		return err
	}

	settingsStore, err := settings.Open(cfg.SettingsDB)
	if err != nil {
		return err
	}
	defer settingsStore.Close()

	// Initialize Services
	store := services.NewRecordStore(db, log, cfg.QueryResultsLimit)

	socketServer := socket.NewSocketServer(log)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Errorf("socket server stopped: %v", err)
		}
	}()
	defer socketServer.Close()

	subscriptionService := &services.SubscriptionService{
		Store:   store,
		Pushers: append(pushers, socketServer),
		Log:     log,
	}
	store.SetChangeNotifier(subscriptionService)

	userService := &services.UserService{Store: store, Session: settingsStore, Subscriptions: subscriptionService}
	matchService := &services.MatchService{Store: store}
	sessionService := &services.SessionService{Settings: settingsStore, Users: userService, Log: log}

	if cfg.IdentityPublicKey != "" {
		verifier, err := identity.NewVerifier([]byte(cfg.IdentityPublicKey), cfg.IdentityAudience)
		if err != nil {
			return err
		}
		sessionService.Verifier = verifier
	} else {
		log.Warn("IDENTITY_PUBLIC_KEY is not set; sign-in is disabled")
	}

	if err := userService.SetupSubscription(ctx); err != nil {
		log.Errorf("could not set up the UserChanges subscription: %v", err)
	}

	// Initialize the router
	r := mux.NewRouter()
	r.Use(routes.LogRequests(log))

	routes.RegisterRoutes(r)
	routes.RegisterUserRoutes(r, userService, log)
	routes.RegisterMatchRoutes(r, matchService, log)
	routes.RegisterSessionRoutes(r, sessionService, userService, log)
	r.PathPrefix("/socket.io/").Handler(socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsHandler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on port %s...", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// initBackend builds the record database and the notification pushers that
// go with the configured store backend.
func initBackend(ctx context.Context, cfg config.Config, log logging.Logger) (services.Database, []services.Pusher, error) {
	if cfg.StoreBackend == config.BackendMemory {
		log.Warn("Using in-memory record store; nothing will be persisted")
		return services.NewMemoryDatabase(), nil, nil
	}

	awscfg, err := cfg.LoadAWS(ctx)
	if err != nil {
		return nil, nil, err
	}

	log.Info("Initializing DynamoDB client...")
	db := &services.DynamoService{
		Client:    services.InitializeDynamoDBClient(awscfg, cfg.DynamoDBEndpoint),
		TableName: cfg.TableName,
		Log:       log,
	}
	if cfg.S3Bucket != "" {
		db.Assets = &services.S3AssetStore{
			Client: services.InitializeS3Client(awscfg, cfg.S3Endpoint),
			Bucket: cfg.S3Bucket,
		}
	} else {
		log.Warn("S3_BUCKET_NAME is not set; records with assets cannot be saved")
	}

	var pushers []services.Pusher
	if cfg.NotificationQueueURL != "" {
		pushers = append(pushers, &services.SQSPusher{
			Client:   services.InitializeSQSClient(awscfg, cfg.SQSEndpoint),
			QueueURL: cfg.NotificationQueueURL,
		})
	}
	return db, pushers, nil
}
