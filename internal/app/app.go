package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "ecanteen/docs"
	"ecanteen/internal/config"
	"ecanteen/internal/handlers"
	"ecanteen/internal/logger"
	"ecanteen/internal/middleware"
	"ecanteen/internal/pdf"
	"ecanteen/internal/realtime"
	"ecanteen/internal/repositories"
	"ecanteen/internal/routes"
	"ecanteen/internal/services"
)

const shutdownTimeout = 10 * time.Second

func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.WithModule("app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := repositories.Migrate(ctx, db); err != nil {
		return err
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	passcodeRepo := repositories.NewPasscodeRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	foodItemRepo := repositories.NewFoodItemRepository(db)
	restaurantRepo := repositories.NewRestaurantRepository(db)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	passcodeService := services.NewPasscodeService(passcodeRepo, emailService,
		services.WithPasscodeTTL(cfg.Passcode.TTL),
		services.WithMaxAttempts(cfg.Passcode.MaxAttempts),
	)
	authService := services.NewAuthService()
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	credentialService := services.NewCredentialService(userRepo, passcodeService, authService, tokenService)
	userService := services.NewUserService(userRepo)
	foodItemService := services.NewFoodItemService(foodItemRepo)
	restaurantService := services.NewRestaurantService(restaurantRepo)

	notifier, err := services.NewOrderNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		// orders still go through, the kitchen just is not pinged
		log.Warn("telegram notifier disabled", zap.Error(err))
		notifier, _ = services.NewOrderNotifier("", 0)
	}
	receipts := pdf.NewReceiptGenerator(cfg.Files.RootDir, cfg.Files.FontPath)
	board := realtime.NewOrderBoard(cfg.Server.ClientURL)
	orderService := services.NewOrderService(orderRepo, foodItemRepo, userRepo, restaurantService, notifier, receipts,
		services.WithOrderEvents(board))

	// === Maintenance ===
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	scheduler := cron.New(cron.WithLogger(cron.DiscardLogger))
	if _, err := scheduler.AddFunc("@every 10m", limiter.Cleanup); err != nil {
		return fmt.Errorf("schedule limiter cleanup: %w", err)
	}
	sweeper := services.NewPasscodeSweeper(passcodeRepo,
		services.WithSweepCron(scheduler),
		services.WithSweepSchedule(cfg.Passcode.SweepSchedule),
	)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer func() { <-sweeper.Stop().Done() }()

	// === Handlers ===
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(credentialService, userService),
		User:       handlers.NewUserHandler(userService, credentialService),
		Order:      handlers.NewOrderHandler(orderService),
		FoodItem:   handlers.NewFoodItemHandler(foodItemService),
		Restaurant: handlers.NewRestaurantHandler(restaurantService),
		Health:     handlers.NewHealthHandler(db),
		Board:      handlers.NewBoardHandler(board),
	}

	// === Gin ===
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(cfg.Server.ClientURL),
	)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.SetupRoutes(router, h, tokenService, limiter.Handler())

	// === Run ===
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
