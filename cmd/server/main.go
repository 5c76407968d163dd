package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bridge-gate.backend/internal/config"
	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/infrastructure/blockchain"
	"bridge-gate.backend/internal/infrastructure/jobs"
	"bridge-gate.backend/internal/infrastructure/models"
	"bridge-gate.backend/internal/infrastructure/oracle"
	"bridge-gate.backend/internal/infrastructure/relay"
	"bridge-gate.backend/internal/infrastructure/repositories"
	"bridge-gate.backend/internal/interfaces/http/handlers"
	"bridge-gate.backend/internal/interfaces/http/middleware"
	"bridge-gate.backend/internal/usecases"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/jwt"
	"bridge-gate.backend/pkg/logger"
	"bridge-gate.backend/pkg/redis"
)

// messagePublisher is what the outbox relay hands pending messages to
type messagePublisher interface {
	Publish(ctx context.Context, msg *entities.CrossChainMessage) error
}

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	connectRelay = func(cfg config.NATSConfig) (messagePublisher, func(), error) {
		conn, js, err := relay.Connect(relay.NATSConfig{
			URL:           cfg.URL,
			Stream:        cfg.Stream,
			SubjectPrefix: cfg.SubjectPrefix,
			Timeout:       cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return relay.NewNATSPublisher(js, cfg.SubjectPrefix), func() { _ = conn.Drain() }, nil
	}
	runServer = func(ctx context.Context, r *gin.Engine, port string) error {
		srv := &http.Server{Addr: ":" + port, Handler: r}
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
	getStdDB = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("✅ Connected to PostgreSQL via GORM")

	gateCfg, err := gateConfigFrom(cfg.Bridge)
	if err != nil {
		return err
	}

	// Initialize repositories
	assetRepo := repositories.NewAssetRepository(db)
	subRepo := repositories.NewSubmissionRepository(db)
	chainRepo := repositories.NewChainConfigRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	confirmRepo := repositories.NewConfirmationRepository(db)

	// Chain access
	clientFactory := blockchain.NewClientFactory(cfg.Bridge.OriginRPCURLs)
	defer clientFactory.Close()

	var metadata usecases.TokenMetadataReader = blockchain.NewERC20MetadataReader(clientFactory)
	var deployer usecases.WrappedAssetDeployer
	if gateCfg.DeployerAddress != nil && cfg.Bridge.TokenProxyInitCode != "" {
		d, err := blockchain.NewCreate2Deployer(gateCfg.DeployerAddress, common.FromHex(cfg.Bridge.TokenProxyInitCode))
		if err != nil {
			return fmt.Errorf("failed to initialize wrapped asset deployer: %w", err)
		}
		deployer = d
	}
	var simulator usecases.CallSimulator
	if cfg.Bridge.LocalRPCURL != "" {
		client, err := blockchain.NewEVMClient(cfg.Bridge.LocalRPCURL)
		if err != nil {
			return fmt.Errorf("failed to connect local RPC: %w", err)
		}
		defer client.Close()
		simulator = blockchain.NewCallSimulator(client)
	}
	var signatures usecases.SignatureFetcher
	if cfg.Oracle.APIURL != "" {
		signatures = oracle.NewSignatureClient(cfg.Oracle.APIURL, cfg.Oracle.Timeout)
	}

	publisher, closeRelay, err := connectRelay(cfg.NATS)
	if err != nil {
		return fmt.Errorf("failed to connect relay transport: %w", err)
	}
	defer closeRelay()

	// Initialize usecases
	gate := usecases.NewGate(repositories.NewUnitOfWork(db), gateCfg)
	access := usecases.NewAccessControl(roleRepo)
	registry := usecases.NewAssetRegistry(gate, assetRepo, chainRepo, access, metadata, deployer)
	confirmations := usecases.NewConfirmationUsecase(gate, confirmRepo, settingsRepo, access)
	transfers := usecases.NewTransferUsecase(gate, registry, assetRepo, subRepo, chainRepo, messageRepo, ledgerRepo,
		confirmations, usecases.NewConfigLoader(settingsRepo, chainRepo, assetRepo),
		usecases.NewLedgerCallProxy(ledgerRepo, gateCfg.CallProxyAddress, simulator), signatures)
	reserves := usecases.NewReserveUsecase(gate, assetRepo, ledgerRepo, access,
		usecases.NewTreasuryFeeProxy(ledgerRepo, gateCfg.GateAddress, gateCfg.TreasuryAddress))
	orders := usecases.NewOrderUsecase(gate, orderRepo, messageRepo, ledgerRepo, access)
	admin := usecases.NewAdminUsecase(gate, settingsRepo, subRepo, roleRepo, ledgerRepo, access)
	messages := usecases.NewMessageUsecase(messageRepo)

	if cfg.Bridge.AdminAddress != "" {
		adminAddr, err := crosschain.ParseAddress(cfg.Bridge.AdminAddress)
		if err != nil {
			return fmt.Errorf("invalid BRIDGE_ADMIN_ADDRESS: %w", err)
		}
		if err := access.BootstrapAdmin(context.Background(), adminAddr); err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relayJob := jobs.NewOutboxRelayJob(messageRepo, publisher, jobs.OutboxRelayConfig{
		Interval:    cfg.Relay.Interval,
		BatchSize:   cfg.Relay.BatchSize,
		MaxAttempts: cfg.Relay.MaxAttempts,
	})
	go relayJob.Start(ctx)
	defer relayJob.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		transferHandler:       handlers.NewTransferHandler(transfers, reserves),
		confirmationHandler:   handlers.NewConfirmationHandler(confirmations),
		assetHandler:          handlers.NewAssetHandler(registry),
		orderHandler:          handlers.NewOrderHandler(orders),
		adminHandler:          handlers.NewAdminHandler(admin),
		messageHandler:        handlers.NewMessageHandler(messages),
		authMiddleware:        middleware.AuthMiddleware(jwtService),
		idempotencyMiddleware: middleware.IdempotencyMiddleware(cfg.Redis.IdempotencyTTL),
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			log.Println("🛑 Shutting down server...")
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Printf("🚀 Bridge gate for chain %d starting on port %s", gateCfg.ChainID, cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(ctx, r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// gateConfigFrom parses the configured holder addresses. Optional ones stay nil when unset.
func gateConfigFrom(b config.BridgeConfig) (usecases.GateConfig, error) {
	gc := usecases.GateConfig{ChainID: b.ChainID, ChainType: b.ChainType}
	fields := []struct {
		key      string
		value    string
		dst      *crosschain.Address
		required bool
	}{
		{"BRIDGE_GATE_ADDRESS", b.GateAddress, &gc.GateAddress, true},
		{"BRIDGE_CALL_PROXY_ADDRESS", b.CallProxyAddress, &gc.CallProxyAddress, true},
		{"BRIDGE_TREASURY_ADDRESS", b.TreasuryAddress, &gc.TreasuryAddress, true},
		{"BRIDGE_WRAPPED_NATIVE_TOKEN", b.WrappedNativeToken, &gc.WrappedNativeToken, false},
		{"BRIDGE_DEPLOYER_ADDRESS", b.DeployerAddress, &gc.DeployerAddress, false},
	}
	for _, f := range fields {
		if f.value == "" {
			if f.required {
				return gc, fmt.Errorf("%s is required", f.key)
			}
			continue
		}
		addr, err := crosschain.ParseAddress(f.value)
		if err != nil {
			return gc, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = addr
	}
	return gc, nil
}
