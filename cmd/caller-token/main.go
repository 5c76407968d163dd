package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bridge-gate.backend/internal/config"
	"bridge-gate.backend/internal/domain/entities"
	"bridge-gate.backend/internal/infrastructure/repositories"
	"bridge-gate.backend/internal/usecases"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/jwt"
)

var openCallerTokenDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{PrepareStmt: false})
}

var openCallerSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type roleReader interface {
	Roles(ctx context.Context, addr crosschain.Address) ([]entities.Role, error)
}

type callerTokenDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (roleReader, io.Closer, error)
	now     func() time.Time
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultCallerTokenDeps() callerTokenDeps {
	return callerTokenDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (roleReader, io.Closer, error) {
			db, err := openCallerTokenDB(cfg.Database.URL())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			sqlDB, err := openCallerSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			return usecases.NewAccessControl(repositories.NewRoleRepository(db)), sqlDB, nil
		},
		now: time.Now,
		out: os.Stdout,
	}
}

func parseCallerAddress(chainType crosschain.ChainType, raw string) (crosschain.Address, error) {
	if raw == "" {
		return nil, fmt.Errorf("--address is required")
	}
	addr, err := crosschain.ParseAddress(raw)
	if err != nil {
		return nil, err
	}
	if err := crosschain.ValidateAddress(chainType, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

func hasRole(roles []entities.Role, want entities.Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func runCallerToken(args []string, deps callerTokenDeps) error {
	if deps.loadEnv == nil {
		deps.loadEnv = func() error { return godotenv.Load() }
	}
	if deps.loadCfg == nil {
		deps.loadCfg = config.Load
	}
	if deps.now == nil {
		deps.now = time.Now
	}
	if deps.prepare == nil {
		deps.prepare = defaultCallerTokenDeps().prepare
	}
	if deps.out == nil {
		deps.out = os.Stdout
	}

	fs := flag.NewFlagSet("caller-token", flag.ContinueOnError)
	addressFlag := fs.String("address", "", "chain address the token acts as (required)")
	expiryFlag := fs.Duration("expiry", 0, "token lifetime (defaults to JWT_ACCESS_EXPIRY)")
	adminFlag := fs.Bool("require-admin", false, "refuse unless the address holds the ADMIN role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()

	addr, err := parseCallerAddress(cfg.Bridge.ChainType, *addressFlag)
	if err != nil {
		return err
	}

	var roles []entities.Role
	if *adminFlag {
		reader, closer, err := deps.prepare(cfg)
		if err != nil {
			return err
		}
		if closer == nil {
			closer = nopCloser{}
		}
		defer closer.Close()

		roles, err = reader.Roles(context.Background(), addr)
		if err != nil {
			return fmt.Errorf("failed to load roles of %s: %w", addr, err)
		}
		if !hasRole(roles, entities.RoleAdmin) {
			return fmt.Errorf("address %s is not ADMIN (roles=%v)", addr, roles)
		}
	}

	expiry := cfg.JWT.AccessExpiry
	if *expiryFlag > 0 {
		expiry = *expiryFlag
	}
	token, err := jwt.NewJWTService(cfg.JWT.Secret, expiry).GenerateToken(addr)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Issued caller token")
	_, _ = fmt.Fprintf(deps.out, "address=%s\n", addr)
	if len(roles) > 0 {
		_, _ = fmt.Fprintf(deps.out, "roles=%v\n", roles)
	}
	_, _ = fmt.Fprintf(deps.out, "expires_at=%s\n", deps.now().Add(expiry).UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(deps.out, "TOKEN=%s\n", token)
	return nil
}

func main() {
	if err := runCallerToken(os.Args[1:], defaultCallerTokenDeps()); err != nil {
		log.Fatal(err)
	}
}
