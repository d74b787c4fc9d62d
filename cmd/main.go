package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kpisystems/credvault/internal/api/http/router"
	httpServer "github.com/kpisystems/credvault/internal/api/http/server"
	"github.com/kpisystems/credvault/internal/config"
	"github.com/kpisystems/credvault/internal/crypto"
	filevault "github.com/kpisystems/credvault/internal/keyvault/file"
	miniovault "github.com/kpisystems/credvault/internal/keyvault/minio"
	"github.com/kpisystems/credvault/internal/logger"
	"github.com/kpisystems/credvault/internal/model"
	"github.com/kpisystems/credvault/internal/repository/csvfile"
	"github.com/kpisystems/credvault/internal/server"
	"github.com/kpisystems/credvault/internal/service"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	table := csvfile.New(cfg.Users.Path)
	if err := table.Init(ctx); err != nil {
		logger.Fatal("failed to initialize user table", "error", err)
	}

	vault, err := newKeyVault(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize key vault", "error", err)
	}

	codec := newCodec(cfg)
	credentialsService := service.NewCredentials(table, vault, codec, logger)

	r := router.New(credentialsService, logger)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func newKeyVault(ctx context.Context, cfg *config.Config) (model.KeyVault, error) {
	switch cfg.Keys.Backend {
	case config.VaultBackendMinio:
		client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return miniovault.NewVault(ctx, client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
	default:
		dir := filepath.Dir(fmt.Sprintf(cfg.Keys.PathTemplate, "placeholder"))
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create key directory: %w", err)
		}
		return filevault.New(cfg.Keys.PathTemplate), nil
	}
}

func newCodec(cfg *config.Config) crypto.Codec {
	if cfg.Crypto.Codec == config.CodecGCM {
		return crypto.NewGCMCodec()
	}
	return crypto.NewECBCodec()
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
