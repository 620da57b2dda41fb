// Command waingest ingests captured message stanzas: each input file is
// decoded, classified, decrypted and persisted to the configured store.
//
// Signal session stores are provisioned by the surrounding client. Without
// one, encrypted payloads are recorded as ciphertext stubs while plaintext
// payloads decode normally.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	waBinary "go.mau.fi/whatsmeow/binary"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"

	"waingest/internal/config"
	"waingest/internal/database"
	"waingest/internal/privacy"
	"waingest/internal/service"
	"waingest/internal/tracing"
	"waingest/pkg/stanza"
)

var configPath = flag.String("config", "config.json", "Path to the configuration file")

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := run(context.Background(), logger, *configPath, flag.Args()); err != nil {
		logger.Fatalf("waingest: %v", err)
	}
}

func run(ctx context.Context, logger *logrus.Logger, configPath string, stanzaPaths []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		logger.SetLevel(level)
	}

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.Enabled = cfg.Tracing.Enabled
	tracingCfg.UseStdout = cfg.Tracing.UseStdout
	if cfg.Tracing.OTLPEndpoint != "" {
		tracingCfg.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	}
	if cfg.Tracing.SampleRate > 0 {
		tracingCfg.SampleRate = cfg.Tracing.SampleRate
	}
	if cfg.Tracing.Environment != "" {
		tracingCfg.Environment = cfg.Tracing.Environment
	}

	tracingManager := tracing.NewManager(tracingCfg, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to shut down tracing")
		}
	}()

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}()

	ownID, ownLID, err := config.OwnIdentities(cfg)
	if err != nil {
		return err
	}

	processor := service.NewProcessor(sessionlessRepository{}, db, ownID, ownLID, logger)

	for _, path := range stanzaPaths {
		if err := ingestFile(ctx, processor, logger, path); err != nil {
			return err
		}
	}
	return nil
}

func ingestFile(ctx context.Context, processor *service.Processor, logger *logrus.Logger, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read stanza file %s: %w", path, err)
	}

	node, err := waBinary.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("failed to unmarshal stanza %s: %w", path, err)
	}

	env, err := processor.ProcessStanza(ctx, node)
	if err != nil {
		// Unattributable stanzas are dropped with their NACK reason;
		// anything after classification is a real failure.
		if env == nil {
			logger.WithFields(logrus.Fields{
				"file": path,
				"nack": stanza.NackReasonFor(err),
			}).WithError(err).Warn("Dropped unattributable stanza")
			return nil
		}
		return fmt.Errorf("failed to process stanza %s: %w", path, err)
	}

	logger.WithFields(logrus.Fields{
		"file":   path,
		"msg_id": privacy.MaskMessageID(string(env.Key.ID)),
	}).Info("Ingested stanza")
	return nil
}

// sessionlessRepository stands in when no signal session store is
// provisioned: every decryption fails, so encrypted payloads surface as
// ciphertext stubs in the persisted envelope.
type sessionlessRepository struct{}

func (sessionlessRepository) DecryptGroupMessage(ctx context.Context, group, author types.JID, ciphertext []byte) ([]byte, error) {
	return nil, fmt.Errorf("no signal session store configured")
}

func (sessionlessRepository) DecryptMessage(ctx context.Context, jid types.JID, encType string, ciphertext []byte) ([]byte, error) {
	return nil, fmt.Errorf("no signal session store configured")
}

func (sessionlessRepository) ProcessSenderKeyDistributionMessage(ctx context.Context, author types.JID, skdm *waE2E.SenderKeyDistributionMessage) error {
	return fmt.Errorf("no signal session store configured")
}
