package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reliefworks/floodscan/assessor"
	"github.com/reliefworks/floodscan/config"
	"github.com/reliefworks/floodscan/database"
	"github.com/reliefworks/floodscan/frames"
	"github.com/reliefworks/floodscan/service"
	"github.com/reliefworks/floodscan/watcher"
)

func init() {
	rootCmd.AddCommand(serverCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Runs the floodscan inbox server",
	Long:  `Watches the inbox directory for damage videos and writes assessment reports`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)

		switch cfg.LogFormat {
		case config.LogFormatJSON:
			log.SetFormatter(&log.JSONFormatter{})
		default:
			log.SetFormatter(&log.TextFormatter{})
		}

		if cfg.TestModeEnabled {
			log.Info("TEST MODE ENABLED")
		}

		if cfg.InboxDir == "" || cfg.OutputDir == "" {
			log.Fatal("inbox and output directories must be configured for server mode")
		}

		var secretsManagerClient *secretsmanager.Client
		if cfg.Gemini.APIKey == "" || (cfg.PostgresURL == "" && cfg.PostgresSecretPath != "") {
			awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
			if err != nil {
				log.Fatal(err)
			}
			secretsManagerClient = secretsmanager.NewFromConfig(awsConfig)
		}

		databaseURL := cfg.PostgresURL
		if databaseURL == "" && cfg.PostgresSecretPath != "" {
			// Get the DB secrets from AWS Secrets Manager
			result, err := secretsManagerClient.GetSecretValue(context.Background(), &secretsmanager.GetSecretValueInput{SecretId: aws.String(cfg.PostgresSecretPath)})
			if err != nil {
				log.Fatal(err.Error())
			}
			var pgSecrets config.PostgresSecretData
			err = json.Unmarshal([]byte(*result.SecretString), &pgSecrets)
			if err != nil {
				log.Fatalf("postgres secrets read error: %v", err)
			}
			databaseURL = pgSecrets.ConnectionString
		}

		/*
			Graceful shutdown is possible with errgroup + signal.NotifyContext
			NotifyContext returns a context that will close on OS signals to terminate the process
			errgroup uses that context, and also closes it in case a goroutine errors out
		*/
		ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGKILL)
		defer done()
		g, gCtx := errgroup.WithContext(ctx)

		geminiService := service.NewGeminiService(cfg, secretsManagerClient)
		locator := service.NewLocator(cfg)
		sampler := frames.NewSampler(cfg.FFmpegPath, cfg.FFprobePath)

		var records assessor.RecordKeeper
		if databaseURL != "" && !cfg.TestModeEnabled {
			db := database.NewDatabase(databaseURL)
			if err := db.Connect(gCtx); err != nil {
				log.Fatalf("error connecting to database: %v", err)
			}
			defer db.Disconnect()
			records = db
		} else {
			log.Info("assessment persistence disabled")
		}

		controller := assessor.New(sampler, geminiService, geminiService, locator, records)

		inboxWatcher := watcher.NewWatcher(controller, cfg.InboxDir, cfg.OutputDir)

		healthchecker := service.NewHealthchecker(cfg.HealthcheckPort)

		g.Go(func() error {
			defer log.Info("exiting watcher")
			return inboxWatcher.Watch(gCtx)
		})

		// For deployed instances, provide a basic healthcheck endpoint to show it's online
		g.Go(func() error {
			if err := healthchecker.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		// ...and shut it down when the process needs to terminate
		g.Go(func() error {
			<-gCtx.Done()
			defer log.Info("exiting healthchecker")
			return healthchecker.Server.Shutdown(context.Background())
		})

		if err := g.Wait(); err != nil {
			log.Errorf("caught error: %v", err)
		}
	},
}
