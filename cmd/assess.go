package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reliefworks/floodscan/assessor"
	"github.com/reliefworks/floodscan/config"
	"github.com/reliefworks/floodscan/fault"
	"github.com/reliefworks/floodscan/frames"
	"github.com/reliefworks/floodscan/service"
)

var assessSpeech bool

func init() {
	assessCmd.Flags().BoolVar(&assessSpeech, "speech", false, "also synthesize the Urdu summary to a WAV next to the video")
	rootCmd.AddCommand(assessCmd)
}

var assessCmd = &cobra.Command{
	Use:   "assess <video-file>",
	Short: "Assesses a single damage video and prints the claim document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {

		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)

		videoPath := args[0]
		if _, err := os.Stat(videoPath); err != nil {
			log.Fatalf("cannot read video: %v", err)
		}

		var secretsManagerClient *secretsmanager.Client
		if cfg.Gemini.APIKey == "" {
			awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
			if err != nil {
				log.Fatal(err)
			}
			secretsManagerClient = secretsmanager.NewFromConfig(awsConfig)
		}

		geminiService := service.NewGeminiService(cfg, secretsManagerClient)
		locator := service.NewLocator(cfg)
		sampler := frames.NewSampler(cfg.FFmpegPath, cfg.FFprobePath)

		// One-shot invocations never persist; the printed document is the record.
		controller := assessor.New(sampler, geminiService, geminiService, locator, nil)

		if err := controller.Analyze(cmd.Context(), videoPath); err != nil {
			fmt.Fprintln(os.Stderr, fault.UserMessage(err))
			os.Exit(1)
		}

		session := controller.Session()
		fmt.Print(assessor.RenderClaimDocument(*session.Assessment, time.Now()))

		if assessSpeech {
			wav, err := controller.Speak(cmd.Context())
			if err != nil {
				// Audio failure never invalidates the printed assessment
				fmt.Fprintln(os.Stderr, fault.UserMessage(err))
				return
			}
			wavPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".summary.wav"
			if err := os.WriteFile(wavPath, wav, 0644); err != nil {
				log.Fatalf("error writing %s: %v", wavPath, err)
			}
			fmt.Printf("\nSpoken summary written to %s\n", wavPath)
		}
	},
}
