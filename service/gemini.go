package service

import (
	"context"
	"encoding/json"

	"github.com/reliefworks/floodscan/config"
	"github.com/reliefworks/floodscan/gemini"
	"github.com/reliefworks/floodscan/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
)

type GeminiService struct {
	config config.GeminiConfig
	client *gemini.Client
}

func NewGeminiService(cfg config.Config, secretsManagerClient *secretsmanager.Client) *GeminiService {
	apiKey := cfg.Gemini.APIKey
	if apiKey == "" {
		// Get the API key from AWS Secrets Manager
		result, err := secretsManagerClient.GetSecretValue(
			context.Background(),
			&secretsmanager.GetSecretValueInput{
				SecretId: aws.String(cfg.Gemini.SecretPath),
			},
		)
		if err != nil {
			log.Fatal(err.Error())
		}
		var geminiSecrets config.GeminiSecretData
		err = json.Unmarshal([]byte(*result.SecretString), &geminiSecrets)
		if err != nil {
			log.Panicf("gemini secrets read error: %v", err)
		}
		apiKey = geminiSecrets.ApiKey
	}

	client := gemini.NewClient(apiKey, cfg.Gemini.ApiURL, cfg.Gemini.Model, cfg.Gemini.TTSModel)
	log.Infof("Gemini client initialized. Host: %s, model: %s", cfg.Gemini.ApiURL.String(), cfg.Gemini.Model)

	return &GeminiService{
		config: cfg.Gemini,
		client: client,
	}
}

func (s *GeminiService) Assess(ctx context.Context, frames []model.Frame, loc *model.GeoPoint) (*model.AssessmentResult, error) {
	return s.client.Assess(ctx, frames, loc)
}

func (s *GeminiService) Synthesize(ctx context.Context, text string) (string, error) {
	return s.client.Synthesize(ctx, text)
}
