package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Gemini   GeminiConfig
	Location LocationConfig

	PostgresURL        string
	PostgresSecretPath string

	InboxDir  string
	OutputDir string

	FFmpegPath  string
	FFprobePath string

	HealthcheckPort int

	LogLevel        log.Level
	LogFormat       LogFormat
	TestModeEnabled bool
}

type GeminiConfig struct {
	ApiURL     url.URL
	Model      string
	TTSModel   string
	APIKey     string
	SecretPath string
}

// LocationConfig controls the best-effort location attached to analysis
// requests. Fixed coordinates win; otherwise a GeoIP lookup runs; with
// neither set, requests go out without a location, which is valid.
type LocationConfig struct {
	Latitude  float64
	Longitude float64
	Fixed     bool
	GeoIPURL  string
}

type LogFormat string

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type EnvfileKey string

const (
	// Postgres connection string to use for database connections
	EnvfileKeyPostgresURL = "POSTGRES_URL"
	// AWS Secrets Manager path where Postgres connection string can be found
	EnvfileKeyPostgresSecretsPath = "POSTGRES_SECRETS_PATH"

	// Base URL to the generative AI API, including the version prefix
	EnvfileKeyGeminiAPI = "GEMINI_API"
	// API key used directly, bypassing Secrets Manager (local development)
	EnvfileKeyGeminiAPIKey = "GEMINI_API_KEY"
	// AWS Secrets Manager path where the API key can be found
	EnvfileKeyGeminiSecretPath = "GEMINI_SECRETS_PATH"
	// Multimodal model used for assessments
	// NOTE: maps grounding needs the 2.5 series
	EnvfileKeyGeminiModel = "GEMINI_MODEL"
	// Speech model used for summary synthesis
	EnvfileKeyGeminiTTSModel = "GEMINI_TTS_MODEL"

	// Directory watched for dropped-in video files (server mode)
	EnvfileKeyInboxDir = "INBOX_DIR"
	// Directory where reports and speech WAVs are written
	EnvfileKeyOutputDir = "OUTPUT_DIR"

	// Paths to the ffmpeg/ffprobe binaries, looked up on PATH when empty
	EnvfileKeyFFmpegPath  = "FFMPEG_PATH"
	EnvfileKeyFFprobePath = "FFPROBE_PATH"

	// Fixed site coordinates; both must be set to take effect
	EnvfileKeyLocationLatitude  = "LOCATION_LATITUDE"
	EnvfileKeyLocationLongitude = "LOCATION_LONGITUDE"
	// GeoIP endpoint queried when no fixed coordinates are configured
	EnvfileKeyGeoIPURL = "GEOIP_URL"

	// Port for the healthcheck/metrics endpoint
	EnvfileKeyHealthcheckPort = "HEALTHCHECK_PORT"

	// Log level (e.g. "debug", "info", "warn", "error")
	EnvfileKeyLogLevel = "LOG_LEVEL"
	// Log output format (e.g. "text", "json")
	EnvfileKeyLogFormat = "LOG_FORMAT"
	// Enables "test mode" (no persistence, simulated posting)
	EnvfileKeyTestMode = "TEST_MODE"
)

const (
	defaultGeminiAPI       = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel     = "gemini-2.5-flash"
	defaultGeminiTTSModel  = "gemini-2.5-flash-preview-tts"
	defaultHealthcheckPort = 8080
)

func FromEnvfile() Config {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("dotenv")

	if err := viper.ReadInConfig(); err != nil {
		// Plain env vars are enough to run, so a missing .env is not fatal
		log.Warnf("no readable .env file, using environment only: %v", err)
	}

	geminiAPI := getConfigString(EnvfileKeyGeminiAPI)
	if geminiAPI == "" {
		geminiAPI = defaultGeminiAPI
	}
	geminiURL, err := url.Parse(geminiAPI)
	if err != nil {
		log.Fatalf("error parsing Gemini URL: %v", err)
	}

	geminiModel := getConfigString(EnvfileKeyGeminiModel)
	if geminiModel == "" {
		geminiModel = defaultGeminiModel
	}
	ttsModel := getConfigString(EnvfileKeyGeminiTTSModel)
	if ttsModel == "" {
		ttsModel = defaultGeminiTTSModel
	}

	apiKey := getConfigString(EnvfileKeyGeminiAPIKey)
	secretPath := getConfigString(EnvfileKeyGeminiSecretPath)
	if apiKey == "" && secretPath == "" {
		log.Fatal("gemini credentials not configured")
	}

	logLevel, err := log.ParseLevel(getConfigString(EnvfileKeyLogLevel))
	if err != nil {
		// Default to info level but log a warning
		log.Warnf("unable to parse log level: %v", err)
		logLevel = log.InfoLevel
	}

	logFormat, err := parseLogFormat(getConfigString(EnvfileKeyLogFormat))
	if err != nil {
		// Default to text formatter but log a warning
		log.Warnf("unable to parse log format: %v", err)
		logFormat = LogFormatText
	}

	healthcheckPort := getConfigInt(EnvfileKeyHealthcheckPort)
	if healthcheckPort == 0 {
		healthcheckPort = defaultHealthcheckPort
	}

	lat, latSet := getConfigFloat(EnvfileKeyLocationLatitude)
	lng, lngSet := getConfigFloat(EnvfileKeyLocationLongitude)

	return Config{
		Gemini: GeminiConfig{
			ApiURL:     *geminiURL,
			Model:      geminiModel,
			TTSModel:   ttsModel,
			APIKey:     apiKey,
			SecretPath: secretPath,
		},
		Location: LocationConfig{
			Latitude:  lat,
			Longitude: lng,
			Fixed:     latSet && lngSet,
			GeoIPURL:  getConfigString(EnvfileKeyGeoIPURL),
		},
		PostgresURL:        getConfigString(EnvfileKeyPostgresURL),
		PostgresSecretPath: getConfigString(EnvfileKeyPostgresSecretsPath),
		InboxDir:           getConfigString(EnvfileKeyInboxDir),
		OutputDir:          getConfigString(EnvfileKeyOutputDir),
		FFmpegPath:         getConfigString(EnvfileKeyFFmpegPath),
		FFprobePath:        getConfigString(EnvfileKeyFFprobePath),
		HealthcheckPort:    healthcheckPort,
		LogLevel:           logLevel,
		LogFormat:          logFormat,
		TestModeEnabled:    viper.GetBool(EnvfileKeyTestMode),
	}
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch strings.ToLower(raw) {
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatText:
		return LogFormatText, nil
	default:
		return "", fmt.Errorf("unidentified log format: %s", raw)
	}
}

// Gets a config value as a string from env vars or a .env file
func getConfigString(key string) string {
	value := os.Getenv(key)
	if value == "" {
		value = viper.GetString(key)
	}
	return value
}

// Gets a config value as an int from env vars or a .env file
func getConfigInt(key string) int {
	raw := getConfigString(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

// Gets a config value as a float from env vars or a .env file, reporting
// whether the key was set at all.
func getConfigFloat(key string) (float64, bool) {
	raw := getConfigString(key)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
