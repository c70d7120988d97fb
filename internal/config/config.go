package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Recording RecordingConfig
	Pipeline  PipelineConfig
	Keys      APIKeys
	Ai        AIConfig
	Cloud     CloudConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	JwtSecret          string
	NatsURL            string // empty disables NATS forwarding
	RedisURL           string // empty disables cross-instance live feed
	SyncOnStart        bool
}

type DatabaseConfig struct {
	Driver     string // "sqlite" or "postgres"
	Connection string
	LogLevel   string // "silent", "error", "warn", "info"
}

type RecordingConfig struct {
	AudioDir           string
	FileExtension      string
	ChunkDuration      time.Duration
	TickInterval       time.Duration
	QueueSize          int
	CaptureCommand     string // e.g. "sox -q -d {path}"
	FlushPartialOnStop bool
	KeepAudioChunks    bool
}

type PipelineConfig struct {
	StopPollAttempts       int
	StopPollInterval       time.Duration
	TitleTimeout           time.Duration
	SummaryWaitAttempts    int
	SummaryWaitInterval    time.Duration
	LocationLookupTimeout  time.Duration
	MirrorQueueSize        int
	ShortTranscriptWordMin int
}

type APIKeys struct {
	OpenAI     string
	GoogleMaps string
}

type AIConfig struct {
	LLMProvider        string // "openai" or "ollama"
	LLMModel           string
	OllamaBaseURL      string
	OpenAIBaseURL      string
	TranscriptionModel string
}

type CloudConfig struct {
	ProjectID          string // empty disables cloud mirroring and sync
	CredentialsFile    string
	SessionsCollection string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			SyncOnStart:        getEnvAsBool("SYNC_ON_START", true),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			Connection: getEnv("DB_CONNECTION_STRING", "memory-capture.db"),
			LogLevel:   getEnv("DB_LOG_LEVEL", "warn"),
		},
		Recording: RecordingConfig{
			AudioDir:           getEnv("AUDIO_DIR", os.TempDir()),
			FileExtension:      getEnv("AUDIO_FILE_EXTENSION", "mp4"),
			ChunkDuration:      getEnvAsDuration("CHUNK_DURATION", 30*time.Second),
			TickInterval:       getEnvAsDuration("TICK_INTERVAL", time.Second),
			QueueSize:          getEnvAsInt("TRANSCRIPTION_QUEUE_SIZE", 32),
			CaptureCommand:     getEnv("CAPTURE_COMMAND", "sox -q -d {path}"),
			FlushPartialOnStop: getEnvAsBool("FLUSH_PARTIAL_ON_STOP", false),
			KeepAudioChunks:    getEnvAsBool("KEEP_AUDIO_CHUNKS", false),
		},
		Pipeline: PipelineConfig{
			StopPollAttempts:       getEnvAsInt("STOP_POLL_ATTEMPTS", 10),
			StopPollInterval:       getEnvAsDuration("STOP_POLL_INTERVAL", 500*time.Millisecond),
			TitleTimeout:           getEnvAsDuration("TITLE_TIMEOUT", 30*time.Second),
			SummaryWaitAttempts:    getEnvAsInt("SUMMARY_WAIT_ATTEMPTS", 5),
			SummaryWaitInterval:    getEnvAsDuration("SUMMARY_WAIT_INTERVAL", time.Second),
			LocationLookupTimeout:  getEnvAsDuration("LOCATION_LOOKUP_TIMEOUT", 15*time.Second),
			MirrorQueueSize:        getEnvAsInt("MIRROR_QUEUE_SIZE", 256),
			ShortTranscriptWordMin: getEnvAsInt("SHORT_TRANSCRIPT_WORD_MIN", 10),
		},
		Keys: APIKeys{
			OpenAI:     getEnv("OPENAI_API_KEY", ""),
			GoogleMaps: getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
			LLMModel:           getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
			TranscriptionModel: getEnv("TRANSCRIPTION_MODEL", "whisper-1"),
		},
		Cloud: CloudConfig{
			ProjectID:          getEnv("FIRESTORE_PROJECT_ID", ""),
			CredentialsFile:    getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			SessionsCollection: getEnv("FIRESTORE_SESSIONS_COLLECTION", "sessions"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
