package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings for the operator API.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`

	// ModelName is the model used for long-form explanation generation.
	ModelName string `mapstructure:"model_name" validate:"required"`

	// FastModelName is the model used for the cheaper relevance and
	// structured-question calls.
	FastModelName string `mapstructure:"fast_model_name" validate:"required"`

	// MaxRetries bounds retry attempts for explanation calls.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`

	// RetryDelaySeconds is the fixed delay between retry attempts.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// TaskConfig tunes the background task executor and controller bodies.
type TaskConfig struct {
	// WorkerCount determines how many concurrent workers run task bodies.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// QueueSize is the buffer size of the submission queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// BatchSize bounds per-query payload size for the all-missing family.
	BatchSize int `mapstructure:"batch_size" validate:"required,gt=0"`

	// MaxChunks caps how many text chunks the PDF pipeline processes.
	MaxChunks int `mapstructure:"max_chunks" validate:"required,gt=0"`
}

// StorageConfig contains optional external storage settings. Leaving the
// bucket empty disables artifact upload (the workbook stays on local disk);
// leaving the redis address empty disables count caching.
type StorageConfig struct {
	Bucket        string `mapstructure:"bucket"`
	RedisAddress  string `mapstructure:"redis_address"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}
