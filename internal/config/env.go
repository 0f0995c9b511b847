package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3200"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIKey   string `envconfig:"API_KEY"`
}

type ClickUpEnv struct {
	APIToken string `envconfig:"CLICKUP_API_TOKEN"`
	BaseURL  string `envconfig:"CLICKUP_BASE_URL" default:"https://api.clickup.com/api/v2"`
	TeamID   string `envconfig:"CLICKUP_TEAM_ID"`
	SpaceID  string `envconfig:"CLICKUP_SPACE_ID"`
	ListID   string `envconfig:"CLICKUP_LIST_ID"`
}

type DiscordEnv struct {
	BotToken  string `envconfig:"DISCORD_BOT_TOKEN"`
	ChannelID string `envconfig:"DISCORD_CHANNEL_ID"`
	BaseURL   string `envconfig:"DISCORD_BASE_URL" default:"https://discord.com/api/v10"`
}

type SummarizerEnv struct {
	APIToken  string `envconfig:"HF_API_TOKEN"`
	BaseURL   string `envconfig:"HF_BASE_URL" default:"https://api-inference.huggingface.co"`
	ModelKey  string `envconfig:"SUMMARIZER_MODEL" default:"distilbart"`
	MinLength int    `envconfig:"SUMMARIZER_MIN_LENGTH" default:"30"`
	MaxLength int    `envconfig:"SUMMARIZER_MAX_LENGTH" default:"130"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".teampulse/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"teampulse/"`
	S3Region string `envconfig:"S3_REGION" default:"us-east-1"`
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"mailto:ops@teampulse.dev"`
}

type Env struct {
	BaseEnv
	ClickUpEnv
	DiscordEnv
	SummarizerEnv
	StorageEnv
	VAPIDEnv
}

const namespace = "TEAMPULSE"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func ClickUpEnvFromEnv(env *Env) *ClickUpEnv {
	return &env.ClickUpEnv
}

func DiscordEnvFromEnv(env *Env) *DiscordEnv {
	return &env.DiscordEnv
}

func SummarizerEnvFromEnv(env *Env) *SummarizerEnv {
	return &env.SummarizerEnv
}

func StorageEnvFromEnv(env *Env) *StorageEnv {
	return &env.StorageEnv
}

func VAPIDEnvFromEnv(env *Env) *VAPIDEnv {
	return &env.VAPIDEnv
}
