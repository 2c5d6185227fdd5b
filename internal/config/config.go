package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid is returned by Validate for any rejected setting.
var ErrInvalid = errors.New("invalid config")

// Config is the decoded form of hwai.yaml plus HWAI_* environment overrides.
type Config struct {
	SiteTitle   string            `mapstructure:"siteTitle"`
	BaseURL     string            `mapstructure:"baseURL"`
	OutputDir   string            `mapstructure:"outputDir"`
	ContentDir  string            `mapstructure:"contentDir"`
	Server      ServerConfig      `mapstructure:"server"`
	Submissions SubmissionsConfig `mapstructure:"submissions"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Links       LinksConfig       `mapstructure:"links"`
	Publish     PublishConfig     `mapstructure:"publish"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	FrameInterval  time.Duration `mapstructure:"frameInterval"`
	// PosterInterval is how often undrawn surfaces catch their rotation up
	// to wall time.
	PosterInterval time.Duration `mapstructure:"posterInterval"`
}

// SubmissionsConfig selects where form submissions go. The "log" driver
// only records them in the application log.
type SubmissionsConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	SimulatedDelay  time.Duration `mapstructure:"simulatedDelay"`
	GoogleSignInURL string        `mapstructure:"googleSignInURL"`
}

type LinksConfig struct {
	Discord   string `mapstructure:"discord"`
	WhatsApp  string `mapstructure:"whatsapp"`
	Meetups   string `mapstructure:"meetups"`
	Resources string `mapstructure:"resources"`
}

type PublishConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	Prefix          string `mapstructure:"prefix"`
	PathStyle       bool   `mapstructure:"pathStyle"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Defaults maps every viper key to its default value.
func Defaults() map[string]any {
	return map[string]any{
		"siteTitle":               "Humans Winning AI",
		"baseURL":                 "",
		"outputDir":               "public",
		"contentDir":              "",
		"server.addr":             ":1313",
		"server.readTimeout":      15 * time.Second,
		"server.writeTimeout":     15 * time.Second,
		"server.frameInterval":    16 * time.Millisecond,
		"server.posterInterval":   time.Second,
		"submissions.driver":      "log",
		"submissions.dsn":         "",
		"auth.simulatedDelay":     2 * time.Second,
		"auth.googleSignInURL":    "https://accounts.google.com/signin/v2/identifier",
		"links.discord":           "https://discord.gg/z5FUGp6NAY",
		"links.whatsapp":          "#",
		"links.meetups":           "#",
		"links.resources":         "https://aireadinessskills.com",
		"publish.bucket":          "",
		"publish.region":          "us-east-1",
		"publish.endpoint":        "",
		"publish.prefix":          "",
		"publish.pathStyle":       false,
		"publish.accessKeyID":     "",
		"publish.secretAccessKey": "",
		"log.level":               "info",
		"log.development":         false,
	}
}

// Validate checks settings that every command depends on. Publish settings
// are checked by the publish command itself.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: outputDir must not be empty", ErrInvalid)
	}
	if c.Server.FrameInterval <= 0 {
		return fmt.Errorf("%w: server.frameInterval must be positive", ErrInvalid)
	}
	if c.Server.PosterInterval <= 0 {
		return fmt.Errorf("%w: server.posterInterval must be positive", ErrInvalid)
	}
	if c.Auth.SimulatedDelay < 0 {
		return fmt.Errorf("%w: auth.simulatedDelay must not be negative", ErrInvalid)
	}
	switch c.Submissions.Driver {
	case "log":
	case "sqlite", "postgres":
		if c.Submissions.DSN == "" {
			return fmt.Errorf("%w: submissions.dsn is required for driver %q", ErrInvalid, c.Submissions.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown submissions.driver %q", ErrInvalid, c.Submissions.Driver)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}
