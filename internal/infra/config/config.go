// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. One file serves both
// daemons; resolverd only reads the catalog section.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Player   PlayerConfig   `yaml:"player"`
	Messages MessagesConfig `yaml:"messages"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080"`
}

// StoreConfig selects and configures the session store backend.
// Settings are backend-specific and decoded by the store factory.
type StoreConfig struct {
	Backend  string         `yaml:"backend" default:"bolt" validate:"oneof=bolt memory"`
	Settings map[string]any `yaml:"settings"`
}

// PlayerConfig represents playback controller configuration.
type PlayerConfig struct {
	// MatchThreshold is the similarity a spoken playlist name must strictly
	// exceed to match a saved one.
	MatchThreshold float64 `yaml:"match_threshold" default:"0.7" validate:"gte=0,lte=1"`
}

// MessagesConfig holds the spoken confirmation texts. Entries with verbs are
// printf templates.
type MessagesConfig struct {
	Playing             string `yaml:"playing" default:"Playing %s by %s."`
	StartingPlaylist    string `yaml:"starting_playlist" default:"Starting playlist %s."`
	StartingOver        string `yaml:"starting_over" default:"Starting over from the top."`
	LoopOn              string `yaml:"loop_on" default:"Loop on."`
	LoopOff             string `yaml:"loop_off" default:"Loop off."`
	ShuffleOn           string `yaml:"shuffle_on" default:"Shuffle on."`
	ShuffleOff          string `yaml:"shuffle_off" default:"Shuffle off."`
	EndOfQueue          string `yaml:"end_of_queue" default:"You have reached the end of the queue."`
	StartOfQueue        string `yaml:"start_of_queue" default:"You are already at the first track."`
	NowPlaying          string `yaml:"now_playing" default:"This is %s by %s."`
	PlaylistSaved       string `yaml:"playlist_saved" default:"Playlist %s saved."`
	PlaylistDeleted     string `yaml:"playlist_deleted" default:"Playlist %s deleted."`
	PlaylistNotFound    string `yaml:"playlist_not_found" default:"I could not find the playlist %s."`
	SavedPlaylists      string `yaml:"saved_playlists" default:"You have %s in your saved playlists."`
	NoSavedPlaylists    string `yaml:"no_saved_playlists" default:"You do not have any playlists saved yet."`
	ResolverSet         string `yaml:"resolver_set" default:"Resolver address saved."`
	NotConfigured       string `yaml:"not_configured" default:"Your resolver address is not set up yet."`
	ResolverUnavailable string `yaml:"resolver_unavailable" default:"I had trouble reaching the streaming service."`
	NothingFound        string `yaml:"nothing_found" default:"I could not find anything to play."`
	QueueEmpty          string `yaml:"queue_empty" default:"There is nothing queued right now."`
	BadIdentifier       string `yaml:"bad_identifier" default:"Please provide the identifier encoded as hexadecimal."`
	DefaultError        string `yaml:"default_error" default:"Sorry. I had trouble doing what you asked. Please try again."`
}

// CatalogConfig represents the upstream catalog used by resolverd.
type CatalogConfig struct {
	ClientID     string  `yaml:"client_id"`
	ClientSecret string  `yaml:"client_secret"`
	Market       string  `yaml:"market" validate:"omitempty,len=2" default:"US"`
	QueueSize    int     `yaml:"queue_size" default:"25" validate:"gte=1,lte=100"`
	RateLimit    float64 `yaml:"rate_limit" default:"10" validate:"gt=0"`
	RateBurst    int     `yaml:"rate_burst" default:"5" validate:"gte=1"`
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment variables take precedence for catalog credentials.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Catalog.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Catalog.ClientSecret = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
