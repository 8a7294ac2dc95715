package store

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/voxdj/voxdj/internal/infra/config"
)

// BoltSettings are the bolt backend's settings block.
type BoltSettings struct {
	Path string `mapstructure:"path" default:"voxdj-sessions.db" validate:"required"`
}

// NewFromConfig creates the session store selected by configuration.
func NewFromConfig(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "memory":
		zlog.Info().Msg("using in-memory session store")
		return NewMemoryStore(), nil

	case "bolt":
		var settings BoltSettings
		if err := mapstructure.Decode(cfg.Settings, &settings); err != nil {
			return nil, errors.Wrap(err, "failed to decode bolt settings")
		}
		if err := defaults.Set(&settings); err != nil {
			return nil, errors.Wrap(err, "failed to set bolt defaults")
		}
		if err := validator.New().Struct(settings); err != nil {
			return nil, errors.Wrap(err, "bolt settings validation failed")
		}
		zlog.Info().Str("path", settings.Path).Msg("using bolt session store")
		return NewBoltStore(settings.Path)

	default:
		return nil, errors.Newf("unsupported store backend: %s", cfg.Backend)
	}
}
