package todostore

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	// TolerateCorruptDocument makes an unreadable or invalid document load as
	// empty instead of failing. The next write replaces it.
	TolerateCorruptDocument bool

	// SkipSchemaValidation trusts whatever json the backend returns.
	SkipSchemaValidation bool

	// Watch reloads the snapshot when a file backed document is replaced by
	// someone else.
	Watch bool

	// OnChange is called after a commit with the identity keys it touched,
	// or with nil when the whole document was reloaded.
	OnChange func(keys []string)

	IDGenerator func() string
	Clock       func() time.Time
	Logger      *zap.Logger
}

func (cfg *Config) applyDefaults() {
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = uuid.NewString
	}

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}
