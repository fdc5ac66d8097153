package inventory

import (
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/pkg/config"
)

// Options parámetros de ejecución de los casos de uso del kardex.
type Options struct {
	OpTimeout        time.Duration
	MaxAttempts      int
	RetryBackoff     time.Duration
	MaxCASRetries    int
	ExpiryWindowDays int
	Now              func() time.Time
}

// OptionsFromConfig traduce la configuración de la app.
func OptionsFromConfig(c config.LedgerConfig) Options {
	return Options{
		OpTimeout:        c.OpTimeout,
		MaxAttempts:      c.MaxAttempts,
		RetryBackoff:     c.RetryBackoff,
		MaxCASRetries:    c.MaxCASRetries,
		ExpiryWindowDays: c.ExpiryWindowDays,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.OpTimeout <= 0 {
		o.OpTimeout = 5 * time.Second
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	if o.MaxCASRetries < 1 {
		o.MaxCASRetries = 5
	}
	if o.ExpiryWindowDays <= 0 {
		o.ExpiryWindowDays = inventory.DefaultExpiryWindowDays
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
