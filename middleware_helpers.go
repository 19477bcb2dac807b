package jobboard

import (
	"github.com/goliatone/go-jobboard/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can register
// gate listeners without importing jwtware.
type ValidationListener = jwtware.ValidationListener

// RegisterValidationListeners appends listeners to a jwtware.Config, nil
// listeners are skipped.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	for _, l := range listeners {
		if l != nil {
			cfg.ValidationListeners = append(cfg.ValidationListeners, l)
		}
	}
}
