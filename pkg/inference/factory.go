package inference

import (
	"fmt"
	"strings"
)

// New creates the classifier selected by the options.
func New(opts ...Option) (Classifier, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if problems := cfg.Validate(); len(problems) > 0 {
		if cfg.Backend != BackendDeepFace && cfg.Backend != BackendFERPlus && cfg.Backend != BackendAuto {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
		}
		return nil, fmt.Errorf("inference: invalid config: %s", strings.Join(problems, "; "))
	}

	switch cfg.Backend {
	case BackendDeepFace:
		return NewDeepFace(cfg), nil

	case BackendFERPlus:
		return NewFERPlus(cfg)

	default: // BackendAuto
		local, err := NewFERPlus(cfg)
		if err != nil {
			cfg.Logger.Warn("local fallback unavailable, using deepface only", "error", err)
			return NewDeepFace(cfg), nil
		}
		return NewChainWithLogger(cfg.Logger, NewDeepFace(cfg), local)
	}
}
