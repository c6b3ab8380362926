package inference

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/teslashibe/moodcam/pkg/emotions"
	"gocv.io/x/gocv"
)

// Chain tries multiple classifiers in order until one succeeds.
type Chain struct {
	classifiers []Classifier
	logger      *slog.Logger
}

// NewChain creates a classifier chain.
// At least one classifier is required.
func NewChain(classifiers ...Classifier) (*Chain, error) {
	if len(classifiers) == 0 {
		return nil, ErrBackendUnavailable
	}
	return &Chain{
		classifiers: classifiers,
		logger:      slog.Default().With("component", "inference.chain"),
	}, nil
}

// NewChainWithLogger creates a classifier chain with a custom logger.
func NewChainWithLogger(logger *slog.Logger, classifiers ...Classifier) (*Chain, error) {
	chain, err := NewChain(classifiers...)
	if err != nil {
		return nil, err
	}
	chain.logger = logger.With("component", "inference.chain")
	return chain, nil
}

// Name implements Classifier.
func (c *Chain) Name() string {
	names := make([]string, len(c.classifiers))
	for i, cl := range c.classifiers {
		names[i] = cl.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Analyze tries each classifier until one succeeds.
func (c *Chain) Analyze(ctx context.Context, frame gocv.Mat) ([]emotions.Detection, error) {
	var errs []error

	for i, cl := range c.classifiers {
		dets, err := cl.Analyze(ctx, frame)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback classifier succeeded",
					"classifier", cl.Name(),
				)
			}
			return dets, nil
		}

		errs = append(errs, err)
		c.logger.Warn("classifier failed, trying next",
			"classifier", cl.Name(),
			"error", err,
		)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, &ChainError{Errors: errs}
}

// Close closes every classifier in the chain.
func (c *Chain) Close() error {
	var errs []error
	for _, cl := range c.classifiers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
