package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/config"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/logger"
)

// GenerateOnce runs the pipeline for a single address outside the HTTP layer. The quiz is
// persisted through the configured store and announced to the configured publishers.
func GenerateOnce(ctx context.Context, cfg *config.Config, log logger.Logger, address string) (domain.GeneratedQuiz, error) {
	rt, err := NewRuntime(ctx, cfg, log)
	if err != nil {
		return domain.GeneratedQuiz{}, err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.Ensure(log).ErrorObj("runtime close failed", "error", cerr.Error())
		}
	}()

	out, err := rt.Service().Generate(ctx, address)
	if err != nil {
		return domain.GeneratedQuiz{}, fmt.Errorf("generate quiz: %w", err)
	}
	return out, nil
}
