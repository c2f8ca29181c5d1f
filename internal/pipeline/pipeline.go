package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/logger"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/metrics"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/quiz"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/scraper"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/storage"
	"github.com/samvad-hq/samvad-wiki-quiz/pkg/publishers"
)

// Scraper turns an address into an article.
type Scraper interface {
	Scrape(ctx context.Context, address string) (domain.ScrapedArticle, error)
}

// Synthesizer turns article text into a quiz. It must not fail.
type Synthesizer interface {
	Synthesize(text string) domain.QuizResult
}

// SynthesizerFunc adapts a plain function to Synthesizer.
type SynthesizerFunc func(text string) domain.QuizResult

func (f SynthesizerFunc) Synthesize(text string) domain.QuizResult { return f(text) }

// EventPublisher delivers quiz events downstream. *publishers.Fanout satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Timeouts bounds the request and its blocking steps.
type Timeouts struct {
	Request    time.Duration
	Scrape     time.Duration
	Synthesize time.Duration
}

// DefaultTimeouts returns the 8s request, 6s scrape and 2s synthesis budgets.
func DefaultTimeouts() Timeouts {
	return Timeouts{Request: 8 * time.Second, Scrape: 6 * time.Second, Synthesize: 2 * time.Second}
}

func (t Timeouts) withDefaults() Timeouts {
	def := DefaultTimeouts()
	if t.Request <= 0 {
		t.Request = def.Request
	}
	if t.Scrape <= 0 {
		t.Scrape = def.Scrape
	}
	if t.Synthesize <= 0 {
		t.Synthesize = def.Synthesize
	}
	return t
}

// Options carries the optional collaborators of a Service.
type Options struct {
	Timeouts  Timeouts
	Publisher EventPublisher
	Logger    logger.Logger
}

// Service runs scrape, synthesize, persist and publish for one address per call. It
// keeps no per-request state and is safe for concurrent use.
type Service struct {
	scraper   Scraper
	synth     Synthesizer
	store     storage.Store
	publisher EventPublisher
	timeouts  Timeouts
	log       logger.Logger
}

// NewService wires the pipeline. A nil synth uses the pattern-based quiz synthesizer.
func NewService(s Scraper, synth Synthesizer, store storage.Store, opts Options) *Service {
	if synth == nil {
		synth = quiz.Synthesizer{}
	}
	return &Service{
		scraper:   s,
		synth:     synth,
		store:     store,
		publisher: opts.Publisher,
		timeouts:  opts.Timeouts.withDefaults(),
		log:       logger.Ensure(opts.Logger),
	}
}

// Generate builds, stores and announces a quiz for address.
func (s *Service) Generate(ctx context.Context, address string) (domain.GeneratedQuiz, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Request)
	defer cancel()

	out, err := s.run(ctx, address)
	if err != nil {
		metrics.RecordGeneration(outcomeOf(err))
		s.log.ErrorObj("quiz generation failed", "pipeline_error", map[string]any{
			"url":   address,
			"stage": StageOf(err),
			"error": err.Error(),
		})
		return domain.GeneratedQuiz{}, err
	}

	metrics.RecordGeneration(metrics.OutcomeSuccess)
	metrics.RecordQuestions(len(out.Questions))
	s.log.InfoObj("quiz generated", "pipeline_result", map[string]any{
		"id":        out.ID,
		"url":       address,
		"title":     out.Title,
		"questions": len(out.Questions),
	})
	return out, nil
}

func (s *Service) run(ctx context.Context, address string) (domain.GeneratedQuiz, error) {
	start := time.Now()
	article, err := s.scrape(ctx, address)
	metrics.RecordStage(StageScrape, time.Since(start))
	if err != nil {
		return domain.GeneratedQuiz{}, err
	}

	start = time.Now()
	result, err := s.synthesize(ctx, article.Text)
	metrics.RecordStage(StageSynthesize, time.Since(start))
	if err != nil {
		return domain.GeneratedQuiz{}, err
	}

	start = time.Now()
	out, err := s.persist(ctx, address, article.Title, result)
	metrics.RecordStage(StagePersist, time.Since(start))
	if err != nil {
		return domain.GeneratedQuiz{}, err
	}

	start = time.Now()
	s.publish(ctx, out)
	metrics.RecordStage(StagePublish, time.Since(start))
	return out, nil
}

type scrapeResult struct {
	article domain.ScrapedArticle
	err     error
}

// scrape runs the scraper on a worker goroutine under the nested scrape deadline. A late
// result is dropped into the buffered channel and discarded.
func (s *Service) scrape(ctx context.Context, address string) (domain.ScrapedArticle, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.timeouts.Scrape)
	defer cancel()

	done := make(chan scrapeResult, 1)
	go func() {
		article, err := s.scraper.Scrape(stepCtx, address)
		done <- scrapeResult{article: article, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if stepCtx.Err() != nil {
				return domain.ScrapedArticle{}, stageErr(StageScrape, timeoutError(ctx, ErrScrapeTimeout))
			}
			return domain.ScrapedArticle{}, stageErr(StageScrape, res.err)
		}
		if res.article.Text == "" {
			return domain.ScrapedArticle{}, stageErr(StageScrape, fmt.Errorf("%w: no text extracted", scraper.ErrParseFailed))
		}
		return res.article, nil
	case <-stepCtx.Done():
		return domain.ScrapedArticle{}, stageErr(StageScrape, timeoutError(ctx, ErrScrapeTimeout))
	}
}

// synthesize runs the synthesizer under its own deadline. Missing it substitutes the
// emergency quiz unless the whole request is out of time.
func (s *Service) synthesize(ctx context.Context, text string) (domain.QuizResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.QuizResult{}, stageErr(StageSynthesize, timeoutError(ctx, err))
	}

	stepCtx, cancel := context.WithTimeout(ctx, s.timeouts.Synthesize)
	defer cancel()

	done := make(chan domain.QuizResult, 1)
	go func() {
		done <- s.synth.Synthesize(text)
	}()

	select {
	case res := <-done:
		return res, nil
	case <-stepCtx.Done():
		if ctx.Err() != nil {
			return domain.QuizResult{}, stageErr(StageSynthesize, timeoutError(ctx, ctx.Err()))
		}
		metrics.RecordSynthesisFallback()
		s.log.WarnObj("synthesis timed out, serving emergency quiz", "pipeline_fallback", map[string]any{
			"timeout_ms": s.timeouts.Synthesize.Milliseconds(),
		})
		return quiz.EmergencyResult(text), nil
	}
}

// persist writes the quiz row first and the questions second. A failed question write
// leaves the quiz without questions and is only logged.
func (s *Service) persist(ctx context.Context, address, title string, result domain.QuizResult) (domain.GeneratedQuiz, error) {
	if err := ctx.Err(); err != nil {
		return domain.GeneratedQuiz{}, stageErr(StagePersist, timeoutError(ctx, err))
	}

	id, err := s.store.CreateQuiz(ctx, domain.QuizRecord{
		Address:       address,
		Title:         title,
		Summary:       result.Summary,
		Entities:      result.Entities,
		RelatedTopics: result.RelatedTopics,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		if ctx.Err() != nil {
			return domain.GeneratedQuiz{}, stageErr(StagePersist, timeoutError(ctx, ctx.Err()))
		}
		return domain.GeneratedQuiz{}, stageErr(StagePersist, err)
	}

	if err := s.store.AddQuestions(ctx, id, result.Questions); err != nil {
		s.log.WarnObj("storing quiz questions failed", "pipeline_partial_write", map[string]any{
			"id":    id,
			"stage": StagePersist,
			"error": err.Error(),
		})
	}

	return domain.GeneratedQuiz{ID: id, Address: address, Title: title, QuizResult: result}, nil
}

func (s *Service) publish(ctx context.Context, q domain.GeneratedQuiz) {
	if s.publisher == nil {
		return
	}
	evt := publishers.NewQuizEvent(q)
	delivered, err := s.publisher.Publish(ctx, evt)
	if err != nil {
		s.log.WarnObj("quiz event publish failed", "pipeline_publish", map[string]any{
			"id":        q.ID,
			"event_id":  evt.ID,
			"stage":     StagePublish,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
}

// timeoutError maps an expired step to ErrDeadlineExceeded when the request budget is gone,
// to the parent's cancellation when the caller gave up, and to stepErr otherwise.
func timeoutError(parent context.Context, stepErr error) error {
	switch err := parent.Err(); {
	case err == nil:
		return stepErr
	case errors.Is(err, context.DeadlineExceeded):
		return ErrDeadlineExceeded
	default:
		return err
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, scraper.ErrInvalidInput):
		return metrics.OutcomeInvalidInput
	case errors.Is(err, ErrScrapeTimeout):
		return metrics.OutcomeScrapeTimeout
	case errors.Is(err, ErrDeadlineExceeded):
		return metrics.OutcomeDeadlineExceeded
	case errors.Is(err, scraper.ErrFetchFailed):
		return metrics.OutcomeFetchFailed
	case errors.Is(err, scraper.ErrParseFailed):
		return metrics.OutcomeParseFailed
	case StageOf(err) == StagePersist:
		return metrics.OutcomeStorageFailed
	default:
		return metrics.OutcomeError
	}
}
