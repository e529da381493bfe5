package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"log-query-translator/config"
	"log-query-translator/internal/dsl"
	"log-query-translator/internal/dto"
	"log-query-translator/internal/fieldctx"
	"log-query-translator/internal/kafka"
	"log-query-translator/internal/metrics"
	"log-query-translator/internal/model"
	"log-query-translator/internal/pipeline"
	"log-query-translator/internal/prompt"
	"log-query-translator/internal/util"
)

const (
	EndpointTranslate = "translate"
	EndpointFix       = "fix"

	outcomeOK       = "ok"
	outcomeFallback = "fallback"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

var ErrMalformedInput = errors.New("malformed request")

// InputError rejects a request before any model call is made.
type InputError struct {
	Missing []string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("additional_context must contain non-empty %s", strings.Join(e.Missing, " and "))
}

func (e *InputError) Unwrap() error {
	return ErrMalformedInput
}

type TranslationService interface {
	TranslateQuery(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error)
	FixQuery(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error)
}

type translationService struct {
	translator   *pipeline.Translator
	repairer     *pipeline.Repairer
	catalog      FieldCatalogService
	autoDiscover bool
	events       kafka.EventPublisher
}

func NewTranslationService(
	cfg *config.Config,
	translator *pipeline.Translator,
	repairer *pipeline.Repairer,
	catalog FieldCatalogService,
	events kafka.EventPublisher,
) TranslationService {
	return &translationService{
		translator:   translator,
		repairer:     repairer,
		catalog:      catalog,
		autoDiscover: cfg.Fields.AutoDiscover,
		events:       events,
	}
}

func (s *translationService) TranslateQuery(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error) {
	start := time.Now()
	req.Normalize()
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("query", req.NaturalLanguageQuery).Str("index_pattern", req.IndexPattern).Msg("Translating query")

	res, err := s.translator.Translate(ctx, pipeline.TranslationInput{
		Query:         req.NaturalLanguageQuery,
		IndexPattern:  req.IndexPattern,
		FieldsContext: s.fieldsContext(ctx, req),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Query translation failed")
		s.finish(ctx, EndpointTranslate, req, nil, err, start)
		return nil, err
	}

	s.checkShape(ctx, res.Query)
	s.finish(ctx, EndpointTranslate, req, res, nil, start)
	return toResponse(res), nil
}

func (s *translationService) FixQuery(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error) {
	start := time.Now()
	req.Normalize()
	logger := zerolog.Ctx(ctx)

	dslQuery, hasQuery := req.ContextText(dto.ContextDslQuery)
	errorMessage, hasError := req.ContextText(dto.ContextErrorMessage)
	if !hasQuery || !hasError {
		inputErr := &InputError{}
		if !hasQuery {
			inputErr.Missing = append(inputErr.Missing, dto.ContextDslQuery)
		}
		if !hasError {
			inputErr.Missing = append(inputErr.Missing, dto.ContextErrorMessage)
		}
		logger.Warn().Strs("missing", inputErr.Missing).Msg("Rejecting fix request")
		s.finish(ctx, EndpointFix, req, nil, inputErr, start)
		return nil, inputErr
	}

	logger.Info().Str("error_message", errorMessage).Msg("Repairing query")
	res, err := s.repairer.Repair(ctx, pipeline.RepairInput{
		DSLQuery:      dslQuery,
		ErrorMessage:  errorMessage,
		FieldsContext: s.fieldsContext(ctx, req),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Query repair failed")
		s.finish(ctx, EndpointFix, req, nil, err, start)
		return nil, err
	}

	s.checkShape(ctx, res.Query)
	s.finish(ctx, EndpointFix, req, res, nil, start)
	return toResponse(res), nil
}

// fieldsContext prefers caller-supplied fields, then the discovered catalog
// when auto-discovery is on, then the sentinel.
func (s *translationService) fieldsContext(ctx context.Context, req dto.QueryRequest) string {
	if raw, ok := req.IndicesFields(); ok {
		return fieldctx.Summarize(raw)
	}
	if s.autoDiscover && s.catalog != nil {
		catalog, err := s.catalog.Current(ctx)
		if err == nil && len(catalog.Fields) > 0 {
			zerolog.Ctx(ctx).Debug().Int("fields", len(catalog.Fields)).Msg("Using discovered field catalog")
			return fieldctx.Summarize(catalog.Mapping())
		}
	}
	return fieldctx.NoFieldsSentinel
}

func (s *translationService) checkShape(ctx context.Context, query map[string]any) {
	violations, err := dsl.Check(query)
	if err != nil {
		log.Error().Err(err).Msg("DSL shape check unavailable")
		return
	}
	if len(violations) > 0 {
		metrics.DSLShapeViolations.Inc()
		zerolog.Ctx(ctx).Warn().Strs("violations", violations).Msg("Returned query does not look like a search request")
	}
}

func (s *translationService) finish(ctx context.Context, endpoint string, req dto.QueryRequest, res *pipeline.Result, err error, start time.Time) {
	event := model.TranslationEvent{
		RequestID:    util.RequestIDFrom(ctx),
		Endpoint:     endpoint,
		Question:     req.NaturalLanguageQuery,
		IndexPattern: req.IndexPattern,
		DurationMs:   time.Since(start).Milliseconds(),
		Time:         time.Now().UTC(),
	}

	switch {
	case errors.Is(err, ErrMalformedInput):
		event.Outcome = outcomeRejected
		event.Error = err.Error()
	case err != nil:
		event.Outcome = outcomeFailed
		event.Error = err.Error()
	case res.Fallback:
		event.Outcome = outcomeFallback
	default:
		event.Outcome = outcomeOK
	}
	if res != nil {
		event.Optimized = res.Source == prompt.StageOptimization
		event.Fallback = res.Fallback
	}

	metrics.RecordRequest(endpoint, event.Outcome)
	if s.events == nil {
		return
	}
	if pubErr := s.events.Publish(context.WithoutCancel(ctx), event); pubErr != nil {
		zerolog.Ctx(ctx).Warn().Err(pubErr).Msg("Failed to publish translation event")
	}
}

func toResponse(res *pipeline.Result) *dto.QueryResponse {
	return &dto.QueryResponse{
		ElasticsearchQuery: res.Query,
		Explanation:        res.Explanation,
		Optimized:          res.Source == prompt.StageOptimization,
		Fallback:           res.Fallback,
	}
}
