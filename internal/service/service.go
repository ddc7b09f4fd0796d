// Package service exposes the catalog's five boundary operations with
// JSON-friendly requests and a uniform {error, details} failure shape.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"estimator/internal/calculator"
	"estimator/internal/comparator"
	"estimator/internal/domain"
	"estimator/internal/logger"
	"estimator/internal/metrics"
	"estimator/internal/search"
)

const (
	detailsDefaultQuantity = 1.0
	codeStrategy           = "code"
)

// Service composes search, calculation and comparison over one catalog.
type Service struct {
	engine     *search.Engine
	calc       *calculator.Calculator
	comparator *comparator.Comparator
	metrics    *metrics.Metrics
	log        *zap.Logger
}

// Deps are the components a Service is built from. Metrics may be nil.
type Deps struct {
	Engine     *search.Engine
	Calculator *calculator.Calculator
	Comparator *comparator.Comparator
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

func New(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		engine:     d.Engine,
		calc:       d.Calculator,
		comparator: d.Comparator,
		metrics:    d.Metrics,
		log:        log.With(zap.String("component", "service")),
	}
}

// run wraps one operation with a request id, timing, metrics and error mapping.
func run[T any](ctx context.Context, s *Service, op string, fn func(context.Context, *zap.Logger) (T, int, error)) (T, error) {
	start := time.Now()
	reqID := uuid.NewString()
	log := s.log.With(zap.String("operation", op), zap.String("request_id", reqID))
	ctx = logger.WithContext(ctx, log)

	out, rows, err := fn(ctx, log)
	elapsed := time.Since(start)
	if err != nil {
		resp := toErrorResponse(err, reqID)
		if resp.Kind == TagInternal {
			log.Error("operation failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		} else {
			log.Info("operation rejected", zap.String("error", resp.Kind), zap.String("details", resp.Details))
		}
		s.observe(op, resp.Kind, elapsed, -1)
		var zero T
		return zero, resp
	}
	log.Debug("operation completed", zap.Int("rows", rows), zap.Duration("elapsed", elapsed))
	s.observe(op, "ok", elapsed, rows)
	return out, nil
}

func (s *Service) observe(op, status string, elapsed time.Duration, rows int) {
	if s.metrics == nil {
		return
	}
	s.metrics.Observe(op, status, elapsed)
	if rows >= 0 {
		s.metrics.ObserveRows(op, rows)
	}
}

// Search runs a natural-language search.
func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	return run(ctx, s, "search", func(ctx context.Context, _ *zap.Logger) (SearchResponse, int, error) {
		f := domain.Filters{UnitType: req.UnitType, Category: req.Category, MinCost: req.MinCost, MaxCost: req.MaxCost}
		res, err := s.engine.Search(ctx, req.Query, f, req.Limit)
		if err != nil {
			return SearchResponse{}, 0, err
		}
		hits := newSearchHits(res)
		return SearchResponse{Query: req.Query, Strategy: s.engine.StrategyName(), Count: len(hits), Results: hits}, len(hits), nil
	})
}

// SearchByCode looks rates up by exact code or code prefix, in code order.
func (s *Service) SearchByCode(ctx context.Context, code string) (SearchResponse, error) {
	return run(ctx, s, "search_by_code", func(ctx context.Context, _ *zap.Logger) (SearchResponse, int, error) {
		res, err := s.engine.SearchByCode(ctx, code)
		if err != nil {
			return SearchResponse{}, 0, err
		}
		hits := newSearchHits(res)
		return SearchResponse{Query: code, Strategy: codeStrategy, Count: len(hits), Results: hits}, len(hits), nil
	})
}

// Calculate prices a quantity of work given a rate code or a description.
// A description is resolved to the best search match first.
func (s *Service) Calculate(ctx context.Context, req CalculateRequest) (CalculateResponse, error) {
	return run(ctx, s, "calculate", func(ctx context.Context, log *zap.Logger) (CalculateResponse, int, error) {
		if err := calculator.ValidateQuantity(req.Quantity); err != nil {
			return CalculateResponse{}, 0, err
		}
		id, err := ClassifyIdentifier(req.Identifier)
		if err != nil {
			return CalculateResponse{}, 0, err
		}
		code := id.Value
		resp := CalculateResponse{}
		if id.Kind == FreeText {
			res, err := s.engine.Search(ctx, id.Value, domain.Filters{}, 1)
			if err != nil {
				return CalculateResponse{}, 0, err
			}
			if len(res) == 0 {
				return CalculateResponse{}, 0, domain.NotFound("no rates found matching %q", id.Value)
			}
			code = res[0].RateCode
			resp.SearchUsed = true
			resp.MatchedQuery = id.Value
			log.Debug("identifier resolved by search", zap.String("query", id.Value), zap.String("rate_code", code))
		}
		cost, err := s.calc.Calculate(ctx, code, req.Quantity)
		if err != nil {
			return CalculateResponse{}, 0, err
		}
		resp.Cost = newCost(cost)
		return resp, 1, nil
	})
}

// Details returns the per-resource breakdown of a rate.
func (s *Service) Details(ctx context.Context, req DetailsRequest) (DetailsResponse, error) {
	return run(ctx, s, "details", func(ctx context.Context, _ *zap.Logger) (DetailsResponse, int, error) {
		q := req.Quantity
		if q == 0 {
			q = detailsDefaultQuantity
		}
		b, err := s.calc.Breakdown(ctx, req.RateCode, q, calculator.BreakdownOptions{SortByCost: req.SortByCost})
		if err != nil {
			return DetailsResponse{}, 0, err
		}
		return newDetails(b), len(b.Lines), nil
	})
}

// Compare puts several rates side by side at one quantity.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (CompareResponse, error) {
	return run(ctx, s, "compare", func(ctx context.Context, _ *zap.Logger) (CompareResponse, int, error) {
		rows, err := s.comparator.Compare(ctx, req.RateCodes, req.Quantity)
		if err != nil {
			return CompareResponse{}, 0, err
		}
		out := newRows(rows)
		return CompareResponse{Quantity: qtyFloat(req.Quantity), Count: len(out), Rows: out}, len(out), nil
	})
}

// FindSimilar lists alternatives to a rate, the rate itself first.
func (s *Service) FindSimilar(ctx context.Context, req FindSimilarRequest) (FindSimilarResponse, error) {
	return run(ctx, s, "find_similar", func(ctx context.Context, _ *zap.Logger) (FindSimilarResponse, int, error) {
		rows, err := s.comparator.FindSimilar(ctx, req.RateCode, req.MaxResults, comparator.SimilarOptions{
			Quantity: req.Quantity,
			AnyUnit:  req.AnyUnit,
		})
		if err != nil {
			return FindSimilarResponse{}, 0, err
		}
		out := newRows(rows)
		return FindSimilarResponse{Source: rows[0].RateCode, Count: len(out), Rows: out}, len(out), nil
	})
}
