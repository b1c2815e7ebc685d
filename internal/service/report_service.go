package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/cache"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/pipeline"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/repository"
)

// ReportService serves the derived season report tables, with a cache-aside
// layer in front of the repository.
type ReportService struct {
	repo  repository.ReportRepository
	cache cache.ReportCache
}

func NewReportService(repo repository.ReportRepository, cacheImpl cache.ReportCache) *ReportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &ReportService{repo: repo, cache: cacheImpl}
}

// PersistSeasonResults stores a finished pipeline run. Failed seasons are
// skipped; a season that errored keeps whatever was stored before.
func (s *ReportService) PersistSeasonResults(ctx context.Context, results []*pipeline.SeasonResult) error {
	for _, res := range results {
		if res.Err != nil {
			log.Warn().Str("season", res.Season).Err(res.Err).Msg("skipping failed season")
			continue
		}

		if err := s.repo.SaveLotSummaries(ctx, res.Season, res.Summaries); err != nil {
			return fmt.Errorf("season %s: %w", res.Season, err)
		}
		if err := s.repo.SaveLedger(ctx, res.Season, res.Ledger); err != nil {
			return fmt.Errorf("season %s: %w", res.Season, err)
		}
		if err := s.repo.SaveDiscrepancies(ctx, res.Season, res.Discrepancies); err != nil {
			return fmt.Errorf("season %s: %w", res.Season, err)
		}

		if err := s.cache.InvalidateSeason(ctx, res.Season); err != nil {
			log.Warn().Str("season", res.Season).Err(err).Msg("cache invalidation failed")
		}
	}
	return nil
}

func (s *ReportService) GetSeasons(ctx context.Context) ([]string, error) {
	return s.repo.GetSeasons(ctx)
}

func (s *ReportService) GetLotSummaries(ctx context.Context, season, exporter string) ([]domain.LotSummary, error) {
	section := "summaries:" + exporter
	var summaries []domain.LotSummary
	if ok, err := s.cache.Get(ctx, season, section, &summaries); err == nil && ok {
		return summaries, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("report: cache get summaries failed")
	}

	summaries, err := s.repo.GetLotSummaries(ctx, season, exporter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, season, section, summaries); err != nil {
		log.Warn().Err(err).Msg("report: cache set summaries failed")
	}

	return summaries, nil
}

func (s *ReportService) GetLedger(ctx context.Context, season, exporter, lotID string) ([]domain.LedgerEntry, error) {
	return s.repo.GetLedger(ctx, season, exporter, lotID)
}

func (s *ReportService) GetCurrentInventory(ctx context.Context, season string) ([]domain.LedgerState, error) {
	section := "inventory"
	var states []domain.LedgerState
	if ok, err := s.cache.Get(ctx, season, section, &states); err == nil && ok {
		return states, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("report: cache get inventory failed")
	}

	states, err := s.repo.GetCurrentInventory(ctx, season)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, season, section, states); err != nil {
		log.Warn().Err(err).Msg("report: cache set inventory failed")
	}

	return states, nil
}

func (s *ReportService) GetDiscrepancies(ctx context.Context, season string) ([]domain.Discrepancy, error) {
	return s.repo.GetDiscrepancies(ctx, season)
}
