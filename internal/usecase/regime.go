package usecase

import (
	"context"

	"MarketCoach/internal/domain/models"
	domrepo "MarketCoach/internal/domain/repository"
	domsvc "MarketCoach/internal/domain/service"
	applogger "MarketCoach/pkg/logger"
)

// RegimeUseCase classifies a snapshot set with the deployment's one active
// classifier and hands the result to the coach and the publisher.
type RegimeUseCase struct {
	gateway    *SnapshotGateway
	classifier domsvc.RegimeClassifier
	coach      *CoachUseCase
	publisher  domrepo.Publisher
	log        *applogger.Logger
}

func NewRegimeUseCase(gateway *SnapshotGateway, classifier domsvc.RegimeClassifier, coach *CoachUseCase, publisher domrepo.Publisher, l *applogger.Logger) *RegimeUseCase {
	if l == nil {
		l = applogger.NewNop()
	}
	return &RegimeUseCase{gateway: gateway, classifier: classifier, coach: coach, publisher: publisher, log: l}
}

// Regime snapshots symbols (the universe when empty) and classifies them.
func (uc *RegimeUseCase) Regime(ctx context.Context, symbols []string) (*models.RegimeReport, error) {
	snap, err := uc.gateway.Snapshot(ctx, symbols)
	if err != nil {
		return nil, err
	}
	return uc.Classify(ctx, snap), nil
}

// Classify labels an already computed snapshot set. Symbols that failed
// upstream are listed under Errors and left out of the counts.
func (uc *RegimeUseCase) Classify(ctx context.Context, snap *models.SnapshotResponse) *models.RegimeReport {
	report := uc.classifier.Classify(snap.Snapshots())
	report.Meta = snap.Meta
	for sym, res := range snap.Results {
		if res.Err == nil {
			continue
		}
		if report.Errors == nil {
			report.Errors = make(map[string]string)
		}
		report.Errors[sym] = res.Err.Error
	}

	if uc.coach != nil {
		if err := uc.coach.Record(ctx, report); err != nil {
			uc.log.Warn("coach record failed", applogger.Error(err))
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishRegime(ctx, report); err != nil {
			uc.log.Warn("publish regime failed", applogger.Error(err))
		}
	}
	return report
}

// ClassifierName reports which classifier is active.
func (uc *RegimeUseCase) ClassifierName() string { return uc.classifier.Name() }
