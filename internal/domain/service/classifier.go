package service

import "MarketCoach/internal/domain/models"

// RegimeClassifier labels the aggregate market state from a snapshot set.
// Exactly one implementation is active per deployment.
type RegimeClassifier interface {
	Name() string
	Classify(snapshots []models.Snapshot) *models.RegimeReport
}
