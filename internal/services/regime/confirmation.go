package regime

import (
	"fmt"

	"MarketCoach/internal/domain/models"
	"MarketCoach/internal/services/universe"
)

const (
	strongRatio = 0.5
	weakRatio   = 0.34
)

// ConfirmationClassifier is the three-way tile classifier driven by RTH
// reversal confirmations and positive high-performance.
type ConfirmationClassifier struct {
	u *universe.Universe
}

func NewConfirmationClassifier(u *universe.Universe) *ConfirmationClassifier {
	return &ConfirmationClassifier{u: u}
}

func (c *ConfirmationClassifier) Name() string { return ClassifierConfirmation }

func (c *ConfirmationClassifier) Classify(snapshots []models.Snapshot) *models.RegimeReport {
	conf := c.Tally(snapshots)
	return &models.RegimeReport{
		Classifier:   ClassifierConfirmation,
		Regime:       ClassifyConfirmation(conf),
		Confirmation: &conf,
	}
}

func (c *ConfirmationClassifier) Tally(snapshots []models.Snapshot) models.Confirmation {
	conf := models.Confirmation{Cohorts: map[string][2]int{}}
	for _, s := range snapshots {
		conf.Total++
		if s.RTH.Reversal.Confirmed {
			conf.ConfirmedRTH++
		}
		if s.ETH.Reversal.Confirmed {
			conf.ConfirmedETH++
		}
		if s.RTH.PerfHigh != nil && *s.RTH.PerfHigh > 0 {
			conf.PositiveHigh++
		}
		if cohort := c.u.Cohort(s.Symbol); cohort != "" {
			ct := conf.Cohorts[cohort]
			if s.RTH.Reversal.Confirmed {
				ct[0]++
			}
			ct[1]++
			conf.Cohorts[cohort] = ct
		}
	}
	return conf
}

func cohortRatio(conf models.Confirmation, cohort string) (float64, bool) {
	ct, ok := conf.Cohorts[cohort]
	if !ok || ct[1] == 0 {
		return 0, false
	}
	return ratio(ct[0], ct[1]), true
}

// ClassifyConfirmation maps confirmation ratios to panic, repricing or stabilization.
func ClassifyConfirmation(conf models.Confirmation) models.RegimeClassification {
	if conf.Total == 0 {
		return models.RegimeClassification{
			Code:      models.RegimeNone,
			Label:     "—",
			ToneClass: models.ToneNeutral,
			Sub:       "No symbols.",
		}
	}

	leaders, hasLeaders := cohortRatio(conf, models.CohortLiquidityLeader)
	reflex, hasReflex := cohortRatio(conf, models.CohortReflexBounce)
	macro, hasMacro := cohortRatio(conf, models.CohortMacroSensitive)

	leaderStrong := hasLeaders && leaders >= strongRatio
	reflexStrong := hasReflex && reflex >= strongRatio
	macroFailing := hasMacro && macro < weakRatio

	confirmRatio := ratio(conf.ConfirmedRTH, conf.Total)
	breadth := ratio(conf.PositiveHigh, conf.Total)

	meta := fmt.Sprintf("RTH %d/%d, ETH %d/%d confirmed; %d/%d positive by high",
		conf.ConfirmedRTH, conf.Total, conf.ConfirmedETH, conf.Total, conf.PositiveHigh, conf.Total)

	if (leaderStrong && reflexStrong && breadth >= strongRatio) || (confirmRatio >= strongRatio && leaderStrong) {
		return models.RegimeClassification{
			Code:      models.RegimePanicEvent,
			Label:     "PANIC EVENT (MEAN REVERSION)",
			ToneClass: models.ToneGood,
			Sub: fmt.Sprintf("Leaders and reflex names are confirming; breadth improving (%d/%d RTH positive by high).",
				conf.PositiveHigh, conf.Total),
			Meta: meta,
		}
	}
	if confirmRatio < weakRatio && breadth < weakRatio && macroFailing {
		return models.RegimeClassification{
			Code:      models.RegimeEconomicRepricing,
			Label:     "ECONOMIC REPRICING (RISK-OFF TREND)",
			ToneClass: models.ToneBad,
			Sub: fmt.Sprintf("Low confirmations (%d/%d), weak breadth (%d/%d) and macro-sensitive names lagging.",
				conf.ConfirmedRTH, conf.Total, conf.PositiveHigh, conf.Total),
			Meta: meta,
		}
	}
	return models.RegimeClassification{
		Code:      models.RegimeStabilization,
		Label:     "STABILIZATION (CHOP / RANGE)",
		ToneClass: models.ToneNeutral,
		Sub: fmt.Sprintf("Mixed signals: RTH confirms %d/%d, ETH confirms %d/%d, breadth %d/%d.",
			conf.ConfirmedRTH, conf.Total, conf.ConfirmedETH, conf.Total, conf.PositiveHigh, conf.Total),
		Meta: meta,
	}
}
