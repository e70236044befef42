package universe

import (
	"testing"

	"MarketCoach/internal/domain/models"
	"MarketCoach/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestDefaultUniverse(t *testing.T) {
	u := Default()

	assert.Len(t, dow30, 29)
	assert.Len(t, u.Symbols(), len(dow30))
	assert.InDelta(t, 0.005, u.Threshold("MSFT"), 1e-12)
	assert.InDelta(t, 0.012, u.Threshold("AXP"), 1e-12)
	assert.InDelta(t, DefaultThreshold, u.Threshold("TSLA"), 1e-12)
	assert.Equal(t, models.CohortDefensive, u.Cohort("KO"))
	assert.Equal(t, "", u.Cohort("TSLA"))
	assert.ElementsMatch(t, []string{"AAPL", "MSFT", "IBM"}, u.Members(models.CohortLiquidityLeader))
	assert.Len(t, u.Members(models.CohortCyclical), 5)
}

func TestFromConfigOverridesAndNormalises(t *testing.T) {
	cfg := &config.Config{Universe: []config.SymbolConfig{
		{Symbol: " msft ", Threshold: 0.004, Cohort: models.CohortLiquidityLeader},
		{Symbol: "MSFT", Threshold: 0.5},
		{Symbol: "XYZ"},
	}}
	u := FromConfig(cfg)

	assert.Equal(t, []string{"MSFT", "XYZ"}, u.Symbols())
	assert.InDelta(t, 0.004, u.Threshold("MSFT"), 1e-12)
	// zero threshold in the table falls back to the default
	assert.InDelta(t, DefaultThreshold, u.Threshold("XYZ"), 1e-12)
	_, ok := u.Lookup("AAPL")
	assert.False(t, ok)
}
