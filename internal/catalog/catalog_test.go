package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/lazypower/neurodose/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"caffeine", "l-theanine", "ginseng", "magnesium", "rhodiola"}, c.IDs())
	assert.Equal(t, 5, c.Len())

	caf, err := c.Get("caffeine")
	require.NoError(t, err)
	assert.Equal(t, 5.0, caf.HalfLifeHours)
	assert.Equal(t, 0.5, caf.AbsorptionRateConstant)
	assert.Equal(t, 0.99, caf.Bioavailability)

	in, ok := caf.InteractionWith("l-theanine")
	require.True(t, ok)
	assert.Equal(t, domain.Synergistic, in.Kind)
}

func TestGetUnknown(t *testing.T) {
	_, err := Default().Get("nicotine")
	var uc *domain.UnknownCompoundError
	require.True(t, errors.As(err, &uc))
	assert.Equal(t, "nicotine", uc.ID)
	assert.False(t, Default().Has("nicotine"))
}

func TestNewRejectsBadParameters(t *testing.T) {
	seed := Seed()
	seed[1].AbsorptionRateConstant = 0

	_, err := New(seed...)
	var ip *domain.InvalidParameterError
	require.True(t, errors.As(err, &ip), "err = %v", err)
	assert.Equal(t, "l-theanine", ip.Subject)
	assert.Equal(t, "absorption_rate_constant", ip.Field)
}

func TestNewRejectsDuplicates(t *testing.T) {
	seed := Seed()
	_, err := New(seed[0], seed[0])
	var ce *domain.ConfigurationError
	require.True(t, errors.As(err, &ce), "err = %v", err)
}

func TestCatalogIsolatedFromInput(t *testing.T) {
	seed := Seed()
	c, err := New(seed...)
	require.NoError(t, err)

	seed[0].Interactions["l-theanine"] = domain.Interaction{Kind: domain.Caution}
	seed[0].HalfLifeHours = 99

	caf, _ := c.Get("caffeine")
	assert.Equal(t, 5.0, caf.HalfLifeHours)
	assert.Equal(t, domain.Synergistic, caf.Interactions["l-theanine"].Kind)
}

const sampleYAML = `
compounds:
  - id: caffeine
    display_name: Caffeine
    color: "#ff7f0e"
    half_life_hours: 5
    absorption_rate_constant: 0.5
    bioavailability: 0.99
    max_daily_dose_mg: 400
    min_effective_concentration_mg: 50
    interactions:
      l-theanine: {kind: synergistic, note: May reduce jitters}
  - id: l-theanine
    display_name: L-Theanine
    half_life_hours: 3
    absorption_rate_constant: 0.8
    bioavailability: 0.98
    max_daily_dose_mg: 400
    interactions:
      caffeine: {kind: synergistic, note: May reduce caffeine jitters}
`

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"caffeine", "l-theanine"}, c.IDs())

	theanine, err := c.Get("l-theanine")
	require.NoError(t, err)
	assert.Equal(t, 0.8, theanine.AbsorptionRateConstant)
	assert.Equal(t, domain.Synergistic, theanine.Interactions["caffeine"].Kind)
}

func TestLoadRejectsZeroHalfLife(t *testing.T) {
	doc := strings.Replace(sampleYAML, "half_life_hours: 3", "half_life_hours: 0", 1)
	_, err := Load(strings.NewReader(doc))
	var ip *domain.InvalidParameterError
	require.True(t, errors.As(err, &ip), "err = %v", err)
	assert.Equal(t, "half_life_hours", ip.Field)
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	doc := strings.Replace(sampleYAML, "{kind: synergistic, note: May reduce jitters}", "{kind: maybe, note: hmm}", 1)
	_, err := Load(strings.NewReader(doc))
	var ce *domain.ConfigurationError
	require.True(t, errors.As(err, &ce), "err = %v", err)
}

func TestLoadRejectsMissingName(t *testing.T) {
	doc := strings.Replace(sampleYAML, "display_name: L-Theanine", "", 1)
	_, err := Load(strings.NewReader(doc))
	var ce *domain.ConfigurationError
	require.True(t, errors.As(err, &ce), "err = %v", err)
	assert.Contains(t, ce.Field, "DisplayName")
}
