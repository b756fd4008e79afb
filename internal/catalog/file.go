package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lazypower/neurodose/internal/domain"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type fileDoc struct {
	Compounds []fileCompound `yaml:"compounds" validate:"required,min=1,dive"`
}

type fileCompound struct {
	ID                     string  `yaml:"id" validate:"required"`
	DisplayName            string  `yaml:"display_name" validate:"required"`
	Category               string  `yaml:"category"`
	Color                  string  `yaml:"color" validate:"omitempty,hexcolor"`
	HalfLifeHours          float64 `yaml:"half_life_hours"`
	AbsorptionRateConstant float64 `yaml:"absorption_rate_constant"`
	Bioavailability        float64 `yaml:"bioavailability"`
	MaxDailyDoseMg         float64 `yaml:"max_daily_dose_mg"`
	MinEffectiveMg         float64 `yaml:"min_effective_concentration_mg"`
	TypicalDoseMg          float64 `yaml:"typical_dose_mg"`
	PeakThresholdMg        float64 `yaml:"peak_threshold_mg"`
	Warnings               string  `yaml:"warnings"`

	Alternatives []string `yaml:"alternatives"`

	Interactions map[string]fileInteraction `yaml:"interactions" validate:"dive"`
}

type fileInteraction struct {
	Kind string `yaml:"kind" validate:"required,oneof=synergistic caution neutral"`
	Note string `yaml:"note"`
}

// LoadFile reads a YAML catalog file. Numeric parameters are checked by New,
// so a zero half-life in the file surfaces as an InvalidParameterError.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a YAML catalog document from r.
func Load(r io.Reader) (*Catalog, error) {
	var doc fileDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, validationError(err)
	}

	compounds := make([]domain.Compound, 0, len(doc.Compounds))
	for _, fc := range doc.Compounds {
		comp := domain.Compound{
			ID:                          fc.ID,
			DisplayName:                 fc.DisplayName,
			Category:                    fc.Category,
			Color:                       fc.Color,
			HalfLifeHours:               fc.HalfLifeHours,
			AbsorptionRateConstant:      fc.AbsorptionRateConstant,
			Bioavailability:             fc.Bioavailability,
			MaxDailyDoseMg:              fc.MaxDailyDoseMg,
			MinEffectiveConcentrationMg: fc.MinEffectiveMg,
			TypicalDoseMg:               fc.TypicalDoseMg,
			PeakThresholdMg:             fc.PeakThresholdMg,
			Warnings:                    fc.Warnings,
			Alternatives:                fc.Alternatives,
		}
		if len(fc.Interactions) > 0 {
			comp.Interactions = make(map[string]domain.Interaction, len(fc.Interactions))
			for other, in := range fc.Interactions {
				comp.Interactions[other] = domain.Interaction{Kind: domain.InteractionKind(in.Kind), Note: in.Note}
			}
		}
		compounds = append(compounds, comp)
	}
	return New(compounds...)
}

// validationError converts validator failures into a ConfigurationError
// naming the first offending field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "fileDoc.")
	return &domain.ConfigurationError{
		Field:  field,
		Value:  fmt.Sprint(fe.Value()),
		Reason: "failed " + fe.Tag() + " check",
	}
}
