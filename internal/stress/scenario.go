package stress

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quanthedge/internal/ports"
)

// Scenario describes a market shock as multiplicative moves applied
// to every underlying price and implied volatility.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	PriceMult   float64 `yaml:"price_mult"`
	VolMult     float64 `yaml:"vol_mult"`
	// CorrShift records the correlation shock assumed alongside the
	// price and vol moves. The runner applies only the multiplicative
	// moves; the shift is carried for scenario definitions.
	CorrShift float64 `yaml:"corr_shift"`
}

// BuiltinScenarios returns the standard shock set, ordered from mild
// to severe.
func BuiltinScenarios() []Scenario {
	return []Scenario{
		{
			Name:        "market_crash_20",
			Description: "Broad 20% sell-off, volatility unchanged",
			PriceMult:   0.80,
			VolMult:     1.0,
		},
		{
			Name:        "market_crash_50",
			Description: "Broad 50% sell-off, volatility unchanged",
			PriceMult:   0.50,
			VolMult:     1.0,
		},
		{
			Name:        "volatility_spike",
			Description: "Prices hold but implied volatility doubles",
			PriceMult:   1.0,
			VolMult:     2.0,
		},
		{
			Name:        "flash_crash",
			Description: "30% gap down with volatility tripling",
			PriceMult:   0.70,
			VolMult:     3.0,
			CorrShift:   0.2,
		},
	}
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScenarios reads extra scenarios from a YAML file and merges them
// over the built-ins. A file scenario with a built-in's name replaces
// it.
func LoadScenarios(path string) ([]Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var f scenarioFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing scenario file: %v", ports.ErrConfig, err)
	}

	merged := BuiltinScenarios()
	for _, s := range f.Scenarios {
		if err := validate(s); err != nil {
			return nil, err
		}
		replaced := false
		for i, b := range merged {
			if b.Name == s.Name {
				merged[i] = s
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, s)
		}
	}
	return merged, nil
}

func validate(s Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("%w: scenario without a name", ports.ErrConfig)
	}
	if s.PriceMult <= 0 {
		return fmt.Errorf("%w: scenario %s: price_mult must be positive", ports.ErrConfig, s.Name)
	}
	if s.VolMult <= 0 {
		return fmt.Errorf("%w: scenario %s: vol_mult must be positive", ports.ErrConfig, s.Name)
	}
	return nil
}
