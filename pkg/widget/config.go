package widget

import (
	"github.com/mitchellh/mapstructure"

	"github.com/apkaudio/openair/pkg/domain"
)

// DecodeConfig fills a typed widget config from a node's property map.
// Input is weakly typed: JSON numbers, strings and bools coerce into the
// target fields the way the declarative documents spell them.
func DecodeConfig(props map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(props)
}

// RangeConfig is the range block shared by all value widgets.
type RangeConfig struct {
	Min     float64 `mapstructure:"min"`
	Max     float64 `mapstructure:"max"`
	Default float64 `mapstructure:"default"`
	Wrap    bool    `mapstructure:"wrap"`
}

func (r *RangeConfig) applyDefaults() {
	if r.Min == 0 && r.Max == 0 {
		r.Max = 100
	}
}

// model validates the range and builds the ValueModel.
func (r RangeConfig) model(path string) (*domain.ValueModel, error) {
	m, err := domain.NewValueModel(r.Min, r.Max, r.Default, r.Wrap)
	if err != nil {
		return nil, domain.NewConfigError(path, "range: min %v > max %v", r.Min, r.Max)
	}
	return m, nil
}
