package target

import (
	"errors"
	"fmt"
)

// Config holds the candidate gates and score weights. All values are fixed at
// process start.
type Config struct {
	// MinArea is the floor the blob source applies to both the pixel count
	// and the bounding-box area of a component. Evaluate only applies the
	// MaxArea cap, so blobs handed in directly are not re-checked.
	MinArea int `json:"min_area" yaml:"min_area" mapstructure:"min_area"`
	MaxArea int `json:"max_area" yaml:"max_area" mapstructure:"max_area"`

	MinWidth  int `json:"min_width" yaml:"min_width" mapstructure:"min_width"`
	MinHeight int `json:"min_height" yaml:"min_height" mapstructure:"min_height"`

	// MaxWidthRatio and MaxHeightRatio reject boxes that cover most of the frame.
	MaxWidthRatio  float64 `json:"max_width_ratio" yaml:"max_width_ratio" mapstructure:"max_width_ratio"`
	MaxHeightRatio float64 `json:"max_height_ratio" yaml:"max_height_ratio" mapstructure:"max_height_ratio"`

	MinAspect float64 `json:"min_aspect" yaml:"min_aspect" mapstructure:"min_aspect"`
	MaxAspect float64 `json:"max_aspect" yaml:"max_aspect" mapstructure:"max_aspect"`

	// MaxDensity gates the strict tier, RelaxedMaxDensity the relaxed tier.
	MinDensity        float64 `json:"min_density" yaml:"min_density" mapstructure:"min_density"`
	MaxDensity        float64 `json:"max_density" yaml:"max_density" mapstructure:"max_density"`
	RelaxedMaxDensity float64 `json:"relaxed_max_density" yaml:"relaxed_max_density" mapstructure:"relaxed_max_density"`

	CenterWeight float64 `json:"center_weight" yaml:"center_weight" mapstructure:"center_weight"`
	TrackWeight  float64 `json:"track_weight" yaml:"track_weight" mapstructure:"track_weight"`

	// EdgeMargin, when positive, keeps candidates whose centroid lies within
	// this many pixels of a frame edge out of the strict tier.
	EdgeMargin float64 `json:"edge_margin" yaml:"edge_margin" mapstructure:"edge_margin"`
}

// DefaultConfig returns the tuning used on the 240x240 camera.
func DefaultConfig() Config {
	return Config{
		MinArea:           100,
		MaxArea:           15000,
		MinWidth:          25,
		MinHeight:         10,
		MaxWidthRatio:     0.85,
		MaxHeightRatio:    0.85,
		MinAspect:         0.3,
		MaxAspect:         3.5,
		MinDensity:        0.01,
		MaxDensity:        0.45,
		RelaxedMaxDensity: 0.95,
		CenterWeight:      0.4,
		TrackWeight:       1.2,
		EdgeMargin:        0,
	}
}

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid target config")

// Validate checks that every band is ordered and every weight is non-negative.
func (c Config) Validate() error {
	switch {
	case c.MinArea < 0 || c.MaxArea < c.MinArea:
		return fmt.Errorf("%w: area band [%d, %d]", ErrInvalidConfig, c.MinArea, c.MaxArea)
	case c.MinWidth < 0 || c.MinHeight < 0:
		return fmt.Errorf("%w: negative minimum size %dx%d", ErrInvalidConfig, c.MinWidth, c.MinHeight)
	case c.MaxWidthRatio <= 0 || c.MaxHeightRatio <= 0:
		return fmt.Errorf("%w: frame ratios must be positive", ErrInvalidConfig)
	case c.MinAspect < 0 || c.MaxAspect < c.MinAspect:
		return fmt.Errorf("%w: aspect band [%g, %g]", ErrInvalidConfig, c.MinAspect, c.MaxAspect)
	case c.MinDensity < 0 || c.MaxDensity < c.MinDensity || c.RelaxedMaxDensity < c.MaxDensity:
		return fmt.Errorf("%w: density bands min=%g strict=%g relaxed=%g",
			ErrInvalidConfig, c.MinDensity, c.MaxDensity, c.RelaxedMaxDensity)
	case c.CenterWeight < 0 || c.TrackWeight < 0:
		return fmt.Errorf("%w: weights must be non-negative", ErrInvalidConfig)
	case c.EdgeMargin < 0:
		return fmt.Errorf("%w: negative edge margin", ErrInvalidConfig)
	}
	return nil
}
