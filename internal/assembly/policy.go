// Package assembly turns matched START/REPLY/CONFIRM triples into validated deals.
package assembly

import (
	"errors"
	"fmt"
)

// VolumePolicy selects how the deal amount is resolved from the volumes of a triple.
type VolumePolicy string

// Volume policies.
const (
	VolumeMin   VolumePolicy = "min"   // Smallest volume stated by any message of the triple
	VolumeStart VolumePolicy = "start" // The quote's volume, falling back to the smallest other
)

// PricePolicy selects how the two-digit price is resolved.
type PricePolicy string

// Price policies.
const (
	PriceModulo PricePolicy = "modulo" // Extracted price, else the raw candidate modulo 100
	PriceStrict PricePolicy = "strict" // Extracted price only
)

// Defaults for Policy.
const (
	DefaultMarketOffset = 25300
	DefaultVolumeMin    = 0.1
	DefaultVolumeMax    = 100.0
)

var (
	// ErrUnknownPolicy is returned for unrecognized volume or price policies.
	ErrUnknownPolicy = errors.New("unknown assembly policy")
	// ErrInvalidVolumeRange is returned when the sane volume range is empty or negative.
	ErrInvalidVolumeRange = errors.New("invalid volume range")
)

// Policy configures deal assembly.
type Policy struct {
	Volume       VolumePolicy
	Price        PricePolicy
	MarketOffset int64
	VolumeMin    float64
	VolumeMax    float64
}

// DefaultPolicy returns the min-volume, modulo-price policy.
func DefaultPolicy() Policy {
	return Policy{
		Volume:       VolumeMin,
		Price:        PriceModulo,
		MarketOffset: DefaultMarketOffset,
		VolumeMin:    DefaultVolumeMin,
		VolumeMax:    DefaultVolumeMax,
	}
}

// Validate checks the policy for consistency.
func (p Policy) Validate() error {
	switch p.Volume {
	case VolumeMin, VolumeStart:
	default:
		return fmt.Errorf("%w: volume policy %q", ErrUnknownPolicy, p.Volume)
	}
	switch p.Price {
	case PriceModulo, PriceStrict:
	default:
		return fmt.Errorf("%w: price policy %q", ErrUnknownPolicy, p.Price)
	}
	if p.VolumeMin < 0 || p.VolumeMax <= 0 || p.VolumeMin > p.VolumeMax {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidVolumeRange, p.VolumeMin, p.VolumeMax)
	}
	return nil
}
