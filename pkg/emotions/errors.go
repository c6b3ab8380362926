package emotions

import "errors"

var (
	// ErrMissingRegion is returned when a classifier result has no face region.
	ErrMissingRegion = errors.New("detection has no region")

	// ErrInvalidRegion is returned when a region has zero or negative size.
	ErrInvalidRegion = errors.New("detection region is empty")
)

// Validate checks that a detection can be drawn.
func (d Detection) Validate() error {
	if d.Region == (Region{}) {
		return ErrMissingRegion
	}
	if !d.Region.Valid() {
		return ErrInvalidRegion
	}
	return nil
}
