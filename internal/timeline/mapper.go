package timeline

import "time"

// PositionMapper converts between source time and timeline display units.
// Both parameters are fixed when the model is built.
type PositionMapper struct {
	total time.Duration
	width float64
}

// NewPositionMapper returns a mapper spanning total over width display units
func NewPositionMapper(total time.Duration, width float64) PositionMapper {
	return PositionMapper{total: total, width: width}
}

// ToPixel maps a time position to a display coordinate
func (m PositionMapper) ToPixel(pos time.Duration) float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(pos) * m.width / float64(m.total)
}

// ToTime maps a display coordinate back to a time position
func (m PositionMapper) ToTime(x float64) time.Duration {
	if m.width <= 0 {
		return 0
	}
	return time.Duration(x * float64(m.total) / m.width)
}

// Width returns the display width of a span of d
func (m PositionMapper) Width(d time.Duration) float64 {
	return m.ToPixel(d)
}

// DisplayWidth returns the total display width
func (m PositionMapper) DisplayWidth() float64 {
	return m.width
}

// Total returns the total duration the mapper spans
func (m PositionMapper) Total() time.Duration {
	return m.total
}
