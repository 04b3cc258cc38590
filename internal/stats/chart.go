package stats

import (
	"math"

	"cleverspend/internal/core"
)

const (
	// StartAngle is 12 o'clock; angles grow clockwise.
	StartAngle = -90.0

	// DefaultLabelRadius places labels two thirds of the way to the rim.
	DefaultLabelRadius = 0.66
)

// ComputeArcSpans lays the aggregates out as contiguous slices in the given
// order. When the total is positive the sweeps add up to 360 degrees;
// otherwise every span is zero-width at the start angle.
func ComputeArcSpans(aggregates []core.CategoryAggregate) []core.ArcSpan {
	total := Total(aggregates)

	spans := make([]core.ArcSpan, 0, len(aggregates))
	cursor := StartAngle
	for _, a := range aggregates {
		sweep := share(a.Amount, total) * 360
		spans = append(spans, core.ArcSpan{StartAngle: cursor, EndAngle: cursor + sweep})
		cursor += sweep
	}
	return spans
}

// LabelPlacement projects the angular midpoint of span onto a circle of
// radiusFraction (1 is the rim).
func LabelPlacement(span core.ArcSpan, radiusFraction float64) core.LabelPosition {
	mid := (span.StartAngle + span.EndAngle) / 2
	rad := mid * math.Pi / 180
	return core.LabelPosition{
		Angle:          mid,
		RadiusFraction: radiusFraction,
		X:              radiusFraction * math.Cos(rad),
		Y:              radiusFraction * math.Sin(rad),
	}
}

// Labels places one label per slice with a positive amount. aggregates and
// spans must be index-aligned, as returned by ComputeArcSpans.
func Labels(aggregates []core.CategoryAggregate, spans []core.ArcSpan, radiusFraction float64) []core.LabelPosition {
	labels := make([]core.LabelPosition, 0, len(spans))
	for i, span := range spans {
		if i >= len(aggregates) || !aggregates[i].Amount.IsPositive() {
			continue
		}
		l := LabelPlacement(span, radiusFraction)
		l.CategoryID = aggregates[i].CategoryID
		labels = append(labels, l)
	}
	return labels
}
