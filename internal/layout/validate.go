package layout

import "fmt"

// ValidationWarning describes a placement that breaks its fit-mode contract.
type ValidationWarning struct {
	Message  string
	Severity string // "error" or "warning"
}

// ValidatePlacement checks a computed rectangle against the page.
// Pad placements must stay inside the margin box; crop placements must cover
// the page on both axes and be centered.
func ValidatePlacement(r Rect, pageW, pageH float64, fit FitMode) []ValidationWarning {
	var warnings []ValidationWarning
	const eps = 0.01

	if r.W <= 0 || r.H <= 0 {
		return []ValidationWarning{{
			Message:  fmt.Sprintf("non-positive placement size (%.2f x %.2f)", r.W, r.H),
			Severity: "error",
		}}
	}

	switch fit {
	case FitPad:
		box := MarginBox(pageW, pageH)
		if r.X < box.X-eps || r.Y < box.Y-eps {
			warnings = append(warnings, ValidationWarning{
				Message:  fmt.Sprintf("placement origin (%.2f, %.2f) is inside the %.2fmm margin", r.X, r.Y, box.X),
				Severity: "error",
			})
		}
		if r.X+r.W > box.X+box.W+eps || r.Y+r.H > box.Y+box.H+eps {
			warnings = append(warnings, ValidationWarning{
				Message:  fmt.Sprintf("placement far edge (%.2f, %.2f) extends past margin box", r.X+r.W, r.Y+r.H),
				Severity: "error",
			})
		}
	default:
		if r.W < pageW-eps || r.H < pageH-eps {
			warnings = append(warnings, ValidationWarning{
				Message:  fmt.Sprintf("crop placement %.2fx%.2f does not cover page %.2fx%.2f", r.W, r.H, pageW, pageH),
				Severity: "error",
			})
		}
		if abs(r.X-(pageW-r.W)/2) > eps || abs(r.Y-(pageH-r.H)/2) > eps {
			warnings = append(warnings, ValidationWarning{
				Message:  fmt.Sprintf("crop placement at (%.2f, %.2f) is not centered", r.X, r.Y),
				Severity: "warning",
			})
		}
	}
	return warnings
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
