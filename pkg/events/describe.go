package events

import (
	"fmt"
	"slices"
	"strings"
)

// Describe renders e as a single human-readable line.
func Describe(e Event) string {
	switch ev := e.(type) {
	case StateChanged:
		return fmt.Sprintf("%s %s -> %s", ev.Stage(), ev.From, ev.To)
	case ValidationFailed:
		fields := make([]string, 0, len(ev.Result.FieldErrors))
		for f, msg := range ev.Result.FieldErrors {
			fields = append(fields, fmt.Sprintf("%s=%q", f, msg))
		}
		slices.Sort(fields)
		return fmt.Sprintf("%s %s", ev.Stage(), strings.Join(fields, " "))
	case Submitted:
		return fmt.Sprintf("%s ageMonths=%g concern=%q", ev.Stage(), ev.Payload.AgeMonths, ev.Payload.Concern)
	case PlanSucceeded:
		steps := 0
		if ev.Plan != nil {
			steps = len(ev.Plan.Steps)
		}
		return fmt.Sprintf("%s steps=%d", ev.Stage(), steps)
	case BundlesSucceeded:
		return fmt.Sprintf("%s bundles=%d", ev.Stage(), len(ev.Bundles))
	case BundlesFailed:
		return fmt.Sprintf("%s %v", ev.Stage(), ev.Err)
	case Succeeded:
		return string(ev.Stage())
	case Failed:
		return fmt.Sprintf("%s %v", ev.Stage(), ev.Err)
	default:
		return fmt.Sprintf("%T", e)
	}
}

