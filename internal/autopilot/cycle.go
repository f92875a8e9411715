package autopilot

import (
	"context"
	"log/slog"
)

// RunCycle executes one observe → decide → act cycle. Individual action
// failures are logged and skipped; only a failed observation is an error.
func RunCycle(ctx context.Context, observer *Observer, actor *Actor, p Policy) (CycleRecord, error) {
	obs, err := observer.Observe(ctx)
	if err != nil {
		return CycleRecord{}, err
	}

	decision := Decide(obs, p)
	rec := CycleRecord{
		Time:        obs.Status.Time,
		CrisisLevel: decision.Health.CrisisLevel,
		TotalCash:   obs.Status.TotalCash.StringFixed(2),
		Planned:     len(decision.Actions),
		Rationale:   decision.Rationale,
	}
	slog.Info("decision made",
		"clock", obs.Status.Clock,
		"crisis", rec.CrisisLevel,
		"total_cash", rec.TotalCash,
		"actions", rec.Planned,
	)

	for _, action := range decision.Actions {
		result, err := actor.Act(ctx, action)
		if err != nil {
			slog.Error("action failed", "kind", action.Kind, "store", action.Store, "error", err)
			continue
		}
		if result.Accepted {
			rec.Accepted++
		}
		msg := ""
		if !result.Accepted && len(result.Notifications) > 0 {
			msg = result.Notifications[0].Message
		}
		slog.Info("action executed",
			"kind", action.Kind,
			"store", action.Store,
			"sku", action.SKU,
			"quantity", action.Quantity,
			"reason", action.Reason,
			"accepted", result.Accepted,
			"message", msg,
		)
	}
	return rec, nil
}
