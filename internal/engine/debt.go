package engine

import (
	"fmt"
	"log/slog"
)

// DebtState is where the chain stands on the road to bankruptcy.
type DebtState uint8

const (
	Solvent DebtState = iota
	InDebt
	Bankrupt
)

func (s DebtState) String() string {
	switch s {
	case Solvent:
		return "solvent"
	case InDebt:
		return "in_debt"
	case Bankrupt:
		return "bankrupt"
	default:
		return fmt.Sprintf("DebtState(%d)", uint8(s))
	}
}

func (w *World) debtState() DebtState {
	switch {
	case w.bankrupt:
		return Bankrupt
	case w.debtStart != nil:
		return InDebt
	default:
		return Solvent
	}
}

// checkDebt runs once per hour after every store has ticked. Hitting the debt
// floor starts a clock; getting back to zero stops it; letting it run for the
// grace period ends the game.
func (w *World) checkDebt() {
	total := w.totalCash()

	if w.debtStart == nil && total.LessThanOrEqual(w.debtFloor()) {
		start := w.time
		w.debtStart = &start
		w.notify(CategoryDebt, fmt.Sprintf("Debt max reached! You have %s to recover before bankruptcy.",
			graceText(w.balance.DebtGraceHours)))
		slog.Warn("debt clock started", "tick", w.time, "total_cash", total.StringFixed(2))
	}

	if w.debtStart != nil && !total.IsNegative() {
		w.debtStart = nil
		w.notify(CategoryDebt, "Debt cleared.")
	}

	if w.debtStart != nil && w.time-*w.debtStart >= w.balance.DebtGraceHours {
		w.goBankrupt()
	}
}

// goBankrupt enters the terminal state. Nothing mutates the world afterwards.
func (w *World) goBankrupt() {
	w.bankrupt = true
	w.notify(CategoryDebt, "Game Over: You failed to repay debt in time.")
	slog.Warn("bankrupt", "tick", w.time, "debt_since", *w.debtStart, "total_cash", w.totalCash().StringFixed(2))
}

func graceText(hours uint64) string {
	if hours == 24 {
		return "one day"
	}
	if hours == 1 {
		return "one hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
