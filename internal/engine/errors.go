package engine

import "fmt"

// InvalidXPError indicates a caller passed a negative XP amount or total.
// XP amounts are never clamped silently; bad input is a contract violation.
type InvalidXPError struct {
	Amount int
}

func (e InvalidXPError) Error() string {
	return fmt.Sprintf("invalid xp amount: %d", e.Amount)
}

// InvalidLevelError indicates a corrupted agent level. Zero means a
// fresh zero-value agent and is treated as level 1; negative is rejected.
type InvalidLevelError struct {
	Level int
}

func (e InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid level: %d (levels start at 1)", e.Level)
}
