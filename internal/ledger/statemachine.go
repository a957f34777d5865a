package ledger

import "kolo/internal/models"

var transitions = map[string]map[string]bool{
	models.StatusPending: {
		models.StatusProcessing: true,
		models.StatusSuccessful: true,
		models.StatusReversed:   true,
		models.StatusFailed:     true,
	},
	models.StatusProcessing: {
		models.StatusSuccessful: true,
		models.StatusReversed:   true,
		models.StatusFailed:     true,
	},
	// SUCCESSFUL and REVERSED accept nothing further.
}

// CanTransition reports whether a status change follows a legal edge.
// Repeating the current status is legal and treated as a no-op by callers.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return transitions[from][to]
}
