package sync

import "betpool/backend/internal/models"

// statusTable maps the provider's short status codes onto local match states.
// The provider adds codes over time; anything unrecognized is treated as
// scheduled so an unknown fixture never locks or settles bets by accident.
var statusTable = map[string]models.MatchStatus{
	"NS":  models.StatusScheduled, // Not Started
	"TBD": models.StatusScheduled,

	"1H":   models.StatusLive, // First Half
	"HT":   models.StatusLive, // Halftime
	"2H":   models.StatusLive, // Second Half
	"ET":   models.StatusLive, // Extra Time
	"P":    models.StatusLive, // Penalty shootout
	"LIVE": models.StatusLive,

	"FT":  models.StatusFinished, // Full Time
	"AET": models.StatusFinished, // After Extra Time
	"PEN": models.StatusFinished, // After Penalties

	"CANCL": models.StatusCancelled,
	"PST":   models.StatusPostponed,
}

// MapAPIStatus translates a provider status code to a local match status
func MapAPIStatus(apiStatus string) models.MatchStatus {
	if status, ok := statusTable[apiStatus]; ok {
		return status
	}
	return models.StatusScheduled
}
