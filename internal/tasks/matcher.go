package tasks

import (
	"strings"

	"github.com/ukonnect/ukonnect-api/internal/models"
)

// Matches reports whether a template predicate accepts a profile value.
// An empty predicate is a wildcard. A concrete predicate cannot be satisfied
// by an empty profile value. Otherwise the predicate must appear in the
// profile value as a case-insensitive substring; the match is deliberately
// loose so free-text profile fields with extra words still qualify.
func Matches(templateValue, profileValue string) bool {
	if templateValue == "" {
		return true
	}
	if profileValue == "" {
		return false
	}
	return strings.Contains(strings.ToLower(profileValue), strings.ToLower(templateValue))
}

// Applicable reports whether all four template predicates accept the profile.
func Applicable(t models.TaskTemplate, p models.Profile) bool {
	return Matches(t.VisaTypeMatch, p.VisaType) &&
		Matches(t.PurposeMatch, p.Purpose) &&
		Matches(t.CityMatch, p.City) &&
		Matches(t.NationalityMatch, p.Nationality)
}

// NormalizePriority maps a template's default priority onto the task enum,
// case-insensitively, falling back to MEDIUM for anything unrecognized.
func NormalizePriority(raw string) models.TaskPriority {
	switch models.TaskPriority(strings.ToUpper(strings.TrimSpace(raw))) {
	case models.PriorityLow:
		return models.PriorityLow
	case models.PriorityMedium:
		return models.PriorityMedium
	case models.PriorityHigh:
		return models.PriorityHigh
	case models.PriorityUrgent:
		return models.PriorityUrgent
	default:
		return models.PriorityMedium
	}
}

// DueDays returns how many days out a freshly generated task is due.
func DueDays(p models.TaskPriority) int {
	switch p {
	case models.PriorityUrgent:
		return 3
	case models.PriorityHigh:
		return 7
	case models.PriorityMedium:
		return 14
	default:
		return 21
	}
}
