package domain

import "strings"

type Category string

const (
	CategorySport    Category = "sport"
	CategoryAcademic Category = "academic"
	CategoryGeneral  Category = "general"
)

const (
	sportEmoji    = "\U0001F3C0" // basketball
	academicEmoji = "\U0001F4DA" // books
)

var sportKeywords = []string{
	"sport", "match", "basket", "foot", "but", "entrainement", "victoire", "tournoi",
}

var academicKeywords = []string{
	"devoir", "exercice", "lecture", "math", "dictee", "examen", "note", "participation",
}

// Categorize maps a free-text action label to a scoring category. Emoji
// markers win outright; otherwise the keyword lists are scanned in order,
// case-insensitively, first match wins. Labels matching neither list are
// classified as general.
func Categorize(action string) Category {
	return CategorizeWithFallback(action, CategoryGeneral)
}

// CategorizeWithFallback is Categorize with a configurable category for
// labels matching no marker or keyword. Deployments that historically
// defaulted unmatched labels to academic set the fallback once in config.
func CategorizeWithFallback(action string, fallback Category) Category {
	if strings.Contains(action, sportEmoji) {
		return CategorySport
	}
	if strings.Contains(action, academicEmoji) {
		return CategoryAcademic
	}

	lower := strings.ToLower(action)
	for _, kw := range sportKeywords {
		if strings.Contains(lower, kw) {
			return CategorySport
		}
	}
	for _, kw := range academicKeywords {
		if strings.Contains(lower, kw) {
			return CategoryAcademic
		}
	}
	return fallback
}
