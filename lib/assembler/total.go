package assembler

import (
	"fmt"

	"hr-docgen-backend/lib/utils/helpers"
	"hr-docgen-backend/models"
)

const daysPerMonth = 30

// TotalExperience sums the day spans of both stints and renders them as <years>Y<months>M
// with 30-day months. It is empty unless all four dates parse.
func TotalExperience(rec models.Record) string {
	var days int
	for _, pair := range [][2]string{
		{models.FieldExp1From, models.FieldExp1To},
		{models.FieldExp2From, models.FieldExp2To},
	} {
		from, err := helpers.ParseDate(rec[pair[0]])
		if err != nil {
			return ""
		}
		to, err := helpers.ParseDate(rec[pair[1]])
		if err != nil {
			return ""
		}
		days += helpers.DaysBetween(from, to)
	}
	months := days / daysPerMonth
	if days < 0 {
		// floor division for reversed intervals
		months = -((-days + daysPerMonth - 1) / daysPerMonth)
	}
	years, rest := months/12, months%12
	if rest < 0 {
		years--
		rest += 12
	}
	return fmt.Sprintf("%dY%dM", years, rest)
}
