package experience

import (
	"math/rand/v2"
	"testing"
	"time"

	"hr-docgen-backend/lib/utils/helpers"
	"hr-docgen-backend/models"

	"github.com/stretchr/testify/require"
)

func date(day, month, year int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

var autoPool = []models.ExperienceSample{
	{FileName: "A1", Company: "Acme", Project: "Billing"},
	{FileName: "A2", Company: "Globex", Project: "CRM"},
	{FileName: "A3", Company: "Initech", Project: "TPS"},
}

var manualPool = []models.ExperienceSample{
	{FileName: "Page (1)", Company: "Umbrella", Project: "Vaccines"},
	{FileName: "Page (2)", Company: "Hooli", Project: "Nucleus"},
}

func parse(t *testing.T, value string) time.Time {
	d, err := helpers.ParseDate(value)
	require.Nil(t, err)
	return d
}

func TestSynthesizeAuto(t *testing.T) {
	today := date(1, 1, 2024)

	t.Run(`forward strategy keeps order, gap bounds and the today buffer`, func(t *testing.T) {
		for seed := uint64(1); seed <= 300; seed++ {
			s := NewSeeded(DefaultParams(), seed)
			res := s.Synthesize(models.Record{"Name": "Asha", "dob": "01-01-2000"}, autoPool, nil, today)
			require.False(t, res.Skipped)
			require.Equal(t, ModeAuto, res.Mode)

			exp1Start := parse(t, res.Record["From"])
			exp1End := parse(t, res.Record["To"])
			exp2Start := parse(t, res.Record["From2"])
			exp2End := parse(t, res.Record["To2"])
			require.True(t, exp1Start.Before(exp1End), "seed %d", seed)
			require.True(t, exp1End.Before(exp2Start), "seed %d", seed)
			require.True(t, exp2Start.Before(exp2End), "seed %d", seed)
			require.False(t, exp2End.After(date(17, 12, 2023)), "seed %d", seed)

			switch res.Strategy {
			case StrategyForward:
				require.False(t, exp1Start.Before(date(1, 1, 2018)), "seed %d", seed)
				require.False(t, exp1Start.After(date(31, 12, 2018)), "seed %d", seed)
				require.False(t, exp2Start.Before(helpers.AddDate(exp1End, 0, 12, 0)), "seed %d", seed)
				require.False(t, exp2Start.After(helpers.AddDate(exp1End, 0, 36, 0)), "seed %d", seed)
			case StrategyBackward:
				gap := helpers.DaysBetween(exp1End, exp2Start)
				require.GreaterOrEqual(t, gap, 60)
				require.LessOrEqual(t, gap, 90)
			default:
				t.Fatalf("unexpected strategy %q", res.Strategy)
			}
		}
	})

	t.Run(`adult since 2018 gets forward dated stints`, func(t *testing.T) {
		forward := 0
		for seed := uint64(1); seed <= 100; seed++ {
			res := NewSeeded(DefaultParams(), seed).Synthesize(models.Record{"dob": "01-01-2000"}, autoPool, nil, today)
			if res.Strategy == StrategyForward {
				forward++
			}
		}
		require.Equal(t, 100, forward)
	})

	t.Run(`career start is floored at 2015`, func(t *testing.T) {
		for seed := uint64(1); seed <= 50; seed++ {
			res := NewSeeded(DefaultParams(), seed).Synthesize(models.Record{"dob": "10-05-1980"}, autoPool, nil, today)
			require.Equal(t, StrategyForward, res.Strategy)
			require.False(t, res.Exp1.Start.Before(date(1, 1, 2015)))
			require.True(t, res.Exp1.Start.Before(date(1, 1, 2016)))
		}
	})

	t.Run(`short runway uses the backward strategy`, func(t *testing.T) {
		for seed := uint64(1); seed <= 200; seed++ {
			res := NewSeeded(DefaultParams(), seed).Synthesize(models.Record{"dob": "01-06-2003"}, autoPool, nil, today)
			require.Equal(t, StrategyBackward, res.Strategy)
			gap := helpers.DaysBetween(res.Exp1.End, res.Exp2.Start)
			require.GreaterOrEqual(t, gap, 60)
			require.LessOrEqual(t, gap, 90)
			require.Equal(t, 3*365, helpers.DaysBetween(res.Exp1.Start, res.Exp2.End))
			require.GreaterOrEqual(t, helpers.DaysBetween(res.Exp2.Start, res.Exp2.End), 365)
			require.GreaterOrEqual(t, helpers.DaysBetween(res.Exp2.End, today), 15)
			require.LessOrEqual(t, helpers.DaysBetween(res.Exp2.End, today), 90)
		}
	})

	t.Run(`two distinct samples are bound`, func(t *testing.T) {
		for seed := uint64(1); seed <= 50; seed++ {
			res := NewSeeded(DefaultParams(), seed).Synthesize(models.Record{"dob": "01-01-1995"}, autoPool, nil, today)
			require.NotEqual(t, res.Record["Exp1 Company"], res.Record["Exp2 Company"])
			require.NotEmpty(t, res.Record["Exp1 Project"])
			require.NotEmpty(t, res.Record["exp1"])
			require.NotEmpty(t, res.Record["exp2"])
		}
	})

	t.Run(`same seed gives the same record`, func(t *testing.T) {
		rec := models.Record{"dob": "01-01-1995"}
		a := NewInstance(DefaultParams(), rand.New(rand.NewPCG(7, 7))).Synthesize(rec, autoPool, nil, today)
		b := NewInstance(DefaultParams(), rand.New(rand.NewPCG(7, 7))).Synthesize(rec, autoPool, nil, today)
		require.Equal(t, a.Record, b.Record)
	})

	t.Run(`invalid dob is skipped`, func(t *testing.T) {
		s := NewSeeded(DefaultParams(), 1)
		for _, dob := range []string{"", "2000-01-01", "31-02-2000"} {
			rec := models.Record{"Name": "X", "dob": dob}
			res := s.Synthesize(rec, autoPool, nil, today)
			require.True(t, res.Skipped)
			require.Contains(t, res.Reason, "invalid DOB")
			require.Equal(t, rec, res.Record)
		}
	})

	t.Run(`pool with one sample is skipped without dates`, func(t *testing.T) {
		res := NewSeeded(DefaultParams(), 1).Synthesize(models.Record{"dob": "01-01-1995"}, autoPool[:1], nil, today)
		require.True(t, res.Skipped)
		require.Contains(t, res.Reason, "need 2")
		require.Empty(t, res.Record["From"])
	})

	t.Run(`input record is not mutated`, func(t *testing.T) {
		rec := models.Record{"dob": "01-01-1995"}
		_ = NewSeeded(DefaultParams(), 3).Synthesize(rec, autoPool, nil, today)
		require.Equal(t, models.Record{"dob": "01-01-1995"}, rec)
	})
}

func TestSynthesizeManual(t *testing.T) {
	today := date(1, 1, 2024)
	base := models.Record{
		"Name":         "Ravi",
		"From":         "01-02-2019",
		"To":           "01-02-2021",
		"From2":        "01-06-2022",
		"To2":          "01-10-2023",
		"Exp1 Company": " Umbrella ",
		"Exp2 Company": "Hooli",
		"Custom":       "keep",
	}

	t.Run(`matched companies bind project and file`, func(t *testing.T) {
		res := NewSeeded(DefaultParams(), 1).Synthesize(base, autoPool, manualPool, today)
		require.Equal(t, ModeManual, res.Mode)
		require.False(t, res.Skipped)
		require.Empty(t, res.Warnings)
		require.Equal(t, "Vaccines", res.Record["Exp1 Project"])
		require.Equal(t, "Page (1)", res.Record["exp1"])
		require.Equal(t, "Nucleus", res.Record["Exp2 Project"])
		require.Equal(t, "Page (2)", res.Record["exp2"])
		for _, field := range []string{"Name", "From", "To", "From2", "To2", "Exp1 Company", "Exp2 Company", "Custom"} {
			require.Equal(t, base[field], res.Record[field])
		}
	})

	t.Run(`unknown company leaves project and file unset`, func(t *testing.T) {
		rec := base.Clone()
		rec["Exp2 Company"] = "Nobody Inc"
		res := NewSeeded(DefaultParams(), 1).Synthesize(rec, autoPool, manualPool, today)
		require.False(t, res.Skipped)
		require.Len(t, res.Warnings, 1)
		require.Contains(t, res.Warnings[0], "Nobody Inc")
		_, hasProject := res.Record["Exp2 Project"]
		require.False(t, hasProject)
		_, hasFile := res.Record["exp2"]
		require.False(t, hasFile)
	})

	t.Run(`manual rows need no dob`, func(t *testing.T) {
		rec := base.Clone()
		rec["dob"] = "garbage"
		res := NewSeeded(DefaultParams(), 1).Synthesize(rec, autoPool, manualPool, today)
		require.False(t, res.Skipped)
		require.Equal(t, ModeManual, res.Mode)
	})

	t.Run(`one missing field switches to auto`, func(t *testing.T) {
		rec := base.Clone()
		rec["To2"] = "  "
		rec["dob"] = "01-01-1995"
		require.False(t, IsManual(rec))
		res := NewSeeded(DefaultParams(), 1).Synthesize(rec, autoPool, manualPool, today)
		require.Equal(t, ModeAuto, res.Mode)
	})
}
