package experience

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"hr-docgen-backend/lib/utils/helpers"
	"hr-docgen-backend/models"
)

// Rand is the random source used for every draw. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type Mode string

const (
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
)

type Strategy string

const (
	StrategyNone     Strategy = ""
	StrategyForward  Strategy = "forward"
	StrategyBackward Strategy = "backward"
)

const (
	backwardWindowDays = 3 * 365
	backwardMinGapDays = 60
	backwardMaxGapDays = 90
	backwardMinStint   = 365
	clampSpreadDays    = 75
	minSecondStintDays = 180
)

type Params struct {
	MinExpYears  int
	MaxExpYears  int
	MinGapMonths int
	MaxGapMonths int
	AdultAge     int
	CareerFloor  time.Time
	TodayBuffer  int // days before today that no stint may end after
}

func DefaultParams() Params {
	return Params{
		MinExpYears:  2,
		MaxExpYears:  3,
		MinGapMonths: 12,
		MaxGapMonths: 36,
		AdultAge:     18,
		CareerFloor:  time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		TodayBuffer:  15,
	}
}

type Interval struct {
	Start time.Time
	End   time.Time
}

// Result is the outcome for one record. Record is always a copy; the input is never mutated.
type Result struct {
	Record   models.Record
	Mode     Mode
	Strategy Strategy
	Exp1     Interval
	Exp2     Interval
	Skipped  bool
	Reason   string
	Warnings []string
}

type Provider interface {
	Synthesize(rec models.Record, autoPool, manualPool []models.ExperienceSample, today time.Time) Result
}

// NewInstance returns a synthesizer drawing from rnd. It is not safe for concurrent use
// unless rnd is.
func NewInstance(params Params, rnd Rand) Provider {
	if params.MaxExpYears < params.MinExpYears {
		params.MaxExpYears = params.MinExpYears
	}
	if params.MaxGapMonths < params.MinGapMonths {
		params.MaxGapMonths = params.MinGapMonths
	}
	if params.TodayBuffer <= 0 {
		params.TodayBuffer = 15
	}
	return &impl{params: params, rnd: rnd}
}

// NewSeeded builds a synthesizer with a PCG source; seed 0 picks one from the clock.
func NewSeeded(params Params, seed uint64) Provider {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return NewInstance(params, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

type impl struct {
	params Params
	rnd    Rand
}

var manualModeFields = []string{
	models.FieldExp1From, models.FieldExp1To, models.FieldExp2From, models.FieldExp2To,
	models.FieldExp1Company, models.FieldExp2Company,
}

// IsManual reports whether the record already carries both stints.
func IsManual(rec models.Record) bool {
	for _, field := range manualModeFields {
		if !rec.Has(field) {
			return false
		}
	}
	return true
}

func (i *impl) Synthesize(rec models.Record, autoPool, manualPool []models.ExperienceSample, today time.Time) Result {
	res := Result{Record: rec.Clone()}
	if IsManual(rec) {
		res.Mode = ModeManual
		i.bindManual(&res, manualPool)
		return res
	}
	res.Mode = ModeAuto

	dobRaw := rec[models.FieldDOB]
	dob, err := helpers.ParseDate(dobRaw)
	if err != nil {
		res.Skipped = true
		res.Reason = fmt.Sprintf("invalid DOB '%s'", strings.TrimSpace(dobRaw))
		return res
	}

	today = helpers.Day(today)
	careerStart := i.careerStart(dob)
	if i.hasRunway(careerStart, today) {
		res.Strategy = StrategyForward
		res.Exp1, res.Exp2 = i.forward(careerStart, today)
		if !i.consistent(res.Exp1, res.Exp2, today) {
			res.Strategy = StrategyBackward
			res.Exp1, res.Exp2 = i.backward(today)
		}
	} else {
		res.Strategy = StrategyBackward
		res.Exp1, res.Exp2 = i.backward(today)
	}

	if len(autoPool) < 2 {
		res.Skipped = true
		res.Reason = fmt.Sprintf("could not sample experience: pool has %d entries, need 2", len(autoPool))
		return res
	}
	first, second := i.pickTwo(len(autoPool))
	bindSample(res.Record, 1, autoPool[first])
	bindSample(res.Record, 2, autoPool[second])
	res.Record[models.FieldExp1From] = helpers.FormatDate(res.Exp1.Start)
	res.Record[models.FieldExp1To] = helpers.FormatDate(res.Exp1.End)
	res.Record[models.FieldExp2From] = helpers.FormatDate(res.Exp2.Start)
	res.Record[models.FieldExp2To] = helpers.FormatDate(res.Exp2.End)
	return res
}

func (i *impl) bindManual(res *Result, manualPool []models.ExperienceSample) {
	for slot := 1; slot <= 2; slot++ {
		company := res.Record.Get(companyField(slot))
		sample, ok := findCompany(manualPool, company)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("company '%s' not found in manual pool", company))
			continue
		}
		res.Record[projectField(slot)] = sample.Project
		res.Record[fileField(slot)] = sample.FileName
	}
}

func findCompany(pool []models.ExperienceSample, company string) (models.ExperienceSample, bool) {
	for _, sample := range pool {
		if strings.TrimSpace(sample.Company) == company {
			return sample, true
		}
	}
	return models.ExperienceSample{}, false
}

func bindSample(rec models.Record, slot int, sample models.ExperienceSample) {
	rec[companyField(slot)] = sample.Company
	rec[projectField(slot)] = sample.Project
	if sample.FileName != "" {
		rec[fileField(slot)] = sample.FileName
	}
}

func (i *impl) careerStart(dob time.Time) time.Time {
	start := helpers.AddDate(dob, i.params.AdultAge, 0, 0)
	if start.Before(i.params.CareerFloor) {
		return i.params.CareerFloor
	}
	return start
}

// hasRunway: two minimum stints and the minimum gap fit between careerStart and today.
func (i *impl) hasRunway(careerStart, today time.Time) bool {
	years := float64(helpers.DaysBetween(careerStart, today)) / 365.0
	needed := float64(i.params.MinExpYears*2) + float64(i.params.MinGapMonths)/12.0
	return years >= needed
}

// forward builds the stints from the career start onwards. exp1 is shortened when it
// would not leave room for the minimum gap and a second stint before the limit, and the
// gap is drawn only from the values that still fit.
func (i *impl) forward(careerStart, today time.Time) (Interval, Interval) {
	limit := helpers.AddDays(today, -i.params.TodayBuffer)
	secondStintFrom := helpers.AddDays(limit, -minSecondStintDays)

	firstYear := helpers.DaysBetween(careerStart, helpers.AddDate(careerStart, 1, 0, 0))
	exp1Start := helpers.AddDays(careerStart, i.rnd.IntN(firstYear))
	exp1End := i.stintEnd(exp1Start, today)

	latestExp1End := helpers.AddDate(secondStintFrom, 0, -i.params.MinGapMonths, 0)
	if exp1End.After(latestExp1End) {
		exp1End = helpers.AddDays(latestExp1End, -i.rnd.IntN(clampSpreadDays+16))
	}

	maxGap := i.params.MaxGapMonths
	for maxGap > i.params.MinGapMonths && helpers.AddDate(exp1End, 0, maxGap, 0).After(secondStintFrom) {
		maxGap--
	}
	gap := i.between(i.params.MinGapMonths, maxGap)
	exp2Start := helpers.AddDate(exp1End, 0, gap, 0)
	exp2End := i.stintEnd(exp2Start, today)
	return Interval{Start: exp1Start, End: exp1End}, Interval{Start: exp2Start, End: exp2End}
}

// backward works from today: a fixed window split into exp1, a short gap and exp2.
func (i *impl) backward(today time.Time) (Interval, Interval) {
	gapDays := i.between(backwardMinGapDays, backwardMaxGapDays)
	maxExp2 := backwardWindowDays - gapDays - backwardMinStint
	var exp1Days, exp2Days int
	if maxExp2 < backwardMinStint {
		exp2Days = backwardWindowDays / 2
		exp1Days = backwardWindowDays - exp2Days - gapDays
	} else {
		exp2Days = i.between(backwardMinStint, maxExp2)
		exp1Days = backwardWindowDays - gapDays - exp2Days
	}
	exp2End := helpers.AddDays(today, -i.between(i.params.TodayBuffer, i.params.TodayBuffer+clampSpreadDays))
	exp2Start := helpers.AddDays(exp2End, -exp2Days)
	exp1End := helpers.AddDays(exp2Start, -gapDays)
	exp1Start := helpers.AddDays(exp1End, -exp1Days)
	return Interval{Start: exp1Start, End: exp1End}, Interval{Start: exp2Start, End: exp2End}
}

// stintEnd draws a 2-3 year (plus months and days) stint; an end too close to today is
// pulled back to a random day between the buffer and the buffer plus the clamp spread.
func (i *impl) stintEnd(start, today time.Time) time.Time {
	end := helpers.AddDate(start,
		i.between(i.params.MinExpYears, i.params.MaxExpYears),
		i.between(0, 11),
		i.between(0, 27))
	if end.After(helpers.AddDays(today, -i.params.TodayBuffer)) {
		end = helpers.AddDays(today, -i.between(i.params.TodayBuffer, i.params.TodayBuffer+clampSpreadDays))
	}
	return end
}

// consistent checks ordering, the today limit and the configured gap bounds.
func (i *impl) consistent(exp1, exp2 Interval, today time.Time) bool {
	limit := helpers.AddDays(today, -i.params.TodayBuffer)
	if !exp1.Start.Before(exp1.End) || !exp1.End.Before(exp2.Start) || !exp2.Start.Before(exp2.End) {
		return false
	}
	if exp2.End.After(limit) {
		return false
	}
	return !exp2.Start.Before(helpers.AddDate(exp1.End, 0, i.params.MinGapMonths, 0)) &&
		!exp2.Start.After(helpers.AddDate(exp1.End, 0, i.params.MaxGapMonths, 0))
}

// between returns a uniform integer in [lo, hi].
func (i *impl) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + i.rnd.IntN(hi-lo+1)
}

// pickTwo draws two distinct indexes below n without replacement.
func (i *impl) pickTwo(n int) (int, int) {
	first := i.rnd.IntN(n)
	second := i.rnd.IntN(n - 1)
	if second >= first {
		second++
	}
	return first, second
}

func companyField(slot int) string {
	if slot == 1 {
		return models.FieldExp1Company
	}
	return models.FieldExp2Company
}

func projectField(slot int) string {
	if slot == 1 {
		return models.FieldExp1Project
	}
	return models.FieldExp2Project
}

func fileField(slot int) string {
	if slot == 1 {
		return models.FieldExp1File
	}
	return models.FieldExp2File
}
