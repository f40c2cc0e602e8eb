package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"hr-docgen-backend/lib/assembler"
	"hr-docgen-backend/lib/experience"
	"hr-docgen-backend/lib/metrics"
	recordstore "hr-docgen-backend/lib/record-store"
	"hr-docgen-backend/lib/utils/helpers"
	"hr-docgen-backend/models"
)

// Sources are the workbooks a batch reads and writes.
type Sources struct {
	MainData  string
	ExpAuto   string
	ExpManual string
	Updated   string
}

// Uploader mirrors an output file somewhere else.
type Uploader interface {
	UploadFile(ctx context.Context, path string) error
}

// Orchestrator runs the whole pipeline for a dataset: synthesis, persistence of the
// updated dataset, then document assembly row by row.
type Orchestrator struct {
	sources     Sources
	synthesizer experience.Provider
	assembler   assembler.Provider
	uploader    Uploader
	now         func() time.Time
}

func NewOrchestrator(sources Sources, synthesizer experience.Provider, asm assembler.Provider) *Orchestrator {
	return &Orchestrator{
		sources:     sources,
		synthesizer: synthesizer,
		assembler:   asm,
		now:         time.Now,
	}
}

// WithUploader mirrors every produced file through u. Upload errors are row warnings.
func (o *Orchestrator) WithUploader(u Uploader) *Orchestrator {
	o.uploader = u
	return o
}

// WithClock replaces the clock used as "today" by the synthesizer.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Job adapts the full pipeline to the registry.
func (o *Orchestrator) Job() Job {
	return o.Execute
}

// SynthesisJob runs only the synthesis step and stores the updated dataset.
func (o *Orchestrator) SynthesisJob() Job {
	return func(ctx context.Context, run *Run) (Summary, error) {
		_, summary, _, err := o.Synthesize(ctx, run)
		return summary, err
	}
}

func (o *Orchestrator) Execute(ctx context.Context, run *Run) (Summary, error) {
	ds, synthesized, skipped, err := o.Synthesize(ctx, run)
	if err != nil {
		return synthesized, err
	}

	summary := Summary{Total: synthesized.Total}
	run.Logf("[Step 2] Generating documents for %d rows", ds.Len()-len(skipped))
	for idx, rec := range ds.Rows {
		if helpers.IsContextDone(ctx) {
			return summary, errors.New("batch cancelled")
		}
		row := idx + 1
		if res, ok := skipped[row]; ok {
			summary.Add(res)
			continue
		}
		res := o.assembleRow(ctx, run, rec, row)
		metrics.RowsProcessed.WithLabelValues(string(res.Outcome)).Inc()
		summary.Add(res)
	}
	return summary, nil
}

// Synthesize loads the dataset and the pools, fills the experience fields and writes the
// updated dataset. The summary has one entry per row; rows that cannot be synthesized are
// also returned in skipped.
func (o *Orchestrator) Synthesize(ctx context.Context, run *Run) (models.Dataset, Summary, map[int]RowResult, error) {
	summary := Summary{}
	skipped := map[int]RowResult{}

	run.Logf("Loading dataset %s", o.sources.MainData)
	ds, err := recordstore.NewInstance(o.sources.MainData).Read()
	if err != nil {
		return ds, summary, skipped, errors.Wrap(err, "dataset unreadable")
	}
	summary.Total = ds.Len()

	autoPool, manualPool, err := o.loadPools(run)
	if err != nil {
		return ds, summary, skipped, err
	}

	run.Logf("[Step 1] Synthesizing experience for %d rows", ds.Len())
	today := o.now()
	for idx, rec := range ds.Rows {
		row := idx + 1
		res := o.synthesizer.Synthesize(rec, autoPool, manualPool, today)
		for _, w := range res.Warnings {
			run.Logf("[Row %d] warning: %s", row, w)
		}
		if res.Skipped {
			run.Logf("[Row %d] skipped: %s", row, res.Reason)
			result := RowResult{Row: row, Name: rec.CandidateName(), Outcome: OutcomeSkipped, Reason: res.Reason, Warnings: res.Warnings}
			skipped[row] = result
			summary.Add(result)
			metrics.RowsProcessed.WithLabelValues(string(OutcomeSkipped)).Inc()
			continue
		}
		ds.Rows[idx] = res.Record
		summary.Add(RowResult{Row: row, Name: rec.CandidateName(), Outcome: OutcomeProcessed, Warnings: res.Warnings})
		if res.Mode == experience.ModeAuto {
			run.Logf("[Row %d] %s experience %s..%s, %s..%s", row, res.Strategy,
				helpers.FormatDate(res.Exp1.Start), helpers.FormatDate(res.Exp1.End),
				helpers.FormatDate(res.Exp2.Start), helpers.FormatDate(res.Exp2.End))
		}
	}

	ds.EnsureColumns(models.SynthesizedFields...)
	if err := recordstore.NewInstance(o.sources.Updated).Write(ctx, ds); err != nil {
		return ds, summary, skipped, errors.Wrap(err, "unable to save updated dataset")
	}
	run.Logf("Updated dataset saved at %s", o.sources.Updated)
	return ds, summary, skipped, nil
}

// loadPools fails only when neither pool can be used.
func (o *Orchestrator) loadPools(run *Run) (autoPool, manualPool []models.ExperienceSample, err error) {
	autoPool, autoErr := recordstore.ReadSamples(o.sources.ExpAuto)
	manualPool, manualErr := recordstore.ReadSamples(o.sources.ExpManual)
	problem := func(err error, pool []models.ExperienceSample) string {
		if err != nil {
			return err.Error()
		}
		if len(pool) == 0 {
			return "pool is empty"
		}
		return ""
	}
	autoProblem, manualProblem := problem(autoErr, autoPool), problem(manualErr, manualPool)
	if autoProblem != "" && manualProblem != "" {
		return nil, nil, errors.Errorf("no usable experience pool: auto: %s; manual: %s", autoProblem, manualProblem)
	}
	if autoProblem != "" {
		run.Logf("warning: auto experience pool unusable: %s", autoProblem)
	}
	if manualProblem != "" {
		run.Logf("warning: manual experience pool unusable: %s", manualProblem)
	}
	return autoPool, manualPool, nil
}

func (o *Orchestrator) assembleRow(ctx context.Context, run *Run, rec models.Record, row int) (res RowResult) {
	res = RowResult{Row: row, Name: rec.CandidateName()}
	defer func() {
		if p := recover(); p != nil {
			res.Outcome = OutcomeFailed
			res.Reason = fmt.Sprintf("unexpected failure: %v", p)
			run.Logf("[Row %d] failed: %s", row, res.Reason)
		}
	}()

	run.Logf("[Row %d] Preparing documents for %s", row, displayName(res.Name))
	bundle, err := o.assembler.Assemble(ctx, rec, row)
	for _, w := range bundle.Warnings {
		run.Logf("[Row %d] warning: %s", row, w)
	}
	res.Warnings = bundle.Warnings
	if err != nil {
		res.Reason = err.Error()
		if errors.Is(err, assembler.ErrEmptyBundle) {
			res.Outcome = OutcomeSkipped
			run.Logf("[Row %d] skipped: %s", row, res.Reason)
		} else {
			res.Outcome = OutcomeFailed
			run.Logf("[Row %d] failed: %s", row, res.Reason)
		}
		return res
	}

	res.Outcome = OutcomeProcessed
	res.Files = bundle.Files
	if o.uploader != nil {
		for _, path := range bundle.Files {
			if err := o.uploader.UploadFile(ctx, path); err != nil {
				w := errors.Wrapf(err, "upload of %s failed", path).Error()
				res.Warnings = append(res.Warnings, w)
				run.Logf("[Row %d] warning: %s", row, w)
			}
		}
	}
	run.Logf("[Row %d] done: %s", row, strings.Join(bundle.Files, ", "))
	return res
}

func displayName(name string) string {
	if name == "" {
		return "unnamed candidate"
	}
	return name
}
