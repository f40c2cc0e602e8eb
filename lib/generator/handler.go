package generator

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"hr-docgen-backend/config"
	"hr-docgen-backend/lib/assembler"
	"hr-docgen-backend/lib/batch"
	"hr-docgen-backend/lib/docx"
	"hr-docgen-backend/lib/experience"
	pdfexport "hr-docgen-backend/lib/export/pdf"
	"hr-docgen-backend/lib/utils/helpers"
)

// Settings is everything a batch needs besides its collaborators.
type Settings struct {
	Sources     batch.Sources
	Templates   assembler.TemplateSet
	OutputDir   string
	TempDir     string
	Mode        assembler.Mode
	PDF         bool
	Syntax      docx.Syntax
	Experience  experience.Params
	Seed        uint64
	ConvWorkers int
}

// StartOptions override Settings for one run.
type StartOptions struct {
	PDF           *bool
	Mode          string
	Seed          uint64
	SynthesisOnly bool
}

type Provider interface {
	Start(opts StartOptions) (*batch.Run, error)
	Latest() *batch.Run
	Get(id string) *batch.Run
	// Wait blocks until the background runs have finished.
	Wait()
}

var Instance Provider

// NewHandler builds Instance from the loaded configuration.
func NewHandler(ctx context.Context, uploader batch.Uploader) {
	settings, err := SettingsFromConfig(config.Conf)
	if err != nil {
		panic(err)
	}
	converter := pdfexport.NewLibreOffice(config.Conf.Converter.Binary, config.Conf.ConverterTimeout())
	Instance = NewInstance(ctx, settings, converter, uploader)
}

func SettingsFromConfig(conf *config.Configuration) (Settings, error) {
	mode, err := assembler.ParseMode(conf.Generation.Mode)
	if err != nil {
		return Settings{}, err
	}
	syntax, err := docx.SyntaxByName(conf.Generation.PlaceholderStyle)
	if err != nil {
		return Settings{}, err
	}
	params := experience.DefaultParams()
	params.MinExpYears = conf.Experience.MinExpYears
	params.MaxExpYears = conf.Experience.MaxExpYears
	params.MinGapMonths = conf.Experience.MinGapMonths
	params.MaxGapMonths = conf.Experience.MaxGapMonths
	params.AdultAge = conf.Experience.AdultAge
	params.TodayBuffer = conf.Experience.TodayBuffer
	if conf.Experience.CareerFloor != "" {
		floor, err := helpers.ParseDate(conf.Experience.CareerFloor)
		if err != nil {
			return Settings{}, errors.Wrap(err, "invalid career floor date")
		}
		params.CareerFloor = floor
	}
	return Settings{
		Sources: batch.Sources{
			MainData:  conf.Paths.MainData,
			ExpAuto:   conf.Paths.ExpAuto,
			ExpManual: conf.Paths.ExpManual,
			Updated:   conf.Paths.Updated,
		},
		Templates: assembler.TemplateSet{
			CVFolder:            conf.Paths.CVFolder,
			Exp1Folder:          conf.Paths.Exp1Folder,
			Exp2Folder:          conf.Paths.Exp2Folder,
			CertificateFolder:   conf.Paths.CertificateFolder,
			CertificateTemplate: conf.Paths.CertificateTemplate,
		},
		OutputDir:   conf.Paths.OutputDir,
		TempDir:     conf.Paths.TempDir,
		Mode:        mode,
		PDF:         conf.Generation.PDF != nil && *conf.Generation.PDF,
		Syntax:      syntax,
		Experience:  params,
		Seed:        conf.Experience.Seed,
		ConvWorkers: conf.Converter.Workers,
	}, nil
}

func NewInstance(ctx context.Context, settings Settings, converter pdfexport.Converter, uploader batch.Uploader) Provider {
	return &impl{
		ctx:       ctx,
		settings:  settings,
		converter: converter,
		uploader:  uploader,
		registry:  batch.NewRegistry(),
	}
}

type impl struct {
	ctx       context.Context
	settings  Settings
	converter pdfexport.Converter
	uploader  batch.Uploader
	registry  *batch.Registry
}

func (i *impl) Start(opts StartOptions) (*batch.Run, error) {
	mode := i.settings.Mode
	if opts.Mode != "" {
		parsed, err := assembler.ParseMode(opts.Mode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}
	pdf := i.settings.PDF
	if opts.PDF != nil {
		pdf = *opts.PDF
	}
	seed := i.settings.Seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}

	asm := assembler.NewInstance(i.settings.Templates, assembler.Options{
		Mode:      mode,
		PDF:       pdf,
		Syntax:    i.settings.Syntax,
		OutputDir: i.settings.OutputDir,
		TempDir:   i.settings.TempDir,
		Workers:   i.settings.ConvWorkers,
	}, i.converter)
	orchestrator := batch.NewOrchestrator(i.settings.Sources, experience.NewSeeded(i.settings.Experience, seed), asm)
	if i.uploader != nil {
		orchestrator.WithUploader(i.uploader)
	}
	job := orchestrator.Job()
	if opts.SynthesisOnly {
		job = orchestrator.SynthesisJob()
	}

	run, err := i.registry.Start(i.ctx, job)
	if err != nil {
		return run, err
	}
	log.WithFields(log.Fields{
		"run_id": run.ID,
		"mode":   mode,
		"pdf":    pdf,
		"synth":  opts.SynthesisOnly,
	}).Info("batch started")
	return run, nil
}

func (i *impl) Latest() *batch.Run {
	return i.registry.Latest()
}

func (i *impl) Get(id string) *batch.Run {
	return i.registry.Get(id)
}

func (i *impl) Wait() {
	i.registry.Wait()
}
