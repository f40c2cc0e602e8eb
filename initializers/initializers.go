package initializers

import (
	"context"

	"hr-docgen-backend/config"
	"hr-docgen-backend/fiberlog"
	"hr-docgen-backend/lib/batch"
	"hr-docgen-backend/lib/certificate"
	xlsexport "hr-docgen-backend/lib/export/xls"
	filestorage "hr-docgen-backend/lib/file-storage"
	"hr-docgen-backend/lib/generator"
	tempcleaner "hr-docgen-backend/lib/temp-cleaner"
	initchecker "hr-docgen-backend/lib/utils/init-checker"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	xlsexport.NewHandler()
	certificate.NewHandler(config.Conf.Paths.SpecimenDir, config.Conf.Paths.Exp1Folder, config.Conf.Paths.ExpManual)
	generator.NewHandler(ctx, outputUploader(ctx))
	initchecker.CheckInit(
		"xlsexport", xlsexport.Instance,
		"certificate", certificate.Instance,
		"generator", generator.Instance,
	)
}

// InitWorkers starts the background maintenance of the long running server.
func InitWorkers(ctx context.Context) {
	tempcleaner.StartWorker(ctx, config.Conf.Paths.TempDir, config.Conf.CleanupInterval(), config.Conf.CleanupMaxAge())
}

// outputUploader returns the object storage uploader, nil when S3 is off or unreachable.
func outputUploader(ctx context.Context) batch.Uploader {
	if config.Conf.S3.Enabled == nil || !*config.Conf.S3.Enabled {
		return nil
	}
	if !InitS3(ctx) {
		return nil
	}
	return filestorage.Instance
}
