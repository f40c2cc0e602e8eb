package config

import (
	"time"

	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr string `default:"" env:"APP_HOST"`
		Port       int    `default:"8080"  env:"APP_PORT"`
		BodyLimit  int64  `default:"10485760" env:"APP_BODY_LIMIT"`
	}
	Paths struct {
		MainData            string `default:"./data/MainData.xlsx" env:"MAIN_DATA_PATH"`
		ExpAuto             string `default:"./data/ExpAuto.xlsx" env:"EXP_AUTO_PATH"`
		ExpManual           string `default:"./data/ExpManual.xlsx" env:"EXP_MANUAL_PATH"`
		Updated             string `default:"./data/MainData_Updated.xlsx" env:"UPDATED_PATH"`
		CVFolder            string `default:"./data/cv_templates" env:"CV_FOLDER"`
		Exp1Folder          string `default:"./data/experience/Exp1" env:"EXP1_FOLDER"`
		Exp2Folder          string `default:"./data/experience/Exp2" env:"EXP2_FOLDER"`
		CertificateFolder   string `default:"./data/ccc" env:"CCC_FOLDER"`
		CertificateTemplate string `default:"./data/ccc_template.docx" env:"CCC_TEMPLATE"`
		SpecimenDir         string `default:"./data/NEWW/Specimen" env:"SPECIMEN_DIR"`
		OutputDir           string `default:"./data/output" env:"OUTPUT_DIR"`
		TempDir             string `default:"./temp" env:"TEMP_DIR"`
	}
	Generation struct {
		Mode             string `default:"merge" env:"GENERATION_MODE"` // merge | individual
		PDF              *bool  `default:"false" env:"GENERATION_PDF"`
		PlaceholderStyle string `default:"angle" env:"PLACEHOLDER_STYLE"` // angle | square
	}
	Experience struct {
		MinExpYears  int    `default:"2" env:"MIN_EXP_YEARS"`
		MaxExpYears  int    `default:"3" env:"MAX_EXP_YEARS"`
		MinGapMonths int    `default:"12" env:"MIN_GAP_MONTHS"`
		MaxGapMonths int    `default:"36" env:"MAX_GAP_MONTHS"`
		AdultAge     int    `default:"18" env:"ADULT_AGE"`
		CareerFloor  string `default:"01-01-2015" env:"CAREER_FLOOR"`
		TodayBuffer  int    `default:"15" env:"TODAY_BUFFER_DAYS"`
		Seed         uint64 `default:"0" env:"EXPERIENCE_SEED"` // 0 - seeded from clock
	}
	Converter struct {
		Binary     string `default:"" env:"SOFFICE_BIN"`
		TimeoutSec int    `default:"120" env:"CONVERTER_TIMEOUT_SEC"`
		Workers    int    `default:"2" env:"CONVERTER_WORKERS"`
	}
	Cleanup struct {
		IntervalMin int `default:"60" env:"CLEANUP_INTERVAL_MIN"`
		MaxAgeHours int `default:"6" env:"CLEANUP_MAX_AGE_HOURS"`
	}
	S3 struct {
		Enabled         *bool  `default:"false" env:"S3_ENABLED"`
		Endpoint        string `default:"" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"" env:"S3_SECRET_ACCESS_KEY"`
		BucketName      string `default:"generated-docs" env:"S3_BUCKET_NAME"`
		UseSSL          *bool  `default:"false" env:"S3_USE_SSL"`
	}
	Metrics struct {
		Enabled *bool `default:"true" env:"METRICS_ENABLED"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}

func (c *Configuration) CleanupInterval() time.Duration {
	if c.Cleanup.IntervalMin <= 0 {
		return time.Hour
	}
	return time.Duration(c.Cleanup.IntervalMin) * time.Minute
}

func (c *Configuration) CleanupMaxAge() time.Duration {
	if c.Cleanup.MaxAgeHours <= 0 {
		return 6 * time.Hour
	}
	return time.Duration(c.Cleanup.MaxAgeHours) * time.Hour
}

func (c *Configuration) ConverterTimeout() time.Duration {
	if c.Converter.TimeoutSec <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.Converter.TimeoutSec) * time.Second
}
