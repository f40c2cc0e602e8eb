package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hr-docgen-backend/config"
	"hr-docgen-backend/lib/assembler"
	"hr-docgen-backend/lib/batch"
	"hr-docgen-backend/lib/docx"
)

func testConfig(root string) *config.Configuration {
	conf := &config.Configuration{}
	conf.Paths.MainData = filepath.Join(root, "MainData.xlsx")
	conf.Paths.ExpAuto = filepath.Join(root, "ExpAuto.xlsx")
	conf.Paths.ExpManual = filepath.Join(root, "ExpManual.xlsx")
	conf.Paths.Updated = filepath.Join(root, "Updated.xlsx")
	conf.Paths.OutputDir = filepath.Join(root, "output")
	conf.Paths.TempDir = filepath.Join(root, "temp")
	conf.Generation.Mode = "individual"
	conf.Generation.PlaceholderStyle = "square"
	conf.Experience.MinExpYears = 2
	conf.Experience.MaxExpYears = 3
	conf.Experience.MinGapMonths = 12
	conf.Experience.MaxGapMonths = 36
	conf.Experience.AdultAge = 18
	conf.Experience.TodayBuffer = 15
	conf.Experience.CareerFloor = "01-01-2016"
	return conf
}

func TestSettingsFromConfig(t *testing.T) {
	t.Run(`configuration maps onto settings`, func(t *testing.T) {
		settings, err := SettingsFromConfig(testConfig("/data"))
		require.Nil(t, err)
		require.Equal(t, assembler.ModeIndividual, settings.Mode)
		require.Equal(t, docx.SquareBrackets, settings.Syntax)
		require.False(t, settings.PDF)
		require.Equal(t, 2016, settings.Experience.CareerFloor.Year())
		require.Equal(t, filepath.Join("/data", "Updated.xlsx"), settings.Sources.Updated)
	})

	t.Run(`invalid values are rejected`, func(t *testing.T) {
		conf := testConfig("/data")
		conf.Generation.Mode = "zip"
		_, err := SettingsFromConfig(conf)
		require.NotNil(t, err)

		conf = testConfig("/data")
		conf.Experience.CareerFloor = "2015-01-01"
		_, err = SettingsFromConfig(conf)
		require.NotNil(t, err)
	})
}

func TestStart(t *testing.T) {
	t.Run(`bad mode override does not start a run`, func(t *testing.T) {
		settings, err := SettingsFromConfig(testConfig(t.TempDir()))
		require.Nil(t, err)
		gen := NewInstance(context.Background(), settings, nil, nil)
		_, err = gen.Start(StartOptions{Mode: "zip"})
		require.NotNil(t, err)
		require.Nil(t, gen.Latest())
	})

	t.Run(`missing dataset ends in a failed run`, func(t *testing.T) {
		root := t.TempDir()
		settings, err := SettingsFromConfig(testConfig(root))
		require.Nil(t, err)
		gen := NewInstance(context.Background(), settings, nil, nil)
		run, err := gen.Start(StartOptions{})
		require.Nil(t, err)
		gen.Wait()
		require.Equal(t, batch.StateFailed, run.State())
		require.Equal(t, run, gen.Get(run.ID))
		_, statErr := os.Stat(settings.OutputDir)
		require.True(t, os.IsNotExist(statErr))
	})
}
