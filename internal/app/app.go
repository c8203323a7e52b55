// Package app wires concrete adapters behind the ports used by services.
package app

import (
	"km-report-service/internal/adapters/address"
	"km-report-service/internal/adapters/cache"
	"km-report-service/internal/adapters/device"
	"km-report-service/internal/adapters/distance"
	"km-report-service/internal/adapters/ledger"
	"km-report-service/internal/adapters/pdf"
	"km-report-service/internal/config"
	"km-report-service/internal/ports"
	"km-report-service/internal/services"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Env holds the settings read from the process environment.
type Env struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	OutputDir  string
	ADBPath    string
	ADBSerial  string
	ChromePath string
}

func EnvFromOS() Env {
	return Env{
		ConfigPath: config.Get("KM_CONFIG", "config.toml"),
		LogLevel:   config.Get("KM_LOG_LEVEL", "info"),
		LogFormat:  config.Get("KM_LOG_FORMAT", "text"),
		OutputDir:  config.Get("KM_OUTPUT_DIR", ""),
		ADBPath:    config.Get("ADB_PATH", "adb"),
		ADBSerial:  config.Get("ADB_SERIAL", ""),
		ChromePath: config.Get("CHROME_PATH", ""),
	}
}

// Folders are the ledger and page output directories under the output dir.
type Folders struct {
	Txt string
	Pdf string
}

func FoldersFor(outputDir string) Folders {
	return Folders{
		Txt: filepath.Join(outputDir, "kilometre_reports_txt"),
		Pdf: filepath.Join(outputDir, "kilometre_reports_pdf"),
	}
}

// NewPipeline builds a MonthPipeline over the device, Chrome and pdfcpu adapters.
func NewPipeline(cfg *config.Config, env Env, status ports.StatusSink, log logrus.FieldLogger) *services.MonthPipeline {
	if env.OutputDir != "" {
		cfg.Report.OutputDir = env.OutputDir
	}
	folders := FoldersFor(cfg.Report.OutputDir)
	normalizer := address.NewNormalizer(cfg.Address)

	dev := device.NewADBDevice(env.ADBPath, env.ADBSerial, log)
	reader := device.NewScheduleReader(dev, cfg.Device, log)
	browser := distance.NewGoogleMapsProvider(cfg.Mapping, env.ChromePath, log)

	renderer := services.NewReportRenderer(
		pdf.NewPDFWriter(cfg.Report.PageHeight, log),
		normalizer,
		cfg.Report.TemplatePath,
		folders.Pdf,
		services.HeaderFields{
			Obra:    cfg.Report.Obra,
			Vehicle: cfg.Report.Vehicle,
			Plate:   cfg.Report.Plate,
			Owner:   cfg.Report.Owner,
		},
		log.WithField("component", "renderer"),
	)

	return services.NewMonthPipeline(services.PipelineDeps{
		Reader:     reader,
		Browser:    browser,
		Normalizer: normalizer,
		Renderer:   renderer,
		Status:     status,
		Log:        log.WithField("component", "pipeline"),
		PrepareFolders: func() error {
			return ledger.PrepareFolders(folders.Txt, folders.Pdf)
		},
		NewLedger: func(year int, month time.Month) ports.Ledger {
			return ledger.NewFileLedger(filepath.Join(folders.Txt, ledger.FileName(year, month)))
		},
		NewLookup: func(p ports.DistanceProvider) services.DistanceLookup {
			return cache.NewDistanceLookup(p, log.WithField("component", "distance_cache"))
		},
	})
}
