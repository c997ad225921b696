package config

import (
	"time"

	"keibacli/pkg/contracts"
)

// Application constants
const (
	AppName    = "keiba"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. KEIBA_PIPELINE_STRICT
	EnvPrefix = "KEIBA"

	DefaultLogLevel = "info"

	// File paths, relative to the working directory
	DefaultDataDir   = "data"
	DefaultOutputDir = "output"
	DefaultLogsDir   = "logs"
	DefaultHistoryDB = "data/history.db"

	DefaultMaxConcurrency = 4
	DefaultBatchTimeout   = 5 * time.Minute

	// Output file names
	FeaturesCSVName      = "features.csv"
	FeaturesWorkbookName = "features.xlsx"
	QualityReportName    = "quality_report.json"
)

// configLocations are searched in order when no config path is given
var configLocations = []string{
	"keiba.yaml",
	"configs/keiba.yaml",
}
