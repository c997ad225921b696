// Command keiba prepares horse-race records for modelling.
//
// It loads race records from .xlsx or .csv files, cleans them, checks their
// structure, describes their quality and derives the model feature set:
//
//	keiba run data/2024-05-26.xlsx          # full pipeline, writes output/features.csv
//	keiba clean data/2024-05-26.csv         # cleaning only
//	keiba validate data/2024-05-26.csv      # structural checks, exit 1 on violations
//	keiba report data/2024-05-26.csv        # quality report of the raw input
//	keiba batch data/                       # one batch per file, run concurrently
//	keiba batch card.csv --split-by race_id # one batch per race
//	keiba history                           # recent runs
//
// Logs are JSON on stderr; command results go to stdout.
package main
