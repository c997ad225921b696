// Package features derives model features from cleaned race records and
// converts a fixed catalogue of numeric columns to deviation scores.
//
// Derivation runs as a fixed sequence of stages: months, temporal
// combinations, past positions, performance composites, physical, race
// condition and interaction. Each feature is a rule naming the columns it
// requires; when one is absent the feature is skipped, never an error.
// Rules within a stage read the table as it stood when the stage began.
//
// The last step is DeviationScore:
//
//	score = (value - mean) / std * 10 + 50
//
// computed per race when the table has a race_id column and over the whole
// table otherwise. Undefined scores are exactly 50.
package features
