// Package shared holds code used across the keiba packages that belongs to
// no single stage.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- BufferedSlogHandler, an slog.Handler that records log output for assertions
//	- RaceCard, a small raw race record table in the shape the loaders produce
//
// Example usage:
//
//	func TestClean(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    v := validation.NewValidator(validation.DefaultRules(), logger)
//	    _, err := v.Clean(testutil.RaceCard())
//	    require.NoError(t, err)
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "race data cleaned")
//	}
//
// Nothing in this package may import a pipeline stage.
package shared
