// Package operations runs record batches through the data preparation steps.
//
// A batch is one independent table of race records, usually one input file
// or one race split out of a file. Each batch passes through the registered
// steps in dependency order:
//
//	load -> clean -> quality -> validate -> derive
//
// Core Components:
//
// Manager: executes a batch step by step, tracking a StepState for every
// step. Cancellation and the per-batch timeout are checked between steps.
// RunBatches executes independent batches concurrently with a bounded
// errgroup.
//
// Step: one unit of work. Steps share a BatchState: the load step stores the
// raw table, the clean step the cleaned table, and so on.
//
// Registry: holds the steps and orders them by their dependencies.
//
// OperationTracer: OpenTelemetry spans per batch and step plus the pipeline
// counters (rows in and out, drops by reason, violations by kind).
//
// In strict mode a batch whose structural validation fails is rejected
// before feature engineering; otherwise violations are logged and the batch
// continues.
//
// Example usage:
//
//	registry, err := operations.NewPipelineRegistry(validator, engineer, logger)
//	if err != nil {
//		return err
//	}
//	manager := operations.NewManager(registry, operations.ConfigFrom(cfg.Pipeline), logger)
//	res, err := manager.Execute(ctx, operations.BatchRequest{
//		Label:  "2024-05-26.xlsx",
//		Source: dataprocessing.NewFileSource("data/2024-05-26.xlsx", logger),
//	})
package operations
