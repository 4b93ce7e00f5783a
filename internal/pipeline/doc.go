// Package pipeline runs the stages of an employee discovery run in order.
//
// Each stage is a Step that reads and extends a model.Run: importing hit
// and record files, crawling the company website, extracting candidates,
// reading image metadata, merging, validating names, verifying links,
// persisting and writing reports. DefaultPipeline wires the standard
// sequence from a config.Config.
//
// A BatchProcessor runs one pipeline per company with bounded concurrency.
package pipeline
