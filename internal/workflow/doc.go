// Package workflow coordinates queue draining: workers claim pending titles,
// run them through the processing pipeline, and record the outcome.
package workflow
