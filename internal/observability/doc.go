// Package observability provides the event log, usage metrics, schedule
// alerting, and alert delivery for pdb. Events are persisted as JSON Lines
// (JSONL) and metrics are derived from them on demand.
package observability
