// Package retention archives the audit trail on a schedule.
//
// Events are never deleted; the system of record stays intact. The archiver
// exports events older than a configured age to timestamped JSONL files so
// long-lived deployments can ship cold audit data to external storage. The
// scheduler runs the archiver on a cron expression.
package retention
