// Package logging configures structured logging for the governance engine.
//
// Logs are emitted through log/slog in JSON or text format. When redaction
// is enabled, string attribute values pass through a pattern-based redactor
// before they are written. Governance payloads routinely carry stakeholder
// emails, phone numbers, and payment references; redaction keeps those out
// of the log stream by default.
package logging
