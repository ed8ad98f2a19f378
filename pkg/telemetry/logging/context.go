package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// ActorKey is the context key for the acting user.
	ActorKey contextKey = "actor"

	// PolicyIDKey is the context key for the policy being executed.
	PolicyIDKey contextKey = "policy_id"

	// ForumIDKey is the context key for the forum in scope.
	ForumIDKey contextKey = "forum_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithActor adds the acting user to the context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// GetActor retrieves the acting user from the context.
func GetActor(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey).(string); ok {
		return v
	}
	return ""
}

// WithPolicyID adds a policy ID to the context.
func WithPolicyID(ctx context.Context, policyID string) context.Context {
	return context.WithValue(ctx, PolicyIDKey, policyID)
}

// GetPolicyID retrieves the policy ID from the context.
func GetPolicyID(ctx context.Context) string {
	if v, ok := ctx.Value(PolicyIDKey).(string); ok {
		return v
	}
	return ""
}

// WithForumID adds a forum ID to the context.
func WithForumID(ctx context.Context, forumID string) context.Context {
	return context.WithValue(ctx, ForumIDKey, forumID)
}

// GetForumID retrieves the forum ID from the context.
func GetForumID(ctx context.Context) string {
	if v, ok := ctx.Value(ForumIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextAttrs returns the log attributes present on the context as
// alternating key/value pairs suitable for slog calls.
func ContextAttrs(ctx context.Context) []any {
	var attrs []any
	if v := GetRequestID(ctx); v != "" {
		attrs = append(attrs, "request_id", v)
	}
	if v := GetActor(ctx); v != "" {
		attrs = append(attrs, "actor", v)
	}
	if v := GetPolicyID(ctx); v != "" {
		attrs = append(attrs, "policy_id", v)
	}
	if v := GetForumID(ctx); v != "" {
		attrs = append(attrs, "forum_id", v)
	}
	return attrs
}
