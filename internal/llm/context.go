package llm

import "context"

// purposeKey carries the request label recorded with each LLM event.
type purposeKey struct{}

// WithPurpose labels requests made with ctx, e.g. "outline".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown" when the
// caller did not set one.
func PurposeFrom(ctx context.Context) string {
	if purpose, ok := ctx.Value(purposeKey{}).(string); ok && purpose != "" {
		return purpose
	}
	return "unknown"
}
