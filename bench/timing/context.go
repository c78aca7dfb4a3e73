package timing

import "context"

type scopeKey struct{}

type runIDKey struct{}

type scope struct {
	label string
	depth int
}

// enclosing returns the label of the block carried by ctx and the depth of a block nested in it.
func enclosing(ctx context.Context) (parent string, depth int) {
	s, ok := ctx.Value(scopeKey{}).(scope)
	if !ok {
		return "", 0
	}

	return s.label, s.depth + 1
}

// ContextWithRunID tags every measurement taken with the returned context with runID.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run id set by ContextWithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey{}).(string)

	return runID
}
