package reconciler

import "context"

// WithOptimisticUpdate runs an optimistic mutation: apply changes visible
// state immediately, action performs the network call, and revert restores
// the pre-apply state when the call fails.
//
// revert runs at most once, only after a failed action, and never after a
// success. On success the optimistic state stays in place; the caller may
// reconcile it with the authoritative result the action returned.
func WithOptimisticUpdate[T any](ctx context.Context, apply func(), revert func(), action func(context.Context) (T, error)) (T, error) {
	apply()
	result, err := action(ctx)
	if err != nil {
		revert()
		var zero T
		return zero, err
	}
	return result, nil
}
