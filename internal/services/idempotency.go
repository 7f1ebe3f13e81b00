package services

import "context"

// IdempotencyStore remembers which order a client-supplied idempotency key produced.
type IdempotencyStore interface {
	// Claim reserves key. It returns false if the key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Remember records the order created under a claimed key.
	Remember(ctx context.Context, key, orderID string) error
	// Recall returns the order created under key, or "" while the claim is still in flight.
	Recall(ctx context.Context, key string) (string, error)
	// Release drops a claim so the key may be used again.
	Release(ctx context.Context, key string) error
}

func orderIdempotencyKey(userID, key string) string {
	return "idem:order:" + userID + ":" + key
}
