package key

import "context"

// UpdateFunc mutates a key entry inside the store's exclusion guard.
// Returning save=false leaves the persisted entry untouched.
type UpdateFunc func(k *LicenseKey) (save bool, err error)

// Repository is the persistence boundary for license keys. Implementations
// must serialize the read-modify-write sequence of Update against all other
// mutations of the same store.
type Repository interface {
	Create(ctx context.Context, k *LicenseKey) error
	Get(ctx context.Context, keyStr string) (*LicenseKey, error)
	Put(ctx context.Context, k *LicenseKey) error
	Delete(ctx context.Context, keyStr string) error
	List(ctx context.Context) ([]*LicenseKey, error)
	Update(ctx context.Context, keyStr string, fn UpdateFunc) (*LicenseKey, error)
}
