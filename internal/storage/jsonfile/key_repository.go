package jsonfile

import (
	"context"
	"fmt"
	"sync"

	"github.com/keymint/keymint-api/internal/domain/key"
	"github.com/keymint/keymint-api/internal/ierr"
	"go.uber.org/zap"
)

// KeyRepository maps key-string -> entry in a single JSON file. One mutex
// per store guards the whole read-modify-write sequence of every operation
// so concurrent requests cannot lose updates.
type KeyRepository struct {
	path    string
	sealKey []byte
	mu      sync.Mutex
	logger  *zap.Logger
}

func NewKeyRepository(path string, sealKey []byte, logger *zap.Logger) *KeyRepository {
	return &KeyRepository{
		path:    path,
		sealKey: sealKey,
		logger:  logger.Named("FileKeyRepository"),
	}
}

var _ key.Repository = (*KeyRepository)(nil)

func (r *KeyRepository) load() (map[string]*key.LicenseKey, error) {
	var m map[string]*key.LicenseKey
	if err := readStore(r.path, r.sealKey, &m); err != nil {
		return nil, err
	}
	for k, entry := range m {
		entry.Key = k
	}
	return m, nil
}

func (r *KeyRepository) Create(ctx context.Context, k *key.LicenseKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := m[k.Key]; ok {
		return fmt.Errorf("%w: key %s", ierr.ErrAlreadyExists, k.Key)
	}

	m[k.Key] = k
	if err := writeStore(r.path, r.sealKey, m); err != nil {
		return err
	}

	r.logger.Debug("Key stored", zap.String("key", k.Key), zap.String("product_id", k.ProductID))
	return nil
}

func (r *KeyRepository) Get(ctx context.Context, keyStr string) (*key.LicenseKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return nil, err
	}
	entry, ok := m[keyStr]
	if !ok {
		return nil, ierr.ErrKeyNotFound
	}

	cp := *entry
	return &cp, nil
}

func (r *KeyRepository) Put(ctx context.Context, k *key.LicenseKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return err
	}
	m[k.Key] = k
	return writeStore(r.path, r.sealKey, m)
}

func (r *KeyRepository) Delete(ctx context.Context, keyStr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := m[keyStr]; !ok {
		return ierr.ErrKeyNotFound
	}

	delete(m, keyStr)
	if err := writeStore(r.path, r.sealKey, m); err != nil {
		return err
	}

	r.logger.Debug("Key deleted", zap.String("key", keyStr))
	return nil
}

func (r *KeyRepository) List(ctx context.Context) ([]*key.LicenseKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return nil, err
	}

	keys := make([]*key.LicenseKey, 0, len(m))
	for _, entry := range m {
		cp := *entry
		keys = append(keys, &cp)
	}
	return keys, nil
}

func (r *KeyRepository) Update(ctx context.Context, keyStr string, fn key.UpdateFunc) (*key.LicenseKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return nil, err
	}
	entry, ok := m[keyStr]
	if !ok {
		return nil, ierr.ErrKeyNotFound
	}

	cp := *entry
	save, err := fn(&cp)
	if err != nil {
		return nil, err
	}
	if !save {
		return &cp, nil
	}

	m[keyStr] = &cp
	if err := writeStore(r.path, r.sealKey, m); err != nil {
		return nil, err
	}

	result := cp
	return &result, nil
}
