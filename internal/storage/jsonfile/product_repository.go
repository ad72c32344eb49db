package jsonfile

import (
	"context"
	"fmt"
	"sync"

	"github.com/keymint/keymint-api/internal/domain/product"
	"github.com/keymint/keymint-api/internal/ierr"
	"go.uber.org/zap"
)

// ProductRepository maps product-name -> product in a single JSON file.
type ProductRepository struct {
	path    string
	sealKey []byte
	mu      sync.Mutex
	logger  *zap.Logger
}

func NewProductRepository(path string, sealKey []byte, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		path:    path,
		sealKey: sealKey,
		logger:  logger.Named("FileProductRepository"),
	}
}

var _ product.Repository = (*ProductRepository)(nil)

func (r *ProductRepository) load() (map[string]*product.Product, error) {
	var m map[string]*product.Product
	if err := readStore(r.path, r.sealKey, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := m[p.ID]; ok {
		return fmt.Errorf("%w: product %s", ierr.ErrAlreadyExists, p.ID)
	}

	m[p.ID] = p
	if err := writeStore(r.path, r.sealKey, m); err != nil {
		return err
	}

	r.logger.Debug("Product stored", zap.String("id", p.ID))
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return nil, err
	}
	p, ok := m[id]
	if !ok {
		return nil, ierr.ErrProductNotFound
	}

	cp := *p
	return &cp, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := m[id]; !ok {
		return ierr.ErrProductNotFound
	}

	delete(m, id)
	if err := writeStore(r.path, r.sealKey, m); err != nil {
		return err
	}

	r.logger.Debug("Product deleted", zap.String("id", id))
	return nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.load()
	if err != nil {
		return nil, err
	}

	products := make([]*product.Product, 0, len(m))
	for _, p := range m {
		cp := *p
		products = append(products, &cp)
	}
	return products, nil
}
