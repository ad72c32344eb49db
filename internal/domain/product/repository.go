package product

import "context"

type Repository interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Product, error)
}
