package domain

import "context"

// IClientRepository is the client store boundary the engine depends on.
type IClientRepository interface {
	InitSchema(ctx context.Context) error
	Create(ctx context.Context, client *Client) error
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Client, error)
	ListActive(ctx context.Context) ([]*Client, error)
	List(ctx context.Context) ([]*Client, error)
}
