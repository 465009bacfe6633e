package client

import (
	"context"

	clientsDomain "github.com/serenease/notify/clients/domain"
)

type IClientUsecase interface {
	Create(ctx context.Context, request CreateRequest) (*clientsDomain.Client, error)
	Update(ctx context.Context, request UpdateRequest) (*clientsDomain.Client, error)
	Delete(ctx context.Context, clientID string) error
	Get(ctx context.Context, clientID string) (*clientsDomain.Client, error)
	List(ctx context.Context) ([]*clientsDomain.Client, error)
}

type CreateRequest struct {
	DisplayName string   `json:"display_name" form:"display_name"`
	Email       string   `json:"email,omitempty" form:"email"`
	Phone       string   `json:"phone,omitempty" form:"phone"`
	BirthMonth  int      `json:"birth_month,omitempty" form:"birth_month"`
	Tags        []string `json:"tags,omitempty"`
	Notes       string   `json:"notes,omitempty" form:"notes"`
}

type UpdateRequest struct {
	ID          string   `json:"id" form:"id"`
	DisplayName string   `json:"display_name" form:"display_name"`
	Email       string   `json:"email,omitempty" form:"email"`
	Phone       string   `json:"phone,omitempty" form:"phone"`
	BirthMonth  int      `json:"birth_month,omitempty" form:"birth_month"`
	Active      bool     `json:"active" form:"active"`
	Tags        []string `json:"tags,omitempty"`
	Notes       string   `json:"notes,omitempty" form:"notes"`
}
