package usecase

import (
	"context"

	"github.com/google/uuid"
	clientsDomain "github.com/serenease/notify/clients/domain"
	domainClient "github.com/serenease/notify/domains/client"
	"github.com/serenease/notify/validations"
)

type serviceClient struct {
	clients clientsDomain.IClientRepository
}

func NewClientService(clients clientsDomain.IClientRepository) domainClient.IClientUsecase {
	return &serviceClient{clients: clients}
}

func (service *serviceClient) Create(ctx context.Context, request domainClient.CreateRequest) (*clientsDomain.Client, error) {
	if err := validations.ValidateCreateClient(ctx, request); err != nil {
		return nil, err
	}

	client := &clientsDomain.Client{
		ID:          uuid.NewString(),
		DisplayName: request.DisplayName,
		Email:       request.Email,
		Phone:       request.Phone,
		BirthMonth:  request.BirthMonth,
		Active:      true,
		Tags:        request.Tags,
		Notes:       request.Notes,
	}
	if err := service.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (service *serviceClient) Update(ctx context.Context, request domainClient.UpdateRequest) (*clientsDomain.Client, error) {
	if err := validations.ValidateUpdateClient(ctx, request); err != nil {
		return nil, err
	}

	client, err := service.clients.GetByID(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	client.DisplayName = request.DisplayName
	client.Email = request.Email
	client.Phone = request.Phone
	client.BirthMonth = request.BirthMonth
	client.Active = request.Active
	client.Tags = request.Tags
	client.Notes = request.Notes
	if err := service.clients.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (service *serviceClient) Delete(ctx context.Context, clientID string) error {
	return service.clients.Delete(ctx, clientID)
}

func (service *serviceClient) Get(ctx context.Context, clientID string) (*clientsDomain.Client, error) {
	return service.clients.GetByID(ctx, clientID)
}

func (service *serviceClient) List(ctx context.Context) ([]*clientsDomain.Client, error) {
	return service.clients.List(ctx)
}
