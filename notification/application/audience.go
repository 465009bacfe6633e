package application

import (
	"context"
	"time"

	clientsDomain "github.com/serenease/notify/clients/domain"
	"github.com/serenease/notify/notification/domain"
)

// AudienceResolver evaluates an AudienceFilter against the client store.
// Resolution is a point-in-time snapshot: the planner captures the result
// once and membership never changes afterwards, whatever happens to client
// data mid-campaign.
type AudienceResolver struct {
	clients clientsDomain.IClientRepository
}

func NewAudienceResolver(clients clientsDomain.IClientRepository) *AudienceResolver {
	return &AudienceResolver{clients: clients}
}

// Resolve returns the active clients matching the filter as of the given
// instant.
func (r *AudienceResolver) Resolve(ctx context.Context, filter domain.AudienceFilter, asOf time.Time) ([]*clientsDomain.Client, error) {
	candidates, err := r.clients.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*clientsDomain.Client
	for _, c := range candidates {
		if filter.Matches(c, asOf) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}
