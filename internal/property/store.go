package property

import (
	"context"

	id "brokerdesk/pkg/domain"
)

// Filter narrows List results; zero-valued fields are ignored.
type Filter struct {
	Status       Status
	Municipality string
	Typology     string
}

type Store interface {
	Create(ctx context.Context, property *Property) error
	FindByID(ctx context.Context, propertyID id.PropertyID) (*Property, error)
	List(ctx context.Context, filter Filter) ([]*Property, error)
	Update(ctx context.Context, property *Property) error
}
