package document

import (
	"context"

	id "brokerdesk/pkg/domain"
)

// Store persists checklist slots. Implementations return sentinel errors.
type Store interface {
	Create(ctx context.Context, document *Document) error
	FindByID(ctx context.Context, documentID id.DocumentID) (*Document, error)
	ListByProcess(ctx context.Context, processID id.ProcessID) ([]*Document, error)
	Update(ctx context.Context, document *Document) error
}
