package services

import (
	"context"

	"github.com/budgetbook/backend/internal/core/domain"
	"github.com/budgetbook/backend/internal/dto"
)

// TransferSvcFacade moves funds between two of the owner's accounts as one
// logical operation: both legs share a timestamp and a category and either
// both commit or neither does.
type TransferSvcFacade interface {
	Transfer(ctx context.Context, ownerID string, req dto.TransferRequest) (withdrawal, deposit *domain.Transaction, err error)
}
