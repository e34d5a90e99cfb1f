package queries

import (
	"context"
	"fmt"
	"time"

	empireApp "github.com/andrescamacho/imperium/internal/application/empire"
	"github.com/andrescamacho/imperium/internal/application/ledger/services"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
)

// GetCreditHistoryQuery represents a query for the actor's recent transactions
type GetCreditHistoryQuery struct {
	Actor string
	Limit int
}

// GetCreditHistoryResponse represents the result of the query
type GetCreditHistoryResponse struct {
	Balance      int64
	Transactions []*TransactionDTO
}

// TransactionDTO represents a transaction data transfer object
type TransactionDTO struct {
	ID                string    `json:"id"`
	Sequence          int64     `json:"sequence"`
	CreatedAt         time.Time `json:"createdAt"`
	Type              string    `json:"type"`
	Category          string    `json:"category"`
	Amount            int64     `json:"amount"`
	BalanceBefore     int64     `json:"balanceBefore"`
	BalanceAfter      int64     `json:"balanceAfter"`
	Note              string    `json:"note,omitempty"`
	RelatedEntityType string    `json:"relatedEntityType,omitempty"`
	RelatedEntityID   string    `json:"relatedEntityId,omitempty"`
}

// GetCreditHistoryHandler handles the GetCreditHistory query
type GetCreditHistoryHandler struct {
	resolver *empireApp.Resolver
	ledger   *services.LedgerService
}

// NewGetCreditHistoryHandler creates a new GetCreditHistoryHandler
func NewGetCreditHistoryHandler(resolver *empireApp.Resolver, ledgerService *services.LedgerService) *GetCreditHistoryHandler {
	return &GetCreditHistoryHandler{resolver: resolver, ledger: ledgerService}
}

// Handle executes the GetCreditHistory query
func (h *GetCreditHistoryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetCreditHistoryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetCreditHistoryQuery")
	}

	e, err := h.resolver.ResolveEmpire(ctx, query.Actor)
	if err != nil {
		return nil, err
	}

	transactions, err := h.ledger.History(ctx, e.ID(), query.Limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]*TransactionDTO, len(transactions))
	for i, tx := range transactions {
		dtos[i] = ToTransactionDTO(tx)
	}

	return &GetCreditHistoryResponse{
		Balance:      e.Credits(),
		Transactions: dtos,
	}, nil
}

// ToTransactionDTO converts a domain transaction for transport
func ToTransactionDTO(tx *ledger.Transaction) *TransactionDTO {
	ref := tx.Reference()
	return &TransactionDTO{
		ID:                tx.ID().String(),
		Sequence:          tx.Sequence(),
		CreatedAt:         tx.CreatedAt(),
		Type:              tx.TransactionType().String(),
		Category:          tx.Category().String(),
		Amount:            tx.Amount(),
		BalanceBefore:     tx.BalanceBefore(),
		BalanceAfter:      tx.BalanceAfter(),
		Note:              tx.Note(),
		RelatedEntityType: ref.EntityType,
		RelatedEntityID:   ref.EntityID,
	}
}
