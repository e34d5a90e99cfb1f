package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Append persists a new transaction. Rows are never updated afterwards.
func (r *GormTransactionRepository) Append(ctx context.Context, transaction *ledger.Transaction) error {
	model := r.transactionToModel(transaction)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to append transaction: %w", result.Error)
	}

	return nil
}

// NextSequence returns max(sequence)+1 for the empire
func (r *GormTransactionRepository) NextSequence(ctx context.Context, empireID shared.EmpireID) (int64, error) {
	var last sql.NullInt64
	row := r.db.WithContext(ctx).
		Model(&CreditTransactionModel{}).
		Where("empire_id = ?", empireID.Value()).
		Select("MAX(sequence)").
		Row()
	if err := row.Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to read ledger sequence: %w", err)
	}
	return last.Int64 + 1, nil
}

// FindByEmpire retrieves transactions for an empire with optional filtering
func (r *GormTransactionRepository) FindByEmpire(ctx context.Context, empireID shared.EmpireID, opts ledger.QueryOptions) ([]*ledger.Transaction, error) {
	query := r.db.WithContext(ctx).Where("empire_id = ?", empireID.Value())

	// Apply filters
	query = r.applyFilters(query, opts)

	// Sequence is the creation order within one empire
	if opts.Ascending {
		query = query.Order("sequence ASC")
	} else {
		query = query.Order("sequence DESC")
	}

	// Apply pagination
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var models []CreditTransactionModel
	result := query.Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", result.Error)
	}

	// Convert models to domain entities
	transactions := make([]*ledger.Transaction, len(models))
	for i := range models {
		tx, err := r.modelToTransaction(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert transaction model: %w", err)
		}
		transactions[i] = tx
	}

	return transactions, nil
}

// CountByEmpire returns the count of transactions matching the criteria
func (r *GormTransactionRepository) CountByEmpire(ctx context.Context, empireID shared.EmpireID, opts ledger.QueryOptions) (int, error) {
	query := r.db.WithContext(ctx).Model(&CreditTransactionModel{}).Where("empire_id = ?", empireID.Value())

	// Apply filters
	query = r.applyFilters(query, opts)

	var count int64
	result := query.Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", result.Error)
	}

	return int(count), nil
}

// applyFilters applies query options to a GORM query
func (r *GormTransactionRepository) applyFilters(query *gorm.DB, opts ledger.QueryOptions) *gorm.DB {
	if opts.Category != nil {
		query = query.Where("category = ?", opts.Category.String())
	}
	if opts.TransactionType != nil {
		query = query.Where("transaction_type = ?", opts.TransactionType.String())
	}
	if opts.RelatedEntityID != nil {
		query = query.Where("related_entity_id = ?", *opts.RelatedEntityID)
	}
	return query
}

// modelToTransaction converts database model to domain entity
func (r *GormTransactionRepository) modelToTransaction(model *CreditTransactionModel) (*ledger.Transaction, error) {
	id, err := ledger.ParseTransactionID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction ID in database: %w", err)
	}

	empireID, err := shared.NewEmpireID(model.EmpireID)
	if err != nil {
		return nil, fmt.Errorf("invalid empire ID in database: %w", err)
	}

	transactionType, err := ledger.ParseTransactionType(model.TransactionType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type in database: %w", err)
	}

	category, err := ledger.ParseCategory(model.Category)
	if err != nil {
		return nil, fmt.Errorf("invalid category in database: %w", err)
	}

	return ledger.ReconstructTransaction(
		id,
		empireID,
		model.Sequence,
		model.CreatedAt,
		transactionType,
		category,
		model.Amount,
		model.BalanceBefore,
		model.BalanceAfter,
		model.Note,
		ledger.Reference{EntityType: model.RelatedEntityType, EntityID: model.RelatedEntityID},
	), nil
}

// transactionToModel converts domain entity to database model
func (r *GormTransactionRepository) transactionToModel(tx *ledger.Transaction) *CreditTransactionModel {
	ref := tx.Reference()
	return &CreditTransactionModel{
		ID:                tx.ID().String(),
		EmpireID:          tx.EmpireID().Value(),
		Sequence:          tx.Sequence(),
		CreatedAt:         tx.CreatedAt(),
		TransactionType:   tx.TransactionType().String(),
		Category:          tx.Category().String(),
		Amount:            tx.Amount(),
		BalanceBefore:     tx.BalanceBefore(),
		BalanceAfter:      tx.BalanceAfter(),
		Note:              tx.Note(),
		RelatedEntityType: ref.EntityType,
		RelatedEntityID:   ref.EntityID,
	}
}
