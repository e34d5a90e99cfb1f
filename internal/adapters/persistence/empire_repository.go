package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/imperium/internal/domain/empire"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// GormEmpireRepository implements empire.Repository using GORM
type GormEmpireRepository struct {
	db *gorm.DB
}

// NewGormEmpireRepository creates a new GORM empire repository
func NewGormEmpireRepository(db *gorm.DB) *GormEmpireRepository {
	return &GormEmpireRepository{db: db}
}

// FindByID retrieves an empire by ID
func (r *GormEmpireRepository) FindByID(ctx context.Context, id shared.EmpireID) (*empire.Empire, error) {
	return r.find(r.db.WithContext(ctx), "id = ?", id.Value(), id.String())
}

// FindByActor retrieves the empire governed by actor
func (r *GormEmpireRepository) FindByActor(ctx context.Context, actor string) (*empire.Empire, error) {
	return r.find(r.db.WithContext(ctx), "actor = ?", actor, actor)
}

// LockByID retrieves an empire with SELECT ... FOR UPDATE. SQLite has no
// row locks and ignores the clause; its single connection serialises writers.
func (r *GormEmpireRepository) LockByID(ctx context.Context, id shared.EmpireID) (*empire.Empire, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.find(query, "id = ?", id.Value(), id.String())
}

func (r *GormEmpireRepository) find(query *gorm.DB, where string, arg interface{}, label string) (*empire.Empire, error) {
	var model EmpireModel
	result := query.Where(where, arg).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("empire", label)
		}
		return nil, fmt.Errorf("failed to find empire: %w", result.Error)
	}

	var locations []EmpireLocationModel
	if err := query.Session(&gorm.Session{NewDB: true}).
		Where("empire_id = ?", model.ID).
		Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to load empire locations: %w", err)
	}

	return r.modelToEmpire(&model, locations)
}

// Add persists a new empire and claims its locations. A location owned by
// another empire fails the whole insert.
func (r *GormEmpireRepository) Add(ctx context.Context, e *empire.Empire) (*empire.Empire, error) {
	model, err := r.empireToModel(e)
	if err != nil {
		return nil, fmt.Errorf("failed to convert empire to model: %w", err)
	}
	model.ID = 0

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			if IsDuplicateKeyErr(err) {
				return shared.NewDomainError(shared.CodeValidationFailed, fmt.Sprintf("actor %s already governs an empire", e.Actor()))
			}
			return err
		}
		for _, loc := range e.Locations() {
			row := &EmpireLocationModel{Coordinate: loc.String(), EmpireID: model.ID}
			if err := tx.Create(row).Error; err != nil {
				if IsDuplicateKeyErr(err) {
					return shared.NewDomainError(shared.CodeValidationFailed, fmt.Sprintf("location %s is already owned", loc))
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add empire: %w", err)
	}

	return r.FindByID(ctx, shared.MustNewEmpireID(model.ID))
}

// Save writes back the mutable columns of an empire
func (r *GormEmpireRepository) Save(ctx context.Context, e *empire.Empire) error {
	model, err := r.empireToModel(e)
	if err != nil {
		return fmt.Errorf("failed to convert empire to model: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&EmpireModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"credits":          model.Credits,
			"credit_remainder": model.CreditRemainder,
			"energy":           model.Energy,
			"tech_levels":      model.TechLevels,
			"base_count":       model.BaseCount,
			"flags":            model.Flags,
			"last_payout_at":   model.LastPayoutAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save empire: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("empire", e.ID().String())
	}
	return nil
}

// ListIDs returns every empire id in ascending order
func (r *GormEmpireRepository) ListIDs(ctx context.Context) ([]shared.EmpireID, error) {
	var raw []int
	if err := r.db.WithContext(ctx).Model(&EmpireModel{}).Order("id ASC").Pluck("id", &raw).Error; err != nil {
		return nil, fmt.Errorf("failed to list empires: %w", err)
	}

	ids := make([]shared.EmpireID, 0, len(raw))
	for _, v := range raw {
		id, err := shared.NewEmpireID(v)
		if err != nil {
			return nil, fmt.Errorf("invalid empire ID in database: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// modelToEmpire converts database rows to the domain aggregate
func (r *GormEmpireRepository) modelToEmpire(model *EmpireModel, locationRows []EmpireLocationModel) (*empire.Empire, error) {
	id, err := shared.NewEmpireID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid empire ID in database: %w", err)
	}

	techLevels := map[string]int{}
	if model.TechLevels != "" {
		if err := json.Unmarshal([]byte(model.TechLevels), &techLevels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tech levels: %w", err)
		}
	}

	flags := map[empire.Flag]bool{}
	if model.Flags != "" {
		if err := json.Unmarshal([]byte(model.Flags), &flags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flags: %w", err)
		}
	}

	sort.Slice(locationRows, func(i, j int) bool { return locationRows[i].Coordinate < locationRows[j].Coordinate })
	locations := make([]shared.Coordinate, 0, len(locationRows))
	for _, row := range locationRows {
		coord, err := shared.ParseCoordinate(row.Coordinate)
		if err != nil {
			return nil, fmt.Errorf("invalid location in database: %w", err)
		}
		locations = append(locations, coord)
	}

	return empire.ReconstructEmpire(
		id,
		model.Actor,
		model.Name,
		locations,
		model.Credits,
		model.CreditRemainder,
		model.Energy,
		techLevels,
		model.BaseCount,
		flags,
		model.LastPayoutAt,
		model.CreatedAt,
	), nil
}

// empireToModel converts the domain aggregate to its database row
func (r *GormEmpireRepository) empireToModel(e *empire.Empire) (*EmpireModel, error) {
	techJSON, err := json.Marshal(e.TechLevels())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tech levels: %w", err)
	}
	flagsJSON, err := json.Marshal(e.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flags: %w", err)
	}

	return &EmpireModel{
		ID:              e.ID().Value(),
		Actor:           e.Actor(),
		Name:            e.Name(),
		Credits:         e.Credits(),
		CreditRemainder: e.CreditRemainder(),
		Energy:          e.Energy(),
		TechLevels:      string(techJSON),
		BaseCount:       e.BaseCount(),
		Flags:           string(flagsJSON),
		LastPayoutAt:    e.LastPayoutAt(),
		CreatedAt:       e.CreatedAt(),
	}, nil
}
