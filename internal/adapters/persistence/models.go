package persistence

import (
	"time"
)

// EmpireModel represents the empires table
type EmpireModel struct {
	ID              int       `gorm:"column:id;primaryKey;autoIncrement"`
	Actor           string    `gorm:"column:actor;unique;not null"`
	Name            string    `gorm:"column:name;not null"`
	Credits         int64     `gorm:"column:credits;not null;default:0"`
	CreditRemainder int64     `gorm:"column:credit_remainder;not null;default:0"` // milli-credits
	Energy          int64     `gorm:"column:energy;not null;default:0"`
	TechLevels      string    `gorm:"column:tech_levels;type:text;not null"` // JSON object as text
	BaseCount       int       `gorm:"column:base_count;not null;default:0"`
	Flags           string    `gorm:"column:flags;type:text;not null"` // JSON object as text
	LastPayoutAt    time.Time `gorm:"column:last_payout_at;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
}

func (EmpireModel) TableName() string {
	return "empires"
}

// EmpireLocationModel represents the empire_locations table.
// The coordinate is the primary key: a location has at most one owner.
type EmpireLocationModel struct {
	Coordinate string       `gorm:"column:coordinate;primaryKey;not null"`
	EmpireID   int          `gorm:"column:empire_id;not null;index"`
	Empire     *EmpireModel `gorm:"foreignKey:EmpireID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (EmpireLocationModel) TableName() string {
	return "empire_locations"
}

// CapacityAssetModel represents the capacity_assets table
type CapacityAssetModel struct {
	ID             string `gorm:"column:id;primaryKey;not null"`
	EmpireID       int    `gorm:"column:empire_id;not null;index:idx_assets_empire_location"`
	Location       string `gorm:"column:location;not null;index:idx_assets_empire_location"`
	ItemKey        string `gorm:"column:item_key;not null"`
	Level          int    `gorm:"column:level;not null;default:1"`
	Active         bool   `gorm:"column:active;not null;default:false"`
	PendingUpgrade bool   `gorm:"column:pending_upgrade;not null;default:false"`
}

func (CapacityAssetModel) TableName() string {
	return "capacity_assets"
}

// QueueEntryModel represents the queue_entries table, shared by all tracks
type QueueEntryModel struct {
	ID             string     `gorm:"column:id;primaryKey;not null"`
	EmpireID       int        `gorm:"column:empire_id;not null;index:idx_queue_empire_track"`
	Track          string     `gorm:"column:track;not null;index:idx_queue_empire_track"`
	Location       string     `gorm:"column:location;not null"`
	ItemKey        string     `gorm:"column:item_key;not null"`
	TargetLevel    int        `gorm:"column:target_level;not null"`
	IdentityKey    string     `gorm:"column:identity_key;not null"`
	ReservationKey string     `gorm:"column:reservation_key;not null"`
	AssetID        string     `gorm:"column:asset_id"`
	Status         string     `gorm:"column:status;not null;index:idx_queue_status_completes"`
	StartedAt      time.Time  `gorm:"column:started_at;not null"`
	ActivatedAt    *time.Time `gorm:"column:activated_at"`
	CompletesAt    *time.Time `gorm:"column:completes_at;index:idx_queue_status_completes"`
	Charged        bool       `gorm:"column:charged;not null;default:false"`
	ChargedAmount  int64      `gorm:"column:charged_amount;not null;default:0"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
	CancelledAt    *time.Time `gorm:"column:cancelled_at"`
}

func (QueueEntryModel) TableName() string {
	return "queue_entries"
}

// QueueReservationModel represents the queue_reservations table. A row
// exists while its entry is pending.
type QueueReservationModel struct {
	ReservationKey string    `gorm:"column:reservation_key;primaryKey;not null"`
	EntryID        string    `gorm:"column:entry_id;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
}

func (QueueReservationModel) TableName() string {
	return "queue_reservations"
}

// CreditTransactionModel represents the credit_transactions table
type CreditTransactionModel struct {
	ID                string    `gorm:"column:id;primaryKey;not null"`
	EmpireID          int       `gorm:"column:empire_id;not null;uniqueIndex:idx_credit_tx_empire_sequence;index:idx_credit_tx_empire_created,priority:1"`
	Sequence          int64     `gorm:"column:sequence;not null;uniqueIndex:idx_credit_tx_empire_sequence"`
	CreatedAt         time.Time `gorm:"column:created_at;not null;index:idx_credit_tx_empire_created,priority:2,sort:desc"`
	TransactionType   string    `gorm:"column:transaction_type;not null"`
	Category          string    `gorm:"column:category;not null"`
	Amount            int64     `gorm:"column:amount;not null"`
	BalanceBefore     int64     `gorm:"column:balance_before;not null"`
	BalanceAfter      int64     `gorm:"column:balance_after;not null"`
	Note              string    `gorm:"column:note;type:text"`
	RelatedEntityType string    `gorm:"column:related_entity_type"`
	RelatedEntityID   string    `gorm:"column:related_entity_id;index"`
}

func (CreditTransactionModel) TableName() string {
	return "credit_transactions"
}

// HoldingModel represents the holdings table
type HoldingModel struct {
	EmpireID int    `gorm:"column:empire_id;primaryKey;not null"`
	Location string `gorm:"column:location;primaryKey;not null"`
	Track    string `gorm:"column:track;primaryKey;not null"`
	ItemKey  string `gorm:"column:item_key;primaryKey;not null"`
	Count    int64  `gorm:"column:count;not null;default:0"`
}

func (HoldingModel) TableName() string {
	return "holdings"
}

// AllModels lists every model for migration
func AllModels() []interface{} {
	return []interface{}{
		&EmpireModel{},
		&EmpireLocationModel{},
		&CapacityAssetModel{},
		&QueueEntryModel{},
		&QueueReservationModel{},
		&CreditTransactionModel{},
		&HoldingModel{},
	}
}
