// server/internal/models/common.go
package models

import "time"

// Timestamps is embedded by every entity that tracks creation and update times.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IDPrefix values used by the sequence allocator.
const (
	PrefixNavire              = "NAV"
	PrefixEscale              = "ESC"
	PrefixConteneure          = "CTR"
	PrefixOperation           = "OPR"
	PrefixOperationConteneure = "OPC"
	PrefixHistorique          = "HIS"
	PrefixEquipe              = "EQP"
	PrefixPersonnel           = "PER"
	PrefixSoustraiteure       = "SST"
	PrefixShift               = "SHF"
	PrefixEngin               = "ENG"
	PrefixArret               = "ARR"
)

// Sequence is one row of the id allocation table.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:16"`
	Value int64  `gorm:"not null;default:0"`
}

func (Sequence) TableName() string { return "id_sequences" }

// All returns every persisted model in foreign-key order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&TypeConteneur{},
		&Navire{},
		&Escale{},
		&Shift{},
		&Engin{},
		&Personnel{},
		&Soustraiteure{},
		&Equipe{},
		&Operation{},
		&Conteneure{},
		&OperationConteneure{},
		&HistoriqueConteneure{},
		&Arret{},
	}
}
