package models

import "time"

// Operation groups the work done on an escale during a shift by one equipe.
// ConteneurIDs and EnginIDs are free-text lists as entered by operators.
type Operation struct {
	ID           string     `gorm:"primaryKey;size:32" json:"id"`
	ShiftID      *string    `gorm:"size:32" json:"shiftId,omitempty"`
	EscaleID     *string    `gorm:"size:32;index" json:"escaleId,omitempty"`
	ConteneurIDs string     `gorm:"type:text" json:"conteneurIds"`
	EnginIDs     string     `gorm:"type:text" json:"enginIds"`
	EquipeID     *string    `gorm:"size:32" json:"equipeId,omitempty"`
	DateDebut    *time.Time `json:"dateDebut,omitempty"`
	DateFin      *time.Time `json:"dateFin,omitempty"`
	Status       string     `gorm:"size:32;index" json:"status"`
	Type         string     `gorm:"size:32;index" json:"type"`
	Timestamps
}

type TypeOperation string

const (
	Chargement   TypeOperation = "CHARGEMENT"
	Dechargement TypeOperation = "DECHARGEMENT"
)

func (t TypeOperation) Valid() bool { return t == Chargement || t == Dechargement }

type StatusOperation string

const (
	EnCours StatusOperation = "EN_COURS"
	Termine StatusOperation = "TERMINE"
	Annule  StatusOperation = "ANNULE"
)

func (s StatusOperation) Valid() bool { return s == EnCours || s == Termine || s == Annule }

// OperationConteneure is one container moved by an operation.
type OperationConteneure struct {
	ID            string          `gorm:"primaryKey;size:32" json:"id"`
	OperationID   string          `gorm:"size:32;not null;index" json:"operationId"`
	ConteneureID  string          `gorm:"size:32;not null;index" json:"conteneureId"`
	TypeOperation TypeOperation   `gorm:"size:16;not null" json:"typeOperation"`
	DateOperation time.Time       `json:"dateOperation"`
	Status        StatusOperation `gorm:"size:16;not null;default:EN_COURS" json:"status"`
	Timestamps

	Operation  *Operation  `gorm:"foreignKey:OperationID" json:"operation,omitempty"`
	Conteneure *Conteneure `gorm:"foreignKey:ConteneureID" json:"conteneure,omitempty"`
}

// Arret records a stoppage, usually during an operation.
type Arret struct {
	ID          string     `gorm:"primaryKey;size:32" json:"id"`
	OperationID *string    `gorm:"size:32;index" json:"operationId,omitempty"`
	Motif       string     `gorm:"size:255;not null" json:"motif"`
	DateDebut   time.Time  `gorm:"not null" json:"dateDebut"`
	DateFin     *time.Time `json:"dateFin,omitempty"`
	PhotoURL    string     `gorm:"size:512" json:"photoUrl,omitempty"`
	Timestamps
}

// Minutes is the stoppage duration, counted up to now while still open.
func (a *Arret) Minutes(now time.Time) float64 {
	end := now
	if a.DateFin != nil {
		end = *a.DateFin
	}
	if end.Before(a.DateDebut) {
		return 0
	}
	return end.Sub(a.DateDebut).Minutes()
}

type Shift struct {
	ID         string `gorm:"primaryKey;size:32" json:"id"`
	Nom        string `gorm:"size:255;not null" json:"nom"`
	HeureDebut string `gorm:"size:5" json:"heureDebut"` // HH:MM
	HeureFin   string `gorm:"size:5" json:"heureFin"`
	Timestamps
}

type Engin struct {
	ID   string `gorm:"primaryKey;size:32" json:"id"`
	Nom  string `gorm:"size:255;not null" json:"nom"`
	Type string `gorm:"size:64" json:"type"`
	Etat string `gorm:"size:64" json:"etat"`
	Timestamps
}

func (Operation) TableName() string { return "operations" }

func (OperationConteneure) TableName() string { return "operation_conteneures" }

func (Arret) TableName() string { return "arrets" }

func (Shift) TableName() string { return "shifts" }

func (Engin) TableName() string { return "engins" }
