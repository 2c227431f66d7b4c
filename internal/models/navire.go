package models

import "time"

// Navire is a ship known to the port.
type Navire struct {
	ID           string  `gorm:"primaryKey;size:32" json:"id"`
	Nom          string  `gorm:"size:255;not null" json:"nom"`
	Matricule    string  `gorm:"uniqueIndex;size:64;not null" json:"matricule"`
	ConteneureID *string `gorm:"size:32" json:"conteneureId,omitempty"`
	Timestamps

	Conteneures []Conteneure `gorm:"foreignKey:NavireID" json:"conteneures,omitempty"`
}

// Escale is a port call: the window between a ship's arrival and departure.
// NomNavire is a snapshot taken at creation time.
type Escale struct {
	ID              string    `gorm:"primaryKey;size:32" json:"id"`
	NomNavire       string    `gorm:"size:255" json:"nomNavire"`
	MatriculeNavire string    `gorm:"size:64;not null;index" json:"matriculeNavire"`
	DateArrivee     time.Time `gorm:"not null" json:"dateArrivee"`
	DateDepart      time.Time `gorm:"not null;index" json:"dateDepart"`
	Timestamps

	Navire *Navire `gorm:"foreignKey:MatriculeNavire;references:Matricule;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"navire,omitempty"`
}

// Active reports whether the ship is in port at now.
func (e *Escale) Active(now time.Time) bool {
	return !now.Before(e.DateArrivee) && now.Before(e.DateDepart)
}

// Expired reports whether the departure date has passed at now.
func (e *Escale) Expired(now time.Time) bool {
	return e.DateDepart.Before(now)
}

func (Navire) TableName() string { return "navires" }

func (Escale) TableName() string { return "escales" }
