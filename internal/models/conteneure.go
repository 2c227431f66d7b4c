package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// LocationKind is the persisted discriminator of a container's location.
type LocationKind string

const (
	OnLand LocationKind = "TERRE"
	OnShip LocationKind = "NAVIRE"
)

func (k LocationKind) Valid() bool { return k == OnLand || k == OnShip }

// Location is where a container is: on land, or aboard exactly one ship.
type Location struct {
	Kind     LocationKind `json:"kind"`
	NavireID string       `json:"navireId,omitempty"`
}

func Land() Location { return Location{Kind: OnLand} }

func Aboard(navireID string) Location { return Location{Kind: OnShip, NavireID: navireID} }

func (l Location) Equal(o Location) bool { return l.Kind == o.Kind && l.NavireID == o.NavireID }

// ErrInvalidLocation is returned when a container's type and ship reference disagree.
var ErrInvalidLocation = errors.New("container location is inconsistent")

type Conteneure struct {
	ID                  string       `gorm:"primaryKey;size:32" json:"id"`
	Nom                 string       `gorm:"size:255;not null" json:"nom"`
	TypeConteneur       LocationKind `gorm:"size:16;not null;default:TERRE;index" json:"typeConteneur"`
	NavireID            *string      `gorm:"size:32;index" json:"navireId,omitempty"`
	DerniereOperationID *string      `gorm:"size:32" json:"derniereOperationId,omitempty"`
	DateAjout           time.Time    `json:"dateAjout"`
	Timestamps

	Navire *Navire `gorm:"foreignKey:NavireID" json:"navire,omitempty"`
}

// Location decodes the persisted columns into the variant.
func (c *Conteneure) Location() Location {
	if c.TypeConteneur == OnShip && c.NavireID != nil {
		return Aboard(*c.NavireID)
	}
	return Land()
}

// SetLocation writes the variant back to both columns so they can never disagree.
func (c *Conteneure) SetLocation(l Location) {
	c.TypeConteneur = l.Kind
	if l.Kind == OnShip {
		id := l.NavireID
		c.NavireID = &id
		return
	}
	c.NavireID = nil
}

// Validate checks the land-xor-ship invariant.
func (c *Conteneure) Validate() error {
	switch c.TypeConteneur {
	case OnLand:
		if c.NavireID != nil {
			return ErrInvalidLocation
		}
	case OnShip:
		if c.NavireID == nil || *c.NavireID == "" {
			return ErrInvalidLocation
		}
	default:
		return ErrInvalidLocation
	}
	return nil
}

func (c *Conteneure) BeforeSave(tx *gorm.DB) error {
	return c.Validate()
}

// TypeConteneur is the lookup table of location kinds.
type TypeConteneur struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Nom         string `gorm:"uniqueIndex;size:64;not null" json:"nom"`
	Description string `gorm:"size:255" json:"description"`
}

// HistoriqueConteneure is an immutable record of one container location change.
type HistoriqueConteneure struct {
	ID              string       `gorm:"primaryKey;size:32" json:"id"`
	ConteneureID    string       `gorm:"size:32;not null;index" json:"conteneureId"`
	AncienType      LocationKind `gorm:"size:16;not null" json:"ancienType"`
	NouveauType     LocationKind `gorm:"size:16;not null" json:"nouveauType"`
	AncienNavireID  *string      `gorm:"size:32" json:"ancienNavireId,omitempty"`
	NouveauNavireID *string      `gorm:"size:32" json:"nouveauNavireId,omitempty"`
	OperationID     *string      `gorm:"size:32" json:"operationId,omitempty"`
	DateChangement  time.Time    `gorm:"not null" json:"dateChangement"`
	Utilisateur     string       `gorm:"size:255" json:"utilisateur"`
}

var errHistoryImmutable = errors.New("container history is append-only")

func (h *HistoriqueConteneure) BeforeUpdate(tx *gorm.DB) error {
	return errHistoryImmutable
}

// NewHistorique builds the audit row for a transition from -> to.
func NewHistorique(id, conteneureID string, from, to Location, operationID *string, user string, at time.Time) HistoriqueConteneure {
	h := HistoriqueConteneure{
		ID:             id,
		ConteneureID:   conteneureID,
		AncienType:     from.Kind,
		NouveauType:    to.Kind,
		OperationID:    operationID,
		DateChangement: at,
		Utilisateur:    user,
	}
	if from.Kind == OnShip {
		v := from.NavireID
		h.AncienNavireID = &v
	}
	if to.Kind == OnShip {
		v := to.NavireID
		h.NouveauNavireID = &v
	}
	return h
}

func (Conteneure) TableName() string { return "conteneures" }

func (TypeConteneur) TableName() string { return "type_conteneurs" }

func (HistoriqueConteneure) TableName() string { return "historique_conteneures" }
