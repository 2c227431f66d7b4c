package services

import (
	"context"
	"fmt"
	"time"

	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/store"
)

// Movement is the payload published after a container changed location.
type Movement struct {
	Conteneure models.Conteneure           `json:"conteneure"`
	Historique models.HistoriqueConteneure `json:"historique"`
}

// Movements changes container locations and records the audit trail in the
// same transaction as the change.
type Movements struct {
	store *store.Store
	pub   Publisher
	now   clock
}

func NewMovements(s *store.Store, pub Publisher) *Movements {
	return &Movements{store: s, pub: orNop(pub), now: time.Now}
}

// relocate moves c to target and appends the history row. It must run on a tx store.
func relocate(ctx context.Context, tx *store.Store, c *models.Conteneure, target models.Location, operationID *string, user string, at time.Time) (*models.HistoriqueConteneure, error) {
	from := c.Location()
	c.SetLocation(target)
	if operationID != nil {
		c.DerniereOperationID = operationID
	}
	if err := tx.Conteneures.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update conteneure %s: %w", c.ID, err)
	}
	h := models.NewHistorique("", c.ID, from, target, operationID, user, at)
	if err := tx.Historiques.Create(ctx, &h); err != nil {
		return nil, fmt.Errorf("record historique for %s: %w", c.ID, err)
	}
	return &h, nil
}

// Complete finishes an EN_COURS operation line: the container is loaded onto the
// ship of the operation's escale, or unloaded to land.
func (m *Movements) Complete(ctx context.Context, id, user string) (*models.OperationConteneure, *Movement, error) {
	var (
		line models.OperationConteneure
		mv   Movement
	)
	err := m.store.Tx(ctx, func(tx *store.Store) error {
		l, err := tx.OperationConteneures.Get(ctx, id)
		if err != nil {
			return err
		}
		if l.Status != models.EnCours {
			return fmt.Errorf("%w: operation conteneure %s is %s", store.ErrInvalidState, l.ID, l.Status)
		}
		c, err := tx.Conteneures.Get(ctx, l.ConteneureID)
		if err != nil {
			return fmt.Errorf("conteneure %s: %w", l.ConteneureID, err)
		}

		var target models.Location
		switch l.TypeOperation {
		case models.Chargement:
			navireID, err := shipOfOperation(ctx, tx, l.OperationID)
			if err != nil {
				return err
			}
			if cur := c.Location(); cur.Kind == models.OnShip && cur.NavireID != navireID {
				return fmt.Errorf("%w: conteneure %s is aboard %s", store.ErrInvalidState, c.ID, cur.NavireID)
			}
			target = models.Aboard(navireID)
		case models.Dechargement:
			target = models.Land()
		default:
			return fmt.Errorf("%w: unknown operation type %q", store.ErrInvalidState, l.TypeOperation)
		}
		if c.Location().Equal(target) {
			return fmt.Errorf("%w: conteneure %s is already there", store.ErrInvalidState, c.ID)
		}

		now := m.now()
		opID := l.OperationID
		h, err := relocate(ctx, tx, c, target, &opID, user, now)
		if err != nil {
			return err
		}

		l.Status = models.Termine
		l.DateOperation = now
		if err := tx.OperationConteneures.Update(ctx, l); err != nil {
			return err
		}
		line, mv = *l, Movement{Conteneure: *c, Historique: *h}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	m.pub.Publish(EventConteneureMoved, mv)
	return &line, &mv, nil
}

// Cancel moves an EN_COURS line to ANNULE without touching the container.
func (m *Movements) Cancel(ctx context.Context, id string) (*models.OperationConteneure, error) {
	var line models.OperationConteneure
	err := m.store.Tx(ctx, func(tx *store.Store) error {
		l, err := tx.OperationConteneures.Get(ctx, id)
		if err != nil {
			return err
		}
		if l.Status != models.EnCours {
			return fmt.Errorf("%w: operation conteneure %s is %s", store.ErrInvalidState, l.ID, l.Status)
		}
		l.Status = models.Annule
		if err := tx.OperationConteneures.Update(ctx, l); err != nil {
			return err
		}
		line = *l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Assign puts a container aboard a ship outside of any operation.
func (m *Movements) Assign(ctx context.Context, conteneureID, navireID, user string) (*Movement, error) {
	return m.move(ctx, conteneureID, user, func(tx *store.Store) (models.Location, error) {
		if _, err := tx.Navires.Get(ctx, navireID); err != nil {
			return models.Location{}, fmt.Errorf("navire %s: %w", navireID, err)
		}
		return models.Aboard(navireID), nil
	})
}

// Unassign returns a container to land.
func (m *Movements) Unassign(ctx context.Context, conteneureID, user string) (*Movement, error) {
	return m.move(ctx, conteneureID, user, func(*store.Store) (models.Location, error) {
		return models.Land(), nil
	})
}

func (m *Movements) move(ctx context.Context, conteneureID, user string, target func(tx *store.Store) (models.Location, error)) (*Movement, error) {
	var mv Movement
	err := m.store.Tx(ctx, func(tx *store.Store) error {
		c, err := tx.Conteneures.Get(ctx, conteneureID)
		if err != nil {
			return err
		}
		to, err := target(tx)
		if err != nil {
			return err
		}
		if c.Location().Equal(to) {
			return fmt.Errorf("%w: conteneure %s is already there", store.ErrInvalidState, c.ID)
		}
		h, err := relocate(ctx, tx, c, to, nil, user, m.now())
		if err != nil {
			return err
		}
		mv = Movement{Conteneure: *c, Historique: *h}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.pub.Publish(EventConteneureMoved, mv)
	return &mv, nil
}

// Edit applies field changes to a container and, when to is set and differs
// from the current location, moves it. Both happen in one transaction.
func (m *Movements) Edit(ctx context.Context, conteneureID, user string, to *models.Location, apply func(*models.Conteneure)) (*models.Conteneure, error) {
	var (
		out   models.Conteneure
		mv    Movement
		moved bool
	)
	err := m.store.Tx(ctx, func(tx *store.Store) error {
		c, err := tx.Conteneures.Get(ctx, conteneureID)
		if err != nil {
			return err
		}
		apply(c)
		if to != nil && !c.Location().Equal(*to) {
			if to.Kind == models.OnShip {
				if _, err := tx.Navires.Get(ctx, to.NavireID); err != nil {
					return fmt.Errorf("navire %s: %w", to.NavireID, err)
				}
			}
			h, err := relocate(ctx, tx, c, *to, nil, user, m.now())
			if err != nil {
				return err
			}
			mv, moved = Movement{Conteneure: *c, Historique: *h}, true
		} else if err := tx.Conteneures.Update(ctx, c); err != nil {
			return err
		}
		out = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	if moved {
		m.pub.Publish(EventConteneureMoved, mv)
	}
	return &out, nil
}

// shipOfOperation resolves operation -> escale -> navire id.
func shipOfOperation(ctx context.Context, tx *store.Store, operationID string) (string, error) {
	op, err := tx.Operations.Get(ctx, operationID)
	if err != nil {
		return "", fmt.Errorf("operation %s: %w", operationID, err)
	}
	if op.EscaleID == nil || *op.EscaleID == "" {
		return "", fmt.Errorf("%w: operation %s has no escale", store.ErrInvalidState, op.ID)
	}
	esc, err := tx.Escales.Get(ctx, *op.EscaleID)
	if err != nil {
		return "", fmt.Errorf("escale %s: %w", *op.EscaleID, err)
	}
	navire, err := tx.NavireByMatricule(ctx, esc.MatriculeNavire)
	if err != nil {
		return "", fmt.Errorf("navire %s: %w", esc.MatriculeNavire, err)
	}
	return navire.ID, nil
}
