package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/store"
)

// ShipRemoval describes what removing one ship touched.
type ShipRemoval struct {
	Matricule   string   `json:"matricule"`
	NavireID    string   `json:"navireId,omitempty"`
	Conteneures []string `json:"conteneures"`
	Escales     int64    `json:"escales"`
}

// Report summarises one sweep over expired port calls.
type Report struct {
	RanAt    time.Time         `json:"ranAt"`
	Removed  []ShipRemoval     `json:"removed"`
	Failures map[string]string `json:"failures,omitempty"`
}

// Cleanup removes ships whose port calls have ended. Their containers go back
// to land first, with one history row each.
type Cleanup struct {
	store *store.Store
	pub   Publisher
	now   clock
}

func NewCleanup(s *store.Store, pub Publisher) *Cleanup {
	return &Cleanup{store: s, pub: orNop(pub), now: time.Now}
}

// RunOnce sweeps every escale that departed before now. Each ship is handled
// in its own transaction; a failing ship is logged and skipped.
func (c *Cleanup) RunOnce(ctx context.Context, now time.Time) (Report, error) {
	report := Report{RanAt: now, Removed: []ShipRemoval{}}

	expired, err := c.store.ExpiredEscales(ctx, now)
	if err != nil {
		return report, fmt.Errorf("list expired escales: %w", err)
	}

	seen := make(map[string]bool)
	for _, e := range expired {
		if seen[e.MatriculeNavire] {
			continue
		}
		seen[e.MatriculeNavire] = true

		if err := ctx.Err(); err != nil {
			return report, err
		}
		removal, err := c.RemoveShip(ctx, e.MatriculeNavire, SystemUser)
		if err != nil {
			log.Printf("cleanup: ship=%s error=%v", e.MatriculeNavire, err)
			if report.Failures == nil {
				report.Failures = make(map[string]string)
			}
			report.Failures[e.MatriculeNavire] = err.Error()
			continue
		}
		report.Removed = append(report.Removed, *removal)
	}

	if len(report.Removed) > 0 {
		log.Printf("cleanup: removed=%d failed=%d", len(report.Removed), len(report.Failures))
		c.pub.Publish(EventNaviresCleaned, report)
	}
	return report, nil
}

// RemoveShip unloads every container of the ship identified by matricule,
// deletes its escales, then the ship itself. A matricule with escales but no
// ship row only has its escales deleted.
func (c *Cleanup) RemoveShip(ctx context.Context, matricule, user string) (*ShipRemoval, error) {
	removal := ShipRemoval{Matricule: matricule, Conteneures: []string{}}
	err := c.store.Tx(ctx, func(tx *store.Store) error {
		navire, err := tx.NavireByMatricule(ctx, matricule)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if navire != nil {
			removal.NavireID = navire.ID
			aboard, err := tx.ConteneuresOf(ctx, navire.ID)
			if err != nil {
				return err
			}
			at := c.now()
			for i := range aboard {
				if _, err := relocate(ctx, tx, &aboard[i], models.Land(), nil, user, at); err != nil {
					return err
				}
				removal.Conteneures = append(removal.Conteneures, aboard[i].ID)
			}
		}

		n, err := tx.DeleteEscalesOf(ctx, matricule)
		if err != nil {
			return fmt.Errorf("delete escales: %w", err)
		}
		removal.Escales = n

		if navire != nil {
			if err := tx.Navires.Delete(ctx, navire.ID); err != nil {
				return fmt.Errorf("delete navire %s: %w", navire.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &removal, nil
}

// DeleteNavire removes a ship by id the same way the sweep does.
func (c *Cleanup) DeleteNavire(ctx context.Context, id, user string) (*ShipRemoval, error) {
	n, err := c.store.Navires.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.RemoveShip(ctx, n.Matricule, user)
}
