package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"port-ops-api-server/internal/auth"
	"port-ops-api-server/internal/database"
	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/store"

	"golang.org/x/crypto/bcrypt"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	auth.HashCost = bcrypt.MinCost
	db, err := database.OpenMemory(t.Name())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return store.New(db)
}

type recordedEvent struct {
	name    string
	payload interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Publish(event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{event, payload})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.name
	}
	return out
}

// fixedClock returns a clock pinned to *t, so tests can move time by assigning.
func fixedClock(t *time.Time) clock {
	return func() time.Time { return *t }
}

func mustCreate[T any](t *testing.T, repo *store.Repository[T], item *T) {
	t.Helper()
	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatalf("create %T: %v", item, err)
	}
}

// portCall creates a ship with one escale spanning [from, to).
func portCall(t *testing.T, s *store.Store, matricule string, from, to time.Time) (*models.Navire, *models.Escale) {
	t.Helper()
	n := &models.Navire{Nom: "Navire " + matricule, Matricule: matricule}
	mustCreate(t, s.Navires, n)
	e := &models.Escale{NomNavire: n.Nom, MatriculeNavire: matricule, DateArrivee: from, DateDepart: to}
	mustCreate(t, s.Escales, e)
	return n, e
}

func containerOnLand(t *testing.T, s *store.Store, nom string) *models.Conteneure {
	t.Helper()
	c := &models.Conteneure{Nom: nom, DateAjout: time.Now()}
	c.SetLocation(models.Land())
	mustCreate(t, s.Conteneures, c)
	return c
}

func containerAboard(t *testing.T, s *store.Store, nom, navireID string) *models.Conteneure {
	t.Helper()
	c := &models.Conteneure{Nom: nom, DateAjout: time.Now()}
	c.SetLocation(models.Aboard(navireID))
	mustCreate(t, s.Conteneures, c)
	return c
}
