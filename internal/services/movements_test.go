package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/store"
)

type movementFixture struct {
	s      *store.Store
	m      *Movements
	events *recorder
	navire *models.Navire
	op     *models.Operation
}

func newMovementFixture(t *testing.T) *movementFixture {
	t.Helper()
	s := setupTestStore(t)
	now := time.Now()
	n, e := portCall(t, s, "IMO-1", now.Add(-time.Hour), now.Add(time.Hour))
	op := &models.Operation{EscaleID: &e.ID, Status: string(models.EnCours), Type: string(models.Chargement)}
	mustCreate(t, s.Operations, op)

	rec := &recorder{}
	return &movementFixture{s: s, m: NewMovements(s, rec), events: rec, navire: n, op: op}
}

func (f *movementFixture) line(t *testing.T, c *models.Conteneure, typ models.TypeOperation) *models.OperationConteneure {
	t.Helper()
	l := &models.OperationConteneure{OperationID: f.op.ID, ConteneureID: c.ID, TypeOperation: typ, Status: models.EnCours}
	mustCreate(t, f.s.OperationConteneures, l)
	return l
}

func TestCompleteChargementLoadsContainerOnEscaleShip(t *testing.T) {
	f := newMovementFixture(t)
	ctx := context.Background()
	c := containerOnLand(t, f.s, "C1")
	l := f.line(t, c, models.Chargement)

	line, mv, err := f.m.Complete(ctx, l.ID, "docker@port.local")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if line.Status != models.Termine {
		t.Fatalf("expected TERMINE got %s", line.Status)
	}
	if loc := mv.Conteneure.Location(); !loc.Equal(models.Aboard(f.navire.ID)) {
		t.Fatalf("container not aboard %s: %+v", f.navire.ID, loc)
	}

	stored, err := f.s.Conteneures.Get(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.TypeConteneur != models.OnShip || stored.NavireID == nil || *stored.NavireID != f.navire.ID {
		t.Fatalf("location not persisted: %+v", stored)
	}
	if stored.DerniereOperationID == nil || *stored.DerniereOperationID != f.op.ID {
		t.Fatalf("derniere operation not recorded: %+v", stored.DerniereOperationID)
	}

	hist, err := f.s.HistoriqueOf(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected one history row got %d", len(hist))
	}
	h := hist[0]
	if h.AncienType != models.OnLand || h.NouveauType != models.OnShip || h.Utilisateur != "docker@port.local" {
		t.Fatalf("unexpected history row %+v", h)
	}
	if h.OperationID == nil || *h.OperationID != f.op.ID {
		t.Fatalf("history should reference the operation: %+v", h.OperationID)
	}

	if got := f.events.names(); len(got) != 1 || got[0] != EventConteneureMoved {
		t.Fatalf("expected one %s event got %v", EventConteneureMoved, got)
	}

	if _, _, err := f.m.Complete(ctx, l.ID, "docker@port.local"); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("completing twice should fail with ErrInvalidState, got %v", err)
	}
}

func TestCompleteDechargementUnloadsToLand(t *testing.T) {
	f := newMovementFixture(t)
	ctx := context.Background()
	c := containerAboard(t, f.s, "C2", f.navire.ID)
	l := f.line(t, c, models.Dechargement)

	if _, _, err := f.m.Complete(ctx, l.ID, "u"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	stored, _ := f.s.Conteneures.Get(ctx, c.ID)
	if stored.TypeConteneur != models.OnLand || stored.NavireID != nil {
		t.Fatalf("expected container on land: %+v", stored)
	}
	hist, _ := f.s.HistoriqueOf(ctx, c.ID)
	if len(hist) != 1 || hist[0].AncienNavireID == nil || *hist[0].AncienNavireID != f.navire.ID {
		t.Fatalf("history should remember the previous ship: %+v", hist)
	}
}

func TestCompleteRejectsContainerAboardAnotherShip(t *testing.T) {
	f := newMovementFixture(t)
	ctx := context.Background()
	other := &models.Navire{Nom: "Other", Matricule: "IMO-2"}
	mustCreate(t, f.s.Navires, other)
	c := containerAboard(t, f.s, "C3", other.ID)
	l := f.line(t, c, models.Chargement)

	if _, _, err := f.m.Complete(ctx, l.ID, "u"); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState got %v", err)
	}
	hist, _ := f.s.HistoriqueOf(ctx, c.ID)
	if len(hist) != 0 {
		t.Fatalf("rejected move must not write history: %+v", hist)
	}
	stillPending, _ := f.s.OperationConteneures.Get(ctx, l.ID)
	if stillPending.Status != models.EnCours {
		t.Fatalf("line should stay EN_COURS got %s", stillPending.Status)
	}
}

func TestCompleteUnknownLineIsNotFound(t *testing.T) {
	f := newMovementFixture(t)
	if _, _, err := f.m.Complete(context.Background(), "OPC-999", "u"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestCancelLeavesContainerInPlace(t *testing.T) {
	f := newMovementFixture(t)
	ctx := context.Background()
	c := containerOnLand(t, f.s, "C4")
	l := f.line(t, c, models.Chargement)

	line, err := f.m.Cancel(ctx, l.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if line.Status != models.Annule {
		t.Fatalf("expected ANNULE got %s", line.Status)
	}
	stored, _ := f.s.Conteneures.Get(ctx, c.ID)
	if stored.TypeConteneur != models.OnLand {
		t.Fatalf("cancel moved the container: %+v", stored)
	}
	if _, err := f.m.Cancel(ctx, l.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second cancel got %v", err)
	}
	if _, _, err := f.m.Complete(ctx, l.ID, "u"); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("cancelled line must not complete, got %v", err)
	}
}

func TestAssignAndUnassign(t *testing.T) {
	f := newMovementFixture(t)
	ctx := context.Background()
	c := containerOnLand(t, f.s, "C5")

	if _, err := f.m.Assign(ctx, c.ID, "NAV-404", "admin"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown ship got %v", err)
	}
	mv, err := f.m.Assign(ctx, c.ID, f.navire.ID, "admin")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if mv.Historique.OperationID != nil {
		t.Fatalf("manual move should not reference an operation: %+v", mv.Historique)
	}
	if _, err := f.m.Assign(ctx, c.ID, f.navire.ID, "admin"); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("assigning to the same ship twice should fail, got %v", err)
	}

	if _, err := f.m.Unassign(ctx, c.ID, "admin"); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	hist, _ := f.s.HistoriqueOf(ctx, c.ID)
	if len(hist) != 2 {
		t.Fatalf("expected two history rows got %d", len(hist))
	}
	if hist[1].NouveauType != models.OnLand {
		t.Fatalf("last move should be to land: %+v", hist[1])
	}
}

func TestCompleteRejectsMoveToCurrentLocation(t *testing.T) {
	f := newMovementFixture(t)
	ctx := context.Background()
	onLand := containerOnLand(t, f.s, "C6")
	aboard := containerAboard(t, f.s, "C7", f.navire.ID)

	cases := []struct {
		c   *models.Conteneure
		typ models.TypeOperation
	}{
		{onLand, models.Dechargement},
		{aboard, models.Chargement},
	}
	for _, tc := range cases {
		l := f.line(t, tc.c, tc.typ)
		if _, _, err := f.m.Complete(ctx, l.ID, "docker@port.local"); !errors.Is(err, store.ErrInvalidState) {
			t.Fatalf("%s of %s: expected ErrInvalidState got %v", tc.typ, tc.c.ID, err)
		}
		stored, err := f.s.OperationConteneures.Get(ctx, l.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Status != models.EnCours {
			t.Fatalf("rejected line should stay EN_COURS, got %s", stored.Status)
		}
		hist, err := f.s.HistoriqueOf(ctx, tc.c.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(hist) != 0 {
			t.Fatalf("no history row expected for %s, got %+v", tc.c.ID, hist)
		}
	}
	if len(f.events.names()) != 0 {
		t.Fatalf("no event expected, got %v", f.events.names())
	}
}

func TestEditKeepsLocationUnlessTargetGiven(t *testing.T) {
	f := newMovementFixture(t)
	ctx := context.Background()
	c := containerAboard(t, f.s, "C8", f.navire.ID)

	renamed, err := f.m.Edit(ctx, c.ID, "admin@port.local", nil, func(item *models.Conteneure) { item.Nom = "C8-bis" })
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if renamed.Nom != "C8-bis" || !renamed.Location().Equal(models.Aboard(f.navire.ID)) {
		t.Fatalf("rename should keep the container aboard: %+v", renamed)
	}
	if hist, _ := f.s.HistoriqueOf(ctx, c.ID); len(hist) != 0 {
		t.Fatalf("rename must not write history: %+v", hist)
	}

	land := models.Land()
	moved, err := f.m.Edit(ctx, c.ID, "admin@port.local", &land, func(item *models.Conteneure) { item.Nom = "C8-ter" })
	if err != nil {
		t.Fatalf("edit with move: %v", err)
	}
	if moved.Nom != "C8-ter" || moved.TypeConteneur != models.OnLand {
		t.Fatalf("unexpected container %+v", moved)
	}
	if hist, _ := f.s.HistoriqueOf(ctx, c.ID); len(hist) != 1 {
		t.Fatalf("expected one history row got %+v", hist)
	}
	if names := f.events.names(); len(names) != 1 || names[0] != EventConteneureMoved {
		t.Fatalf("unexpected events %v", names)
	}

	ghost := models.Aboard("NAV-999")
	if _, err := f.m.Edit(ctx, c.ID, "admin@port.local", &ghost, func(item *models.Conteneure) { item.Nom = "lost" }); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	stored, _ := f.s.Conteneures.Get(ctx, c.ID)
	if stored.Nom != "C8-ter" {
		t.Fatalf("failed edit must roll back the rename, got %q", stored.Nom)
	}
}
