package services

import (
	"context"
	"testing"
	"time"

	"port-ops-api-server/internal/models"
)

func TestAnalyticsSummaryAndGroups(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	n, e := portCall(t, s, "A-1", now.Add(-time.Hour), now.Add(time.Hour))
	portCall(t, s, "A-2", now.Add(-3*time.Hour), now.Add(-2*time.Hour))
	containerAboard(t, s, "C1", n.ID)
	containerOnLand(t, s, "C2")
	containerOnLand(t, s, "C3")

	debut := now.Add(-30 * time.Minute)
	mustCreate(t, s.Operations, &models.Operation{EscaleID: &e.ID, Type: string(models.Chargement), Status: string(models.EnCours), DateDebut: &debut})
	mustCreate(t, s.Operations, &models.Operation{EscaleID: &e.ID, Type: string(models.Chargement), Status: string(models.Termine), DateDebut: &debut})
	old := now.Add(-72 * time.Hour)
	mustCreate(t, s.Operations, &models.Operation{EscaleID: &e.ID, Type: string(models.Dechargement), Status: string(models.Termine), DateDebut: &old})

	fin := now.Add(-20 * time.Minute)
	mustCreate(t, s.Arrets, &models.Arret{Motif: "Pluie", DateDebut: now.Add(-50 * time.Minute), DateFin: &fin})
	mustCreate(t, s.Arrets, &models.Arret{Motif: "Panne", DateDebut: now.Add(-10 * time.Minute), DateFin: &fin})
	mustCreate(t, s.Arrets, &models.Arret{Motif: "Pluie", DateDebut: now.Add(-40 * time.Minute), DateFin: &fin})

	a := NewAnalytics(s)
	a.now = fixedClock(&now)

	sum, err := a.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Navires != 2 || sum.EscalesActives != 1 {
		t.Fatalf("unexpected ship counts %+v", sum)
	}
	if sum.ConteneuresTerre != 2 || sum.ConteneuresNavire != 1 {
		t.Fatalf("unexpected container counts %+v", sum)
	}
	if sum.OperationsParStatus[string(models.Termine)] != 2 || sum.OperationsParStatus[string(models.EnCours)] != 1 {
		t.Fatalf("unexpected status counts %+v", sum.OperationsParStatus)
	}
	if sum.Arrets != 3 || sum.MinutesArret < 49.9 || sum.MinutesArret > 50.1 {
		t.Fatalf("unexpected arrets %d / %.2f", sum.Arrets, sum.MinutesArret)
	}

	all, err := a.Operations(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected three buckets got %+v", all)
	}
	from := now.Add(-time.Hour)
	recent, err := a.Operations(ctx, &from, nil)
	if err != nil {
		t.Fatal(err)
	}
	var total int64
	for _, b := range recent {
		if b.Type != string(models.Chargement) {
			t.Fatalf("old dechargement should be filtered out: %+v", recent)
		}
		total += b.Total
	}
	if total != 2 {
		t.Fatalf("expected two recent operations got %d", total)
	}

	motifs, err := a.Arrets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(motifs) != 2 || motifs[0].Motif != "Pluie" || motifs[0].Count != 2 {
		t.Fatalf("unexpected motif buckets %+v", motifs)
	}
}
