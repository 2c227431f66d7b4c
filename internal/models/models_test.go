package models

import (
	"testing"
	"time"
)

func TestConteneureLocationRoundTrip(t *testing.T) {
	var c Conteneure
	c.SetLocation(Aboard("NAV-001"))
	if c.TypeConteneur != OnShip || c.NavireID == nil || *c.NavireID != "NAV-001" {
		t.Fatalf("aboard not persisted: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("aboard should validate: %v", err)
	}
	if got := c.Location(); !got.Equal(Aboard("NAV-001")) {
		t.Fatalf("unexpected location %+v", got)
	}

	c.SetLocation(Land())
	if c.TypeConteneur != OnLand || c.NavireID != nil {
		t.Fatalf("land not persisted: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("land should validate: %v", err)
	}
}

func TestConteneureValidateRejectsInconsistentColumns(t *testing.T) {
	ship := "NAV-001"
	empty := ""
	cases := []Conteneure{
		{TypeConteneur: OnLand, NavireID: &ship},
		{TypeConteneur: OnShip},
		{TypeConteneur: OnShip, NavireID: &empty},
		{TypeConteneur: "BATEAU"},
	}
	for i, c := range cases {
		if err := c.Validate(); err != ErrInvalidLocation {
			t.Fatalf("case %d: expected ErrInvalidLocation got %v", i, err)
		}
	}
}

func TestNewHistoriqueCapturesBothSides(t *testing.T) {
	op := "OPR-001"
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := NewHistorique("HIS-001", "CTR-001", Land(), Aboard("NAV-002"), &op, "admin@port.local", at)
	if h.AncienType != OnLand || h.AncienNavireID != nil {
		t.Fatalf("bad previous side: %+v", h)
	}
	if h.NouveauType != OnShip || h.NouveauNavireID == nil || *h.NouveauNavireID != "NAV-002" {
		t.Fatalf("bad new side: %+v", h)
	}
	if !h.DateChangement.Equal(at) || h.Utilisateur != "admin@port.local" {
		t.Fatalf("bad metadata: %+v", h)
	}
}

func TestEscaleWindow(t *testing.T) {
	now := time.Now()
	e := Escale{DateArrivee: now.Add(-time.Hour), DateDepart: now.Add(time.Hour)}
	if !e.Active(now) || e.Expired(now) {
		t.Fatalf("expected active, not expired")
	}
	e.DateDepart = now.Add(-time.Minute)
	if e.Active(now) || !e.Expired(now) {
		t.Fatalf("expected expired")
	}
}

func TestArretMinutes(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	a := Arret{DateDebut: start, DateFin: &end}
	if got := a.Minutes(time.Now()); got != 90 {
		t.Fatalf("expected 90 got %v", got)
	}
	open := Arret{DateDebut: start}
	if got := open.Minutes(start.Add(10 * time.Minute)); got != 10 {
		t.Fatalf("expected 10 got %v", got)
	}
}

func TestUserIsLocked(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)
	if (&User{}).IsLocked(now) {
		t.Fatal("unlocked user reported locked")
	}
	if !(&User{Locked: true, LockExpiry: &future}).IsLocked(now) {
		t.Fatal("lock with future expiry should hold")
	}
	if (&User{Locked: true, LockExpiry: &past}).IsLocked(now) {
		t.Fatal("expired lock should not hold")
	}
}
