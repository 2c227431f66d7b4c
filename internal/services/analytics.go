package services

import (
	"context"
	"sort"
	"time"

	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/store"
)

type Summary struct {
	Navires             int64            `json:"navires"`
	EscalesActives      int              `json:"escalesActives"`
	ConteneuresTerre    int64            `json:"conteneuresTerre"`
	ConteneuresNavire   int64            `json:"conteneuresNavire"`
	OperationsParStatus map[string]int64 `json:"operationsParStatus"`
	Arrets              int64            `json:"arrets"`
	MinutesArret        float64          `json:"minutesArret"`
	GeneratedAt         time.Time        `json:"generatedAt"`
}

// OperationBucket is one (type, status) group of operations.
type OperationBucket struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Total  int64  `json:"total"`
}

// MotifBucket groups stoppages by reason.
type MotifBucket struct {
	Motif   string  `json:"motif"`
	Count   int     `json:"count"`
	Minutes float64 `json:"minutes"`
}

// Analytics computes the dashboard aggregates.
type Analytics struct {
	store *store.Store
	now   clock
}

func NewAnalytics(s *store.Store) *Analytics {
	return &Analytics{store: s, now: time.Now}
}

func (a *Analytics) Summary(ctx context.Context) (*Summary, error) {
	now := a.now()
	db := a.store.DB.WithContext(ctx)
	sum := &Summary{OperationsParStatus: map[string]int64{}, GeneratedAt: now}

	if err := db.Model(&models.Navire{}).Count(&sum.Navires).Error; err != nil {
		return nil, err
	}
	active, err := a.store.ActiveEscales(ctx, now)
	if err != nil {
		return nil, err
	}
	sum.EscalesActives = len(active)

	var locations []struct {
		TypeConteneur string
		Total         int64
	}
	if err := db.Model(&models.Conteneure{}).
		Select("type_conteneur, count(*) as total").
		Group("type_conteneur").
		Scan(&locations).Error; err != nil {
		return nil, err
	}
	for _, l := range locations {
		switch models.LocationKind(l.TypeConteneur) {
		case models.OnLand:
			sum.ConteneuresTerre = l.Total
		case models.OnShip:
			sum.ConteneuresNavire = l.Total
		}
	}

	var statuses []struct {
		Status string
		Total  int64
	}
	if err := db.Model(&models.Operation{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&statuses).Error; err != nil {
		return nil, err
	}
	for _, s := range statuses {
		sum.OperationsParStatus[s.Status] = s.Total
	}

	arrets, err := a.store.Arrets.List(ctx)
	if err != nil {
		return nil, err
	}
	sum.Arrets = int64(len(arrets))
	for i := range arrets {
		sum.MinutesArret += arrets[i].Minutes(now)
	}
	return sum, nil
}

// Operations groups operations by type and status. from and to bound
// date_debut when set.
func (a *Analytics) Operations(ctx context.Context, from, to *time.Time) ([]OperationBucket, error) {
	q := a.store.DB.WithContext(ctx).Model(&models.Operation{})
	if from != nil {
		q = q.Where("date_debut >= ?", *from)
	}
	if to != nil {
		q = q.Where("date_debut <= ?", *to)
	}
	buckets := []OperationBucket{}
	err := q.Select("type, status, count(*) as total").
		Group("type, status").
		Order("type, status").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	return buckets, nil
}

// Arrets groups stoppages by motif, longest total first. Open stoppages count
// up to now.
func (a *Analytics) Arrets(ctx context.Context) ([]MotifBucket, error) {
	arrets, err := a.store.Arrets.List(ctx)
	if err != nil {
		return nil, err
	}
	now := a.now()
	byMotif := map[string]*MotifBucket{}
	for i := range arrets {
		b, ok := byMotif[arrets[i].Motif]
		if !ok {
			b = &MotifBucket{Motif: arrets[i].Motif}
			byMotif[arrets[i].Motif] = b
		}
		b.Count++
		b.Minutes += arrets[i].Minutes(now)
	}

	buckets := make([]MotifBucket, 0, len(byMotif))
	for _, b := range byMotif {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Minutes != buckets[j].Minutes {
			return buckets[i].Minutes > buckets[j].Minutes
		}
		return buckets[i].Motif < buckets[j].Motif
	})
	return buckets, nil
}
