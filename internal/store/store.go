package store

import (
	"context"
	"time"

	"port-ops-api-server/internal/models"

	"gorm.io/gorm"
)

// Store bundles one repository per table plus the cross-table queries.
type Store struct {
	DB *gorm.DB

	Users                *Repository[models.User]
	Navires              *Repository[models.Navire]
	Escales              *Repository[models.Escale]
	Conteneures          *Repository[models.Conteneure]
	TypeConteneurs       *Repository[models.TypeConteneur]
	Operations           *Repository[models.Operation]
	OperationConteneures *Repository[models.OperationConteneure]
	Historiques          *Repository[models.HistoriqueConteneure]
	Equipes              *Repository[models.Equipe]
	Personnels           *Repository[models.Personnel]
	Soustraiteures       *Repository[models.Soustraiteure]
	Shifts               *Repository[models.Shift]
	Engins               *Repository[models.Engin]
	Arrets               *Repository[models.Arret]
}

func New(db *gorm.DB) *Store {
	return &Store{
		DB:             db,
		Users:          newRepository[models.User](db),
		TypeConteneurs: newRepository[models.TypeConteneur](db),
		Navires: newRepository(db,
			withID(models.PrefixNavire, func(n *models.Navire) *string { return &n.ID })),
		Escales: newRepository(db,
			withID(models.PrefixEscale, func(e *models.Escale) *string { return &e.ID })),
		Conteneures: newRepository(db,
			withID(models.PrefixConteneure, func(c *models.Conteneure) *string { return &c.ID })),
		Operations: newRepository(db,
			withID(models.PrefixOperation, func(o *models.Operation) *string { return &o.ID })),
		OperationConteneures: newRepository(db,
			withID(models.PrefixOperationConteneure, func(o *models.OperationConteneure) *string { return &o.ID })),
		Historiques: newRepository(db,
			withID(models.PrefixHistorique, func(h *models.HistoriqueConteneure) *string { return &h.ID })),
		Equipes: newRepository(db,
			withID(models.PrefixEquipe, func(e *models.Equipe) *string { return &e.ID }),
			withPreload[models.Equipe]("Personnels", "Soustraiteures")),
		Personnels: newRepository(db,
			withID(models.PrefixPersonnel, func(p *models.Personnel) *string { return &p.Matricule }),
			withKey[models.Personnel]("matricule")),
		Soustraiteures: newRepository(db,
			withID(models.PrefixSoustraiteure, func(s *models.Soustraiteure) *string { return &s.Matricule }),
			withKey[models.Soustraiteure]("matricule")),
		Shifts: newRepository(db,
			withID(models.PrefixShift, func(s *models.Shift) *string { return &s.ID })),
		Engins: newRepository(db,
			withID(models.PrefixEngin, func(e *models.Engin) *string { return &e.ID })),
		Arrets: newRepository(db,
			withID(models.PrefixArret, func(a *models.Arret) *string { return &a.ID })),
	}
}

// Tx runs fn with a Store bound to a single transaction.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// --- Navires ---

func (s *Store) NavireByMatricule(ctx context.Context, matricule string) (*models.Navire, error) {
	var n models.Navire
	if err := s.DB.WithContext(ctx).Where("matricule = ?", matricule).First(&n).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

// UpdateNavire saves n and carries a matricule change over to its escales.
func (s *Store) UpdateNavire(ctx context.Context, n *models.Navire, previousMatricule string) error {
	return s.Tx(ctx, func(tx *Store) error {
		if err := tx.Navires.Update(ctx, n); err != nil {
			return err
		}
		if previousMatricule == "" || previousMatricule == n.Matricule {
			return nil
		}
		err := tx.DB.Model(&models.Escale{}).
			Where("matricule_navire = ?", previousMatricule).
			Update("matricule_navire", n.Matricule).Error
		return translate(err)
	})
}

// --- Escales ---

// ActiveEscales lists port calls whose window contains now.
func (s *Store) ActiveEscales(ctx context.Context, now time.Time) ([]models.Escale, error) {
	return s.Escales.Find(ctx, "date_arrivee <= ? AND date_depart > ?", now, now)
}

// ExpiredEscales lists port calls whose departure is before now.
func (s *Store) ExpiredEscales(ctx context.Context, now time.Time) ([]models.Escale, error) {
	return s.Escales.Find(ctx, "date_depart < ?", now)
}

func (s *Store) DeleteEscalesOf(ctx context.Context, matricule string) (int64, error) {
	res := s.DB.WithContext(ctx).Where("matricule_navire = ?", matricule).Delete(&models.Escale{})
	return res.RowsAffected, translate(res.Error)
}

// --- Conteneures ---

func (s *Store) ConteneuresOf(ctx context.Context, navireID string) ([]models.Conteneure, error) {
	return s.Conteneures.Find(ctx, "navire_id = ?", navireID)
}

func (s *Store) ConteneuresOnLand(ctx context.Context) ([]models.Conteneure, error) {
	return s.Conteneures.Find(ctx, "type_conteneur = ?", models.OnLand)
}

// HistoriqueOf lists the moves of an existing container, oldest first.
func (s *Store) HistoriqueOf(ctx context.Context, conteneureID string) ([]models.HistoriqueConteneure, error) {
	ok, err := s.Conteneures.Exists(ctx, conteneureID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	items := []models.HistoriqueConteneure{}
	err = s.DB.WithContext(ctx).Where("conteneure_id = ?", conteneureID).Order("date_changement, id").Find(&items).Error
	return items, translate(err)
}

// --- Operations ---

func (s *Store) OperationsOf(ctx context.Context, escaleID string) ([]models.Operation, error) {
	return s.Operations.Find(ctx, "escale_id = ?", escaleID)
}

func (s *Store) LinesOf(ctx context.Context, operationID string) ([]models.OperationConteneure, error) {
	return s.OperationConteneures.Find(ctx, "operation_id = ?", operationID)
}

// --- Equipes ---

// AddPersonnel links an existing personnel to an existing equipe.
func (s *Store) AddPersonnel(ctx context.Context, equipeID, matricule string) error {
	return s.Tx(ctx, func(tx *Store) error {
		e, err := tx.Equipes.Get(ctx, equipeID)
		if err != nil {
			return err
		}
		p, err := tx.Personnels.Get(ctx, matricule)
		if err != nil {
			return err
		}
		return translate(tx.DB.Model(e).Association("Personnels").Append(p))
	})
}

func (s *Store) RemovePersonnel(ctx context.Context, equipeID, matricule string) error {
	return s.Tx(ctx, func(tx *Store) error {
		e, err := tx.Equipes.Get(ctx, equipeID)
		if err != nil {
			return err
		}
		p, err := tx.Personnels.Get(ctx, matricule)
		if err != nil {
			return err
		}
		return translate(tx.DB.Model(e).Association("Personnels").Delete(p))
	})
}

func (s *Store) AddSoustraiteure(ctx context.Context, equipeID, matricule string) error {
	return s.Tx(ctx, func(tx *Store) error {
		e, err := tx.Equipes.Get(ctx, equipeID)
		if err != nil {
			return err
		}
		st, err := tx.Soustraiteures.Get(ctx, matricule)
		if err != nil {
			return err
		}
		return translate(tx.DB.Model(e).Association("Soustraiteures").Append(st))
	})
}

func (s *Store) RemoveSoustraiteure(ctx context.Context, equipeID, matricule string) error {
	return s.Tx(ctx, func(tx *Store) error {
		e, err := tx.Equipes.Get(ctx, equipeID)
		if err != nil {
			return err
		}
		st, err := tx.Soustraiteures.Get(ctx, matricule)
		if err != nil {
			return err
		}
		return translate(tx.DB.Model(e).Association("Soustraiteures").Delete(st))
	})
}

// DeleteEquipe removes the equipe and its membership rows.
func (s *Store) DeleteEquipe(ctx context.Context, id string) error {
	return s.Tx(ctx, func(tx *Store) error {
		e, err := tx.Equipes.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DB.Model(e).Association("Personnels").Clear(); err != nil {
			return translate(err)
		}
		if err := tx.DB.Model(e).Association("Soustraiteures").Clear(); err != nil {
			return translate(err)
		}
		return tx.Equipes.Delete(ctx, id)
	})
}

// DeletePersonnel removes a personnel from every equipe, then deletes it.
func (s *Store) DeletePersonnel(ctx context.Context, matricule string) error {
	return s.Tx(ctx, func(tx *Store) error {
		if err := tx.DB.Exec("DELETE FROM equipe_personnels WHERE personnel_matricule = ?", matricule).Error; err != nil {
			return translate(err)
		}
		return tx.Personnels.Delete(ctx, matricule)
	})
}

func (s *Store) DeleteSoustraiteure(ctx context.Context, matricule string) error {
	return s.Tx(ctx, func(tx *Store) error {
		if err := tx.DB.Exec("DELETE FROM equipe_soustraiteures WHERE soustraiteure_matricule = ?", matricule).Error; err != nil {
			return translate(err)
		}
		return tx.Soustraiteures.Delete(ctx, matricule)
	})
}

// --- Users ---

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserByResetToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("reset_token = ?", token).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// SaveUser persists every column of u, creating it when ID is zero.
func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	return translate(s.DB.WithContext(ctx).Save(u).Error)
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
