// server/internal/database/seeder.go
package database

import (
	"errors"
	"log"

	"port-ops-api-server/config"
	"port-ops-api-server/internal/auth"
	"port-ops-api-server/internal/models"

	"gorm.io/gorm"
)

// DefaultTypeConteneurs are the lookup rows every deployment starts with.
var DefaultTypeConteneurs = []models.TypeConteneur{
	{Nom: string(models.OnShip), Description: "Conteneur à bord d'un navire"},
	{Nom: string(models.OnLand), Description: "Conteneur à terre"},
}

// SeedTypeConteneurs inserts the default container types that are missing.
func SeedTypeConteneurs(db *gorm.DB) error {
	for _, tc := range DefaultTypeConteneurs {
		var existing models.TypeConteneur
		err := db.Where("nom = ?", tc.Nom).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		row := tc
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		log.Printf("seeded type conteneur %s", tc.Nom)
	}
	return nil
}

// SeedDemoUsers creates the demo admin and user accounts when they do not exist yet.
func SeedDemoUsers(db *gorm.DB, demo config.DemoConfig) error {
	accounts := []struct {
		email, password, role string
	}{
		{demo.AdminEmail, demo.AdminPassword, models.RoleAdmin},
		{demo.UserEmail, demo.UserPassword, models.RoleUser},
	}

	for _, a := range accounts {
		if a.email == "" {
			continue
		}
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", a.email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.Printf("demo account %s already exists, seeding skipped", a.email)
			continue
		}

		hashedPassword, err := auth.HashPassword(a.password)
		if err != nil {
			return err
		}
		user := models.User{Email: a.email, Nom: "Demo " + a.role, Password: hashedPassword, Role: a.role}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		log.Printf("demo account %s seeded", a.email)
	}
	return nil
}

// Seed runs every seeder.
func Seed(db *gorm.DB, cfg config.Config) error {
	if err := SeedTypeConteneurs(db); err != nil {
		return err
	}
	return SeedDemoUsers(db, cfg.Demo)
}
