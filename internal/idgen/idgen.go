// Package idgen allocates readable identifiers such as "NAV-003" from the
// id_sequences table. Every allocation is an UPDATE on the prefix's row inside a
// transaction, so concurrent callers (and several API instances) are serialized by
// the database row lock instead of an in-process counter.
package idgen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"port-ops-api-server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Format renders prefix and n as PREFIX-NNN.
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

// Parse extracts the numeric suffix of id if it carries prefix.
func Parse(prefix, id string) (int64, bool) {
	rest, ok := strings.CutPrefix(id, prefix+"-")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Next allocates the next identifier for prefix. When db is already a transaction
// the allocation joins it (as a savepoint) and is rolled back with it.
func Next(ctx context.Context, db *gorm.DB, prefix string) (string, error) {
	var value int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Sequence{Name: prefix}).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Sequence{}).Where("name = ?", prefix).Update("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return res.Error
		}
		var seq models.Sequence
		if err := tx.Where("name = ?", prefix).First(&seq).Error; err != nil {
			return err
		}
		value = seq.Value
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("allocate %s id: %w", prefix, err)
	}
	return Format(prefix, value), nil
}

// Prime raises the sequence for prefix to the highest suffix already stored in
// table.column. It never lowers a sequence.
func Prime(ctx context.Context, db *gorm.DB, prefix, table, column string) error {
	var ids []string
	if err := db.WithContext(ctx).Table(table).Where(column+" LIKE ?", prefix+"-%").Pluck(column, &ids).Error; err != nil {
		return fmt.Errorf("prime %s from %s: %w", prefix, table, err)
	}
	var max int64
	for _, id := range ids {
		if n, ok := Parse(prefix, id); ok && n > max {
			max = n
		}
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Sequence{Name: prefix}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Sequence{}).
			Where("name = ? AND value < ?", prefix, max).
			Update("value", max).Error
	})
}

// Source names the table and column holding ids for a prefix.
type Source struct {
	Prefix string
	Table  string
	Column string
}

// Sources lists every entity whose identifier comes from this package.
var Sources = []Source{
	{models.PrefixNavire, "navires", "id"},
	{models.PrefixEscale, "escales", "id"},
	{models.PrefixConteneure, "conteneures", "id"},
	{models.PrefixOperation, "operations", "id"},
	{models.PrefixOperationConteneure, "operation_conteneures", "id"},
	{models.PrefixHistorique, "historique_conteneures", "id"},
	{models.PrefixEquipe, "equipes", "id"},
	{models.PrefixPersonnel, "personnels", "matricule"},
	{models.PrefixSoustraiteure, "soustraiteures", "matricule"},
	{models.PrefixShift, "shifts", "id"},
	{models.PrefixEngin, "engins", "id"},
	{models.PrefixArret, "arrets", "id"},
}

// PrimeAll primes every known sequence.
func PrimeAll(ctx context.Context, db *gorm.DB) error {
	for _, s := range Sources {
		if err := Prime(ctx, db, s.Prefix, s.Table, s.Column); err != nil {
			return err
		}
	}
	return nil
}
