package scope

import "gorm.io/gorm"

// ExcludeSoftDelete filters soft-deleted rows. Needed for raw Table() queries
// where gorm does not add the clause itself.
func ExcludeSoftDelete(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}
