package db

import (
	"fmt"
)

// EnsureSchema creates the customers, items and reviews tables together
// with the review foreign keys. Existing tables are left as they are.
func EnsureSchema(db *DB) error {
	// Referenced tables first so the review constraints can be created
	if err := db.AutoMigrate(&Customer{}, &Item{}, &Review{}); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}
