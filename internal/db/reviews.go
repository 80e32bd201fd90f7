package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateReview inserts review. Associations that were never saved are
// inserted first; saved ones are only referenced by ID, so a customer or
// item deleted in the meantime fails the foreign key check instead of
// being written back.
func CreateReview(tx *gorm.DB, review *Review) error {
	if c := review.Customer; c != nil {
		if c.ID == 0 {
			if err := tx.Create(c).Error; err != nil {
				return err
			}
		}
		id := c.ID
		review.CustomerID = &id
	}

	if i := review.Item; i != nil {
		if i.ID == 0 {
			if err := tx.Create(i).Error; err != nil {
				return err
			}
		}
		id := i.ID
		review.ItemID = &id
	}

	return tx.Omit(clause.Associations).Create(review).Error
}
