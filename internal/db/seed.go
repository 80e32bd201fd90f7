package db

import (
	"fmt"
)

// SeedDemo inserts a small demo catalog if the customers table is empty
func SeedDemo(db *DB) error {
	var count int64
	if err := db.Model(&Customer{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count customers: %w", err)
	}
	if count > 0 {
		return nil
	}

	ada := NewCustomer("Ada")
	grace := NewCustomer("Grace")
	widget := NewItem("Widget", 9.99)
	gadget := NewItem("Gadget", 24.5)

	for _, c := range []*Customer{ada, grace} {
		if err := db.Create(c).Error; err != nil {
			return fmt.Errorf("failed to seed customer: %w", err)
		}
	}
	for _, i := range []*Item{widget, gadget} {
		if err := db.Create(i).Error; err != nil {
			return fmt.Errorf("failed to seed item: %w", err)
		}
	}

	reviews := []*Review{
		NewReview("Great", ada, widget),
		NewReview("Meh", ada, nil),
		NewReview("Sturdy and cheap", grace, gadget),
		NewReview("Arrived broken", nil, widget),
	}
	for _, r := range reviews {
		if err := CreateReview(db.DB, r); err != nil {
			return fmt.Errorf("failed to seed review: %w", err)
		}
	}

	return nil
}
