package db

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Item represents a purchasable item that customers review
type Item struct {
	ID    uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  *string  `gorm:"type:varchar" json:"name"`
	Price *float64 `json:"price"`
}

// TableName specifies the table name for Item model
func (Item) TableName() string {
	return "items"
}

// NewItem builds an unsaved item
func NewItem(name string, price float64) *Item {
	return &Item{Name: &name, Price: &price}
}

func (i *Item) String() string {
	price := "None"
	if i.Price != nil {
		price = formatFloat(*i.Price)
	}
	return fmt.Sprintf("<Item %d, %s, %s>", i.ID, text(i.Name), price)
}

// formatFloat writes f the way the reprs have always shown prices:
// shortest round-trip digits, a trailing ".0" on whole numbers, and
// exponent form outside [1e-4, 1e16).
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Customer represents a person who writes reviews
type Customer struct {
	ID   uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name *string `gorm:"type:varchar" json:"name"`
}

// TableName specifies the table name for Customer model
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer builds an unsaved customer
func NewCustomer(name string) *Customer {
	return &Customer{Name: &name}
}

func (c *Customer) String() string {
	return fmt.Sprintf("<Customer %d, %s>", c.ID, text(c.Name))
}

// Items projects the reviews authored by c onto their items, skipping
// reviews without one. Reviews must have their Item association loaded;
// reviews by other customers are ignored.
func (c *Customer) Items(reviews []Review) []*Item {
	items := make([]*Item, 0, len(reviews))
	for _, review := range c.authored(reviews) {
		if review.Item == nil {
			continue
		}
		items = append(items, review.Item)
	}
	return items
}

func (c *Customer) authored(reviews []Review) []Review {
	out := make([]Review, 0, len(reviews))
	for _, review := range reviews {
		if review.Customer == c || (review.CustomerID != nil && *review.CustomerID == c.ID) {
			out = append(out, review)
		}
	}
	return out
}

// Review links an optional customer to an optional item with a comment.
// Comment is a pointer so that a missing comment reaches the database as
// NULL and is rejected by the NOT NULL constraint.
type Review struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Comment    *string   `gorm:"type:varchar;not null" json:"comment"`
	CustomerID *uint     `json:"customer_id"`
	ItemID     *uint     `json:"item_id"`
	Customer   *Customer `json:"customer,omitempty"`
	Item       *Item     `json:"item,omitempty"`
}

// TableName specifies the table name for Review model
func (Review) TableName() string {
	return "reviews"
}

// NewReview builds an unsaved review. customer and item may be nil.
func NewReview(comment string, customer *Customer, item *Item) *Review {
	r := &Review{Comment: &comment, Customer: customer, Item: item}
	if customer != nil && customer.ID != 0 {
		id := customer.ID
		r.CustomerID = &id
	}
	if item != nil && item.ID != 0 {
		id := item.ID
		r.ItemID = &id
	}
	return r
}

func (i *Item) about(reviews []Review) []Review {
	out := make([]Review, 0, len(reviews))
	for _, review := range reviews {
		if review.Item == i || (review.ItemID != nil && *review.ItemID == i.ID) {
			out = append(out, review)
		}
	}
	return out
}

func (r *Review) String() string {
	return fmt.Sprintf("<Review %d, %s>", r.ID, text(r.Comment))
}

func text(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}
