package db

// ItemPayload is the plain representation of an item and the comments written about it
type ItemPayload struct {
	ID      uint     `json:"id"`
	Name    *string  `json:"name"`
	Price   *float64 `json:"price"`
	Reviews []string `json:"reviews"`
}

// CustomerPayload is the plain representation of a customer, the names of
// the items it reviewed and its comments
type CustomerPayload struct {
	ID      uint      `json:"id"`
	Name    *string   `json:"name"`
	Items   []*string `json:"items"`
	Reviews []string  `json:"reviews"`
}

// CustomerRef is a customer nested in a review payload. It never carries reviews.
type CustomerRef struct {
	ID   uint    `json:"id"`
	Name *string `json:"name"`
}

// ItemRef is an item nested in a review payload. It never carries reviews.
type ItemRef struct {
	ID    uint     `json:"id"`
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// ReviewPayload is the plain representation of a review
type ReviewPayload struct {
	ID         uint         `json:"id"`
	Comment    *string      `json:"comment"`
	CustomerID *uint        `json:"customer_id"`
	ItemID     *uint        `json:"item_id"`
	Customer   *CustomerRef `json:"customer"`
	Item       *ItemRef     `json:"item"`
}

// Payload serializes the item with the reviews written about it. Reviews
// about other items are ignored.
func (i *Item) Payload(reviews []Review) ItemPayload {
	return ItemPayload{
		ID:      i.ID,
		Name:    i.Name,
		Price:   i.Price,
		Reviews: comments(i.about(reviews)),
	}
}

// Payload serializes the customer with the reviews it authored; reviews by
// other customers are ignored. Items follow the order of reviews and
// reviews without an item are skipped.
func (c *Customer) Payload(reviews []Review) CustomerPayload {
	items := c.Items(reviews)
	names := make([]*string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}

	return CustomerPayload{
		ID:      c.ID,
		Name:    c.Name,
		Items:   names,
		Reviews: comments(c.authored(reviews)),
	}
}

// Payload serializes the review with its loaded customer and item, one level deep.
func (r *Review) Payload() ReviewPayload {
	p := ReviewPayload{
		ID:         r.ID,
		Comment:    r.Comment,
		CustomerID: r.CustomerID,
		ItemID:     r.ItemID,
	}
	if r.Customer != nil {
		p.Customer = &CustomerRef{ID: r.Customer.ID, Name: r.Customer.Name}
	}
	if r.Item != nil {
		p.Item = &ItemRef{ID: r.Item.ID, Name: r.Item.Name, Price: r.Item.Price}
	}
	return p
}

func comments(reviews []Review) []string {
	out := make([]string, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, commentText(review.Comment))
	}
	return out
}

// commentText dereferences s; only unsaved reviews can have a nil comment.
func commentText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
