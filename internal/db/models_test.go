package db

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestDB(t *testing.T) *DB {
	database, err := Connect(DriverSQLite, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, EnsureSchema(database))
	return database
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestItemPayloadWithoutReviews(t *testing.T) {
	item := NewItem("Widget", 9.99)
	item.ID = 1

	payload := item.Payload(nil)
	assert.Equal(t, []string{}, payload.Reviews)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Widget","price":9.99,"reviews":[]}`, string(out))
}

func TestCustomerPayloadSkipsReviewsWithoutItem(t *testing.T) {
	ada := NewCustomer("Ada")
	ada.ID = 7
	widget := NewItem("Widget", 9.99)
	widget.ID = 3

	reviews := []Review{
		*NewReview("Great", ada, widget),
		*NewReview("Meh", ada, nil),
	}

	payload := ada.Payload(reviews)
	assert.Equal(t, uint(7), payload.ID)
	assert.Equal(t, "Ada", *payload.Name)
	assert.Equal(t, []*string{strPtr("Widget")}, payload.Items)
	assert.Equal(t, []string{"Great", "Meh"}, payload.Reviews)
	assert.LessOrEqual(t, len(payload.Items), len(payload.Reviews))

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"Ada","items":["Widget"],"reviews":["Great","Meh"]}`, string(out))
}

func TestCustomerPayloadKeepsUnnamedItem(t *testing.T) {
	customer := &Customer{ID: 1}
	reviews := []Review{{Comment: strPtr("ok"), Customer: customer, Item: &Item{ID: 2}}}

	payload := customer.Payload(reviews)
	require.Len(t, payload.Items, 1)
	assert.Nil(t, payload.Items[0])

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":null,"items":[null],"reviews":["ok"]}`, string(out))
}

func TestCustomerItems(t *testing.T) {
	customer := &Customer{ID: 3}
	a := &Item{ID: 1}
	b := &Item{ID: 2}
	reviews := []Review{
		{Customer: customer, Item: a},
		{Customer: customer},
		{Customer: customer, Item: b},
		{Customer: customer, Item: a},
	}

	items := customer.Items(reviews)
	assert.Equal(t, []*Item{a, b, a}, items)
}

func TestCustomerPayloadIgnoresOtherCustomers(t *testing.T) {
	ada := &Customer{ID: 1, Name: strPtr("Ada")}
	grace := &Customer{ID: 2, Name: strPtr("Grace")}
	widget := &Item{ID: 5, Name: strPtr("Widget")}
	gadget := &Item{ID: 6, Name: strPtr("Gadget")}

	reviews := []Review{
		*NewReview("Great", ada, widget),
		*NewReview("Sturdy", grace, gadget),
		*NewReview("Nobody's", nil, gadget),
	}

	payload := ada.Payload(reviews)
	assert.Equal(t, []string{"Great"}, payload.Reviews)
	assert.Equal(t, []*string{strPtr("Widget")}, payload.Items)

	assert.Empty(t, (&Customer{ID: 9}).Payload(reviews).Reviews)
}

func TestItemPayloadIgnoresOtherItems(t *testing.T) {
	ada := &Customer{ID: 1}
	widget := &Item{ID: 5, Name: strPtr("Widget")}
	gadget := &Item{ID: 6, Name: strPtr("Gadget")}

	reviews := []Review{
		*NewReview("Great", ada, widget),
		*NewReview("Sturdy", ada, gadget),
		*NewReview("Anonymous", nil, widget),
	}

	assert.Equal(t, []string{"Great", "Anonymous"}, widget.Payload(reviews).Reviews)
	assert.Equal(t, []string{"Sturdy"}, gadget.Payload(reviews).Reviews)
}

func TestPayloadMatchesUnsavedAssociations(t *testing.T) {
	ada := NewCustomer("Ada")
	widget := NewItem("Widget", 9.99)
	reviews := []Review{*NewReview("Great", ada, widget)}

	assert.Equal(t, []string{"Great"}, ada.Payload(reviews).Reviews)
	assert.Equal(t, []string{"Great"}, widget.Payload(reviews).Reviews)
}

func TestReviewPayloadStopsAtOneLevel(t *testing.T) {
	ada := &Customer{ID: 1, Name: strPtr("Ada")}
	widget := &Item{ID: 2, Name: strPtr("Widget")}
	review := NewReview("Great", ada, widget)
	review.ID = 5

	out, err := json.Marshal(review.Payload())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 5,
		"comment": "Great",
		"customer_id": 1,
		"item_id": 2,
		"customer": {"id": 1, "name": "Ada"},
		"item": {"id": 2, "name": "Widget", "price": null}
	}`, string(out))
}

func TestReviewPayloadOrphan(t *testing.T) {
	review := NewReview("", nil, nil)

	payload := review.Payload()
	assert.Nil(t, payload.Customer)
	assert.Nil(t, payload.Item)
	assert.Nil(t, payload.CustomerID)
	assert.Nil(t, payload.ItemID)
	assert.Equal(t, "", *payload.Comment)
}

func TestPayloadIsIdempotent(t *testing.T) {
	ada := &Customer{ID: 1, Name: strPtr("Ada")}
	reviews := []Review{*NewReview("Great", ada, &Item{ID: 2, Name: strPtr("Widget")})}

	assert.Equal(t, ada.Payload(reviews), ada.Payload(reviews))
}

func TestNewReviewForeignKeys(t *testing.T) {
	saved := &Customer{ID: 4}
	unsaved := NewItem("Gadget", 1)

	review := NewReview("fine", saved, unsaved)
	require.NotNil(t, review.CustomerID)
	assert.Equal(t, uint(4), *review.CustomerID)
	assert.Nil(t, review.ItemID)
	assert.Same(t, unsaved, review.Item)
}

func TestString(t *testing.T) {
	assert.Equal(t, "<Customer 1, Ada>", (&Customer{ID: 1, Name: strPtr("Ada")}).String())
	assert.Equal(t, "<Customer 2, None>", (&Customer{ID: 2}).String())

	item := NewItem("Widget", 9.99)
	item.ID = 3
	assert.Equal(t, "<Item 3, Widget, 9.99>", item.String())
	assert.Equal(t, "<Item 4, Crate, 10.0>", (&Item{ID: 4, Name: strPtr("Crate"), Price: floatPtr(10)}).String())
	assert.Equal(t, "<Item 0, None, None>", (&Item{}).String())

	assert.Equal(t, "<Review 0, Great>", NewReview("Great", nil, nil).String())
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		0:       "0.0",
		10:      "10.0",
		-3:      "-3.0",
		9.99:    "9.99",
		0.1:     "0.1",
		0.0001:  "0.0001",
		0.00001: "1e-05",
		1e15:    "1000000000000000.0",
		1e16:    "1e+16",
		2.5e20:  "2.5e+20",
	}

	for in, want := range tests {
		assert.Equal(t, want, formatFloat(in), "%v", in)
	}
	assert.Equal(t, "inf", formatFloat(math.Inf(1)))
	assert.Equal(t, "nan", formatFloat(math.NaN()))
}

func TestEnsureSchemaNamesForeignKeys(t *testing.T) {
	database := setupTestDB(t)
	migrator := database.Migrator()

	for _, table := range []string{"customers", "items", "reviews"} {
		assert.True(t, migrator.HasTable(table), table)
	}

	assert.True(t, migrator.HasConstraint(&Review{}, "fk_reviews_customer_id_customers"))
	assert.True(t, migrator.HasConstraint(&Review{}, "fk_reviews_item_id_items"))
	assert.False(t, migrator.HasConstraint(&Review{}, "fk_reviews_customer"))

	// Running it again leaves the schema alone
	assert.NoError(t, EnsureSchema(database))
}

func TestReviewCommentRequired(t *testing.T) {
	database := setupTestDB(t)

	err := database.Create(&Review{}).Error
	assert.Error(t, err)

	empty := NewReview("", nil, nil)
	require.NoError(t, database.Create(empty).Error)
	assert.NotZero(t, empty.ID)
}

func TestReviewForeignKeyEnforced(t *testing.T) {
	database := setupTestDB(t)

	missing := uint(999)
	err := database.Create(&Review{Comment: strPtr("ghost"), CustomerID: &missing}).Error
	assert.Error(t, err)
}

func TestSeedDemo(t *testing.T) {
	database := setupTestDB(t)

	require.NoError(t, SeedDemo(database))
	require.NoError(t, SeedDemo(database))

	var customers, items, reviews int64
	require.NoError(t, database.Model(&Customer{}).Count(&customers).Error)
	require.NoError(t, database.Model(&Item{}).Count(&items).Error)
	require.NoError(t, database.Model(&Review{}).Count(&reviews).Error)
	assert.Equal(t, int64(2), customers)
	assert.Equal(t, int64(2), items)
	assert.Equal(t, int64(4), reviews)

	var ada Customer
	require.NoError(t, database.Where("name = ?", "Ada").First(&ada).Error)

	var authored []Review
	require.NoError(t, database.Preload("Item").Where("customer_id = ?", ada.ID).Order("id").Find(&authored).Error)
	payload := ada.Payload(authored)
	assert.Equal(t, []*string{strPtr("Widget")}, payload.Items)
	assert.Equal(t, []string{"Great", "Meh"}, payload.Reviews)
}

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{":memory:", ":memory:?_foreign_keys=on"},
		{"catalog.db", "catalog.db?_foreign_keys=on"},
		{"file:catalog.db?cache=shared", "file:catalog.db?cache=shared&_foreign_keys=on"},
		{"catalog.db?_foreign_keys=off", "catalog.db?_foreign_keys=off"},
		{"catalog.db?_fk=1", "catalog.db?_fk=1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteDSN(tt.in), tt.in)
	}
}

func TestConnectUnsupportedDriver(t *testing.T) {
	_, err := Connect("mysql", "root@/catalog", zap.NewNop())
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestPing(t *testing.T) {
	database, err := Connect(DriverSQLite, ":memory:", zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, database.Ping())

	require.NoError(t, database.Close())
	assert.Error(t, database.Ping())
}
