package db

import (
	"fmt"

	"gorm.io/gorm/schema"
)

// NamingConvention keeps GORM's table and column names and names foreign
// keys fk_<table>_<column>_<referenced_table>, e.g. fk_reviews_item_id_items.
type NamingConvention struct {
	schema.NamingStrategy
}

// RelationshipFKName names the constraint after the first foreign key column of rel
func (n NamingConvention) RelationshipFKName(rel schema.Relationship) string {
	for _, ref := range rel.References {
		// polymorphic references have no primary key
		if ref.PrimaryKey == nil || ref.ForeignKey == nil {
			continue
		}
		return fmt.Sprintf("fk_%s_%s_%s",
			ref.ForeignKey.Schema.Table,
			ref.ForeignKey.DBName,
			ref.PrimaryKey.Schema.Table,
		)
	}
	return n.NamingStrategy.RelationshipFKName(rel)
}
