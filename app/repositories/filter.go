package repositories

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductFilter narrows and orders a catalog listing.
type ProductFilter struct {
	CategoryID   string
	CategoryName string
	Query        string
	Sort         string // "price_asc" or "price_desc"
	Page         int
	PerPage      int
}

// CategoryClause builds the match for a category selection against every
// encoding the field has been written with over time: ObjectID reference,
// hex string, plain name string, embedded {_id, name} document and the
// legacy categoryId / categoryName fields. Name matching is exact but
// case-insensitive.
func CategoryClause(categoryID, categoryName string) bson.M {
	var clauses []bson.M

	if categoryID != "" {
		shapes := []bson.M{
			{"category": categoryID},
			{"categoryId": categoryID},
			{"category._id": categoryID},
		}
		if oid, err := primitive.ObjectIDFromHex(categoryID); err == nil {
			shapes = append(shapes,
				bson.M{"category": oid},
				bson.M{"categoryId": oid},
				bson.M{"category._id": oid},
			)
		}
		clauses = append(clauses, bson.M{"$or": shapes})
	}

	if categoryName != "" {
		pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(categoryName) + "$", Options: "i"}
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"category": pattern},
			{"category.name": pattern},
			{"categoryName": pattern},
		}})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

// searchClause matches q case-insensitively against title and description.
func searchClause(q string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	return bson.M{"$or": []bson.M{
		{"title": pattern},
		{"description": pattern},
	}}
}

// buildProductQuery merges the category shim and free-text search.
func buildProductQuery(f ProductFilter) bson.M {
	query := CategoryClause(f.CategoryID, f.CategoryName)
	if f.Query == "" {
		return query
	}
	search := searchClause(f.Query)
	if len(query) == 0 {
		return search
	}
	if and, ok := query["$and"]; ok {
		query["$and"] = append(and.([]bson.M), search)
		return query
	}
	return bson.M{"$and": []bson.M{query, search}}
}
