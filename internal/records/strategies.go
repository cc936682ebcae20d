package records

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"server/internal/domain"
)

// strategy is one candidate (filter shape, id type) combination. Legacy
// producers stored subtopics as nested array elements or flat documents,
// keyed by string or native ObjectID under either `_id` or `id`, so
// resolution tries each shape in a fixed priority order and stops at the
// first match. filter reports ok=false when the identifier cannot take the
// strategy's id type (an invalid ObjectID is an expected skip, not an error).
type strategy struct {
	name     string
	location domain.Location
	filter   func(identifier string) (bson.M, bool)
}

// strategies is the canonical resolution order. The order is load-bearing:
// retries must re-match the same document, and tests pin the priority of
// nested-string matches over top-level native-id matches.
var strategies = []strategy{
	{
		name:     "nested-string-under-_id",
		location: domain.LocationNestedUnit,
		filter: func(id string) (bson.M, bool) {
			return bson.M{"units._id": id}, true
		},
	},
	{
		name:     "nested-string-under-id",
		location: domain.LocationNestedUnit,
		filter: func(id string) (bson.M, bool) {
			return bson.M{"units.id": id}, true
		},
	},
	{
		name:     "nested-objectid-under-_id",
		location: domain.LocationNestedUnit,
		filter: func(id string) (bson.M, bool) {
			oid, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return nil, false
			}
			return bson.M{"units._id": oid}, true
		},
	},
	{
		name:     "nested-objectid-under-id",
		location: domain.LocationNestedUnit,
		filter: func(id string) (bson.M, bool) {
			oid, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return nil, false
			}
			return bson.M{"units.id": oid}, true
		},
	},
	{
		name:     "top-level-objectid",
		location: domain.LocationMainDocument,
		filter: func(id string) (bson.M, bool) {
			oid, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return nil, false
			}
			return bson.M{"_id": oid}, true
		},
	},
	{
		name:     "top-level-string",
		location: domain.LocationMainDocument,
		filter: func(id string) (bson.M, bool) {
			return bson.M{"_id": id}, true
		},
	},
}

// parentFilters are the shapes tried when appending a nested unit under a
// parent document: native id first, then verbatim string.
func parentFilters(parentID string) []bson.M {
	var filters []bson.M
	if oid, err := primitive.ObjectIDFromHex(parentID); err == nil {
		filters = append(filters, bson.M{"_id": oid})
	}
	return append(filters, bson.M{"_id": parentID})
}
