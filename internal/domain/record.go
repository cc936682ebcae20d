package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location names where a resolved record physically lives.
type Location string

const (
	LocationMainDocument Location = "mainDocument"
	LocationNestedUnit   Location = "nestedUnit"
	LocationNotFound     Location = "notFound"
)

// ResolutionOutcome reports how (and whether) an identifier was resolved.
// ModifiedCount is only meaningful for write operations; a matched update
// that changed nothing reports Matched=true with ModifiedCount=0.
type ResolutionOutcome struct {
	Matched       bool     `json:"matched"`
	Location      Location `json:"location"`
	Collection    string   `json:"collection,omitempty"`
	ModifiedCount int64    `json:"modifiedCount"`
}

// Unit is a subtopic stored as an element of a lesson document's units array.
// Legacy producers disagree on the identity field name (_id vs id) and on its
// type (string vs ObjectID), so both identity fields are declared and the
// resolver tries every combination.
type Unit struct {
	LegacyID    string         `bson:"_id,omitempty" json:"_id,omitempty"`
	ID          string         `bson:"id,omitempty" json:"id,omitempty"`
	UnitName    string         `bson:"unitName,omitempty" json:"unitName,omitempty"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	AIVideoURL  string         `bson:"aiVideoUrl,omitempty" json:"aiVideoUrl,omitempty"`
	AITestData  map[string]any `bson:"aiTestData,omitempty" json:"aiTestData,omitempty"`
	CreatedAt   time.Time      `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time      `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Lesson is a top-level subtopic document. Flat documents and nested units
// carry the same fields of interest; only the storage shape differs.
type Lesson struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UnitName    string             `bson:"unitName,omitempty" json:"unitName,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	AIVideoURL  string             `bson:"aiVideoUrl,omitempty" json:"aiVideoUrl,omitempty"`
	AITestData  map[string]any     `bson:"aiTestData,omitempty" json:"aiTestData,omitempty"`
	Units       []Unit             `bson:"units,omitempty" json:"units,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
