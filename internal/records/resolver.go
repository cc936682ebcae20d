package records

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"server/internal/domain"
	"server/internal/infra"
)

// Options configures a Resolver.
type Options struct {
	Store             Store
	Logger            *infra.Logger
	DefaultCollection string
	Now               func() time.Time
}

// Resolver locates and mutates subtopic records whose storage shape is not
// self-describing: the identity may be a string or a native id, at the top
// level of a document or inside a units array. Every operation walks the
// fixed strategy order and stops at the first match, so repeated calls for
// the same identifier always land on the same document.
type Resolver struct {
	store             Store
	logger            *infra.Logger
	defaultCollection string
	now               func() time.Time
}

// CreateRecordInput is the payload for CreateRecord.
type CreateRecordInput struct {
	UnitName    string
	Description string
	ParentID    string
	Collection  string
	Metadata    map[string]any
}

// CreatedRecord tells callers which identifier a new record got and which
// shape it was stored under. The shape is informational: resolution stays
// shape-agnostic either way.
type CreatedRecord struct {
	ID         string          `json:"id"`
	Location   domain.Location `json:"location"`
	Collection string          `json:"collection"`
}

func NewResolver(opts Options) *Resolver {
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	defaultCollection := opts.DefaultCollection
	if defaultCollection == "" {
		defaultCollection = "subtopics"
	}
	return &Resolver{
		store:             opts.Store,
		logger:            logger,
		defaultCollection: defaultCollection,
		now:               now,
	}
}

// collections returns the search scope: the hinted collection first when
// given, then every other collection in the database.
func (r *Resolver) collections(ctx context.Context, scopeHint string) ([]string, error) {
	names, err := r.store.CollectionNames(ctx)
	if err != nil {
		return nil, err
	}
	hint := strings.TrimSpace(scopeHint)
	if hint == "" {
		return names, nil
	}
	ordered := make([]string, 0, len(names)+1)
	ordered = append(ordered, hint)
	for _, name := range names {
		if name != hint {
			ordered = append(ordered, name)
		}
	}
	return ordered, nil
}

// Locate finds where an identifier lives without mutating anything. A miss
// across all strategies and collections is a notFound outcome, not an error.
func (r *Resolver) Locate(ctx context.Context, identifier, scopeHint string) (*domain.ResolutionOutcome, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier is required", domain.ErrInvalidRecord)
	}
	cols, err := r.collections(ctx, scopeHint)
	if err != nil {
		return nil, err
	}
	for _, col := range cols {
		for _, st := range strategies {
			filter, ok := st.filter(identifier)
			if !ok {
				continue
			}
			found, err := r.store.FindOne(ctx, col, filter)
			if err != nil {
				return nil, err
			}
			if found {
				r.logger.Debug().
					Str("identifier", identifier).
					Str("collection", col).
					Str("strategy", st.name).
					Msg("record located")
				return &domain.ResolutionOutcome{
					Matched:    true,
					Location:   st.location,
					Collection: col,
				}, nil
			}
		}
	}
	return &domain.ResolutionOutcome{Matched: false, Location: domain.LocationNotFound}, nil
}

// AttachVideo sets the video URL (plus updatedAt and any extra metadata) on
// the first record a strategy matches. Only the winning strategy writes;
// nothing is attempted after a match, so a retry with identical values
// reports Matched=true with ModifiedCount=0. Exhausting every strategy in
// every collection yields a *domain.NotFoundError carrying the search scope.
func (r *Resolver) AttachVideo(ctx context.Context, identifier, videoURL string, metadata map[string]any, scopeHint string) (*domain.ResolutionOutcome, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier is required", domain.ErrInvalidRecord)
	}
	if strings.TrimSpace(videoURL) == "" {
		return nil, fmt.Errorf("%w: videoUrl is required", domain.ErrInvalidRecord)
	}
	cols, err := r.collections(ctx, scopeHint)
	if err != nil {
		return nil, err
	}
	for _, col := range cols {
		for _, st := range strategies {
			filter, ok := st.filter(identifier)
			if !ok {
				continue
			}
			res, err := r.store.UpdateOne(ctx, col, filter, r.videoUpdate(st.location, videoURL, metadata))
			if err != nil {
				return nil, err
			}
			if res.Matched > 0 {
				r.logger.Info().
					Str("identifier", identifier).
					Str("collection", col).
					Str("strategy", st.name).
					Int64("modified", res.Modified).
					Msg("video attached")
				return &domain.ResolutionOutcome{
					Matched:       true,
					Location:      st.location,
					Collection:    col,
					ModifiedCount: res.Modified,
				}, nil
			}
		}
	}
	return nil, &domain.NotFoundError{Identifier: identifier, Collections: cols}
}

// videoUpdate builds the $set document for a match at the given location.
// Nested hits write through the positional operator so sibling units and
// unrelated fields stay untouched.
func (r *Resolver) videoUpdate(location domain.Location, videoURL string, metadata map[string]any) bson.M {
	prefix := ""
	if location == domain.LocationNestedUnit {
		prefix = "units.$."
	}
	set := bson.M{
		prefix + "aiVideoUrl": videoURL,
		prefix + "updatedAt":  r.now(),
	}
	for k, v := range metadata {
		// Identity fields are never rewritten through a video attach.
		if k == "" || k == "_id" || k == "id" {
			continue
		}
		set[prefix+k] = v
	}
	return bson.M{"$set": set}
}

// CreateRecord inserts a new subtopic. With a parent identifier the payload
// becomes a units array element under that parent; otherwise it becomes a
// top-level document. New nested units get a string uuid under the `id`
// field, the canonical shape going forward.
func (r *Resolver) CreateRecord(ctx context.Context, input CreateRecordInput) (*CreatedRecord, error) {
	name := strings.TrimSpace(input.UnitName)
	if name == "" {
		return nil, fmt.Errorf("%w: unitName is required", domain.ErrInvalidRecord)
	}
	col := strings.TrimSpace(input.Collection)
	if col == "" {
		col = r.defaultCollection
	}
	now := r.now()

	if parentID := strings.TrimSpace(input.ParentID); parentID != "" {
		unit := domain.Unit{
			ID:          uuid.NewString(),
			UnitName:    name,
			Description: input.Description,
			AITestData:  input.Metadata,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		update := bson.M{
			"$push": bson.M{"units": unit},
			"$set":  bson.M{"updatedAt": now},
		}
		for _, filter := range parentFilters(parentID) {
			res, err := r.store.UpdateOne(ctx, col, filter, update)
			if err != nil {
				return nil, err
			}
			if res.Matched > 0 {
				r.logger.Info().
					Str("parent_id", parentID).
					Str("unit_id", unit.ID).
					Str("collection", col).
					Msg("nested record created")
				return &CreatedRecord{ID: unit.ID, Location: domain.LocationNestedUnit, Collection: col}, nil
			}
		}
		return nil, &domain.NotFoundError{Identifier: parentID, Collections: []string{col}}
	}

	doc := domain.Lesson{
		UnitName:    name,
		Description: input.Description,
		AITestData:  input.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := r.store.InsertOne(ctx, col, doc)
	if err != nil {
		return nil, err
	}
	r.logger.Info().Str("record_id", id).Str("collection", col).Msg("record created")
	return &CreatedRecord{ID: id, Location: domain.LocationMainDocument, Collection: col}, nil
}
