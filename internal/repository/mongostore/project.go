package mongostore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type projectDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Slug            string             `bson:"slug"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description"`
	FullDescription string             `bson:"fullDescription,omitempty"`
	Category        string             `bson:"category"`
	Status          string             `bson:"status"`
	Images          []string           `bson:"images"`
	ThumbnailImage  string             `bson:"thumbnailImage"`
	Location        string             `bson:"location"`
	Year            int                `bson:"year"`
	Client          string             `bson:"client,omitempty"`
	Area            *float64           `bson:"area,omitempty"`
	Budget          *float64           `bson:"budget,omitempty"`
	Tags            []string           `bson:"tags"`
	Featured        bool               `bson:"featured"`
	Published       bool               `bson:"published"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func toProjectDoc(p *model.Project) projectDoc {
	return projectDoc{
		Slug:            p.Slug,
		Title:           p.Title,
		Description:     p.Description,
		FullDescription: p.FullDescription,
		Category:        p.Category,
		Status:          p.Status,
		Images:          nonNil(p.Images),
		ThumbnailImage:  p.ThumbnailImage,
		Location:        p.Location,
		Year:            p.Year,
		Client:          p.Client,
		Area:            p.Area,
		Budget:          p.Budget,
		Tags:            nonNil(p.Tags),
		Featured:        p.Featured,
		Published:       p.Published,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (d projectDoc) model() *model.Project {
	return &model.Project{
		ID:              d.ID.Hex(),
		Slug:            d.Slug,
		Title:           d.Title,
		Description:     d.Description,
		FullDescription: d.FullDescription,
		Category:        d.Category,
		Status:          d.Status,
		Images:          nonNil(d.Images),
		ThumbnailImage:  d.ThumbnailImage,
		Location:        d.Location,
		Year:            d.Year,
		Client:          d.Client,
		Area:            d.Area,
		Budget:          d.Budget,
		Tags:            nonNil(d.Tags),
		Featured:        d.Featured,
		Published:       d.Published,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// projectFilter translates f into a query document. Search is a
// case-insensitive substring match over title, description, location and tags.
func projectFilter(f model.ProjectFilter) bson.D {
	q := bson.D{}
	if f.Published != nil {
		q = append(q, bson.E{Key: "published", Value: *f.Published})
	}
	if f.Category != "" {
		q = append(q, bson.E{Key: "category", Value: f.Category})
	}
	if f.Status != "" {
		q = append(q, bson.E{Key: "status", Value: f.Status})
	}
	if f.Featured != nil {
		q = append(q, bson.E{Key: "featured", Value: *f.Featured})
	}
	if f.Year != nil {
		q = append(q, bson.E{Key: "year", Value: *f.Year})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		q = append(q, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "location", Value: re}},
			bson.D{{Key: "tags", Value: re}},
		}})
	}
	return q
}

func projectSort(s model.ProjectSort) bson.D {
	dir := 1
	if s.Desc {
		dir = -1
	}
	switch s.Field {
	case "createdAt":
		return bson.D{{Key: "createdAt", Value: dir}, {Key: "_id", Value: -1}}
	case "title":
		return bson.D{{Key: "title", Value: dir}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "year", Value: dir}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}

// ProjectRepository is the MongoDB repository.ProjectRepository.
type ProjectRepository struct {
	coll *mongo.Collection
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

func (r *ProjectRepository) List(ctx context.Context, f model.ProjectFilter, s model.ProjectSort, limit, offset int) ([]*model.Project, error) {
	opts := options.Find().
		SetSort(projectSort(s)).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, projectFilter(f), opts)
	if err != nil {
		return nil, err
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *ProjectRepository) Count(ctx context.Context, f model.ProjectFilter) (int, error) {
	n, err := r.coll.CountDocuments(ctx, projectFilter(f))
	return int(n), err
}

func (r *ProjectRepository) findOne(ctx context.Context, filter bson.D) (*model.Project, error) {
	var d projectDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string) (*model.Project, error) {
	return r.findOne(ctx, bson.D{{Key: "slug", Value: slug}})
}

func (r *ProjectRepository) ListCategories(ctx context.Context) ([]model.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "published", Value: true}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Category string `bson:"_id"`
		Count    int    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]model.CategoryCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.CategoryCount{Category: row.Category, Count: row.Count})
	}
	return out, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	now := time.Now().UTC()
	doc := toProjectDoc(p)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	p.ID = doc.ID.Hex()
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	oid, err := objectID(p.ID)
	if err != nil {
		return err
	}
	doc := toProjectDoc(p)
	doc.UpdatedAt = time.Now().UTC()
	set := bson.D{
		{Key: "slug", Value: doc.Slug},
		{Key: "title", Value: doc.Title},
		{Key: "description", Value: doc.Description},
		{Key: "fullDescription", Value: doc.FullDescription},
		{Key: "category", Value: doc.Category},
		{Key: "status", Value: doc.Status},
		{Key: "images", Value: doc.Images},
		{Key: "thumbnailImage", Value: doc.ThumbnailImage},
		{Key: "location", Value: doc.Location},
		{Key: "year", Value: doc.Year},
		{Key: "client", Value: doc.Client},
		{Key: "area", Value: doc.Area},
		{Key: "budget", Value: doc.Budget},
		{Key: "tags", Value: doc.Tags},
		{Key: "featured", Value: doc.Featured},
		{Key: "published", Value: doc.Published},
		{Key: "updatedAt", Value: doc.UpdatedAt},
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	p.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) ToggleFeatured(ctx context.Context, id string) (*model.Project, error) {
	return r.toggle(ctx, id, "featured")
}

func (r *ProjectRepository) TogglePublished(ctx context.Context, id string) (*model.Project, error) {
	return r.toggle(ctx, id, "published")
}

// toggle flips field server-side with an update pipeline so concurrent
// toggles never lose a write.
func (r *ProjectRepository) toggle(ctx context.Context, id, field string) (*model.Project, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: field, Value: bson.D{{Key: "$not", Value: bson.A{"$" + field}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
	var d projectDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}
