package mongostore

import (
	"context"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type contactDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Email       string             `bson:"email"`
	Phone       string             `bson:"phone,omitempty"`
	Company     string             `bson:"company,omitempty"`
	ProjectType string             `bson:"projectType,omitempty"`
	Budget      string             `bson:"budget,omitempty"`
	Timeline    string             `bson:"timeline,omitempty"`
	Location    string             `bson:"location,omitempty"`
	Subject     string             `bson:"subject"`
	Message     string             `bson:"message"`
	Status      string             `bson:"status"`
	IPAddress   string             `bson:"ipAddress,omitempty"`
	UserAgent   string             `bson:"userAgent,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d contactDoc) model() *model.ContactMessage {
	return &model.ContactMessage{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Email:       d.Email,
		Phone:       d.Phone,
		Company:     d.Company,
		ProjectType: d.ProjectType,
		Budget:      d.Budget,
		Timeline:    d.Timeline,
		Location:    d.Location,
		Subject:     d.Subject,
		Message:     d.Message,
		Status:      d.Status,
		IPAddress:   d.IPAddress,
		UserAgent:   d.UserAgent,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func contactFilter(status string) bson.D {
	if status == "" {
		return bson.D{}
	}
	return bson.D{{Key: "status", Value: status}}
}

// ContactRepository is the MongoDB repository.ContactRepository.
type ContactRepository struct {
	coll *mongo.Collection
}

var _ repository.ContactRepository = (*ContactRepository)(nil)

func (r *ContactRepository) Save(ctx context.Context, m *model.ContactMessage) error {
	now := time.Now().UTC()
	doc := contactDoc{
		ID:          primitive.NewObjectID(),
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		Company:     m.Company,
		ProjectType: m.ProjectType,
		Budget:      m.Budget,
		Timeline:    m.Timeline,
		Location:    m.Location,
		Subject:     m.Subject,
		Message:     m.Message,
		Status:      m.Status,
		IPAddress:   m.IPAddress,
		UserAgent:   m.UserAgent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	m.ID = doc.ID.Hex()
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

func (r *ContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	find := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	cur, err := r.coll.Find(ctx, contactFilter(opts.Status), find)
	if err != nil {
		return nil, err
	}
	var docs []contactDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.ContactMessage, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *ContactRepository) Count(ctx context.Context, status string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, contactFilter(status))
	return int(n), err
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d contactDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (r *ContactRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "status", Value: model.ContactStatusNew}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: model.ContactStatusRead},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d contactDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: status},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
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
