package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"saasadmin/internal/model"
)

const formsCollection = "forms"

// ErrVersionConflict means the stored form changed after it was loaded
var ErrVersionConflict = errors.New("form was modified concurrently")

// FormRepo handles MongoDB operations for forms. A form document embeds its
// pages, questions and rules, so loading it yields the fully hydrated graph
// the engine consumes.
type FormRepo interface {
	Create(ctx context.Context, form *model.Form) error
	GetByID(ctx context.Context, id int64) (*model.Form, error)
	GetByPublicKey(ctx context.Context, publicKey string) (*model.Form, error)
	ListByOrganization(ctx context.Context, organizationID int64) ([]*model.Form, error)
	// Update replaces the form only if the stored version still equals
	// form.Version, then advances it. Otherwise it returns ErrVersionConflict.
	Update(ctx context.Context, form *model.Form) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

type formRepo struct {
	collection *mongo.Collection
}

// NewFormRepo creates a new form repository
func NewFormRepo(db *mongo.Database) FormRepo {
	return &formRepo{
		collection: db.Collection(formsCollection),
	}
}

func (r *formRepo) Create(ctx context.Context, form *model.Form) error {
	now := time.Now()
	form.CreatedAt = now
	form.UpdatedAt = now
	form.Version = 1

	_, err := r.collection.InsertOne(ctx, form)
	return err
}

// GetByID returns deleted forms too, so historical submissions can still be
// rescored. It returns nil, nil when the form does not exist.
func (r *formRepo) GetByID(ctx context.Context, id int64) (*model.Form, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *formRepo) GetByPublicKey(ctx context.Context, publicKey string) (*model.Form, error) {
	return r.findOne(ctx, bson.M{"publicKey": publicKey, "isDeleted": false})
}

func (r *formRepo) findOne(ctx context.Context, filter bson.M) (*model.Form, error) {
	var form model.Form
	err := r.collection.FindOne(ctx, filter).Decode(&form)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *formRepo) ListByOrganization(ctx context.Context, organizationID int64) ([]*model.Form, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetProjection(bson.M{"pages": 0, "rules": 0})

	cursor, err := r.collection.Find(ctx, bson.M{"organizationId": organizationID, "isDeleted": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var forms []*model.Form
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *formRepo) Update(ctx context.Context, form *model.Form) error {
	loaded := form.Version
	form.Version++
	form.UpdatedAt = time.Now()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": form.ID, "version": loaded}, form)
	if err == nil && res.MatchedCount == 0 {
		err = ErrVersionConflict
	}
	if err != nil {
		form.Version = loaded
		return err
	}
	return nil
}

func (r *formRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "isDeleted": false},
		bson.M{
			"$set": bson.M{"isDeleted": true, "deletedAt": at, "updatedAt": at},
			"$inc": bson.M{"version": 1},
		},
	)
	return err
}
