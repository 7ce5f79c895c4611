package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"saasadmin/internal/model"
)

const submissionsCollection = "submissions"

// SubmissionRepo handles MongoDB operations for submissions. Answers and
// their values are embedded in the submission document.
type SubmissionRepo interface {
	Create(ctx context.Context, sub *model.Submission) error
	GetByID(ctx context.Context, id int64) (*model.Submission, error)
	ExistsForRespondent(ctx context.Context, formID int64, emailKey string) (bool, error)
	// ListByForm returns non-deleted submissions with id > afterID in ascending id order
	ListByForm(ctx context.Context, formID, afterID int64, limit int) ([]*model.Submission, error)
	// ListRecent returns one page of non-deleted submissions, newest first
	ListRecent(ctx context.Context, formID int64, offset, limit int) ([]*model.Submission, error)
	CountByForm(ctx context.Context, formID int64) (int64, error)
	TopByForm(ctx context.Context, formID int64, limit int) ([]*model.Submission, error)
	// UpdateScores persists only answer scores and totals, never answer values
	UpdateScores(ctx context.Context, subs []*model.Submission) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

type submissionRepo struct {
	collection *mongo.Collection
}

// NewSubmissionRepo creates a new submission repository
func NewSubmissionRepo(db *mongo.Database) SubmissionRepo {
	return &submissionRepo{
		collection: db.Collection(submissionsCollection),
	}
}

func (r *submissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, sub)
	return err
}

func (r *submissionRepo) GetByID(ctx context.Context, id int64) (*model.Submission, error) {
	var sub model.Submission
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "isDeleted": false}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) ExistsForRespondent(ctx context.Context, formID int64, emailKey string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"formId": formID, "emailKey": emailKey, "isDeleted": false},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *submissionRepo) ListByForm(ctx context.Context, formID, afterID int64, limit int) ([]*model.Submission, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	return r.find(ctx, bson.M{
		"formId":    formID,
		"isDeleted": false,
		"_id":       bson.M{"$gt": afterID},
	}, opts)
}

func (r *submissionRepo) ListRecent(ctx context.Context, formID int64, offset, limit int) ([]*model.Submission, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	return r.find(ctx, bson.M{"formId": formID, "isDeleted": false}, opts)
}

func (r *submissionRepo) CountByForm(ctx context.Context, formID int64) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"formId": formID, "isDeleted": false})
}

func (r *submissionRepo) TopByForm(ctx context.Context, formID int64, limit int) ([]*model.Submission, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "totalScore", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"answers": 0})

	return r.find(ctx, bson.M{"formId": formID, "isDeleted": false}, opts)
}

func (r *submissionRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Submission, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []*model.Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *submissionRepo) UpdateScores(ctx context.Context, subs []*model.Submission) error {
	if len(subs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(subs))
	for _, sub := range subs {
		set := bson.M{"totalScore": sub.TotalScore}
		for i, a := range sub.Answers {
			set[fmt.Sprintf("answers.%d.score", i)] = a.Score
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": sub.ID}).
			SetUpdate(bson.M{"$set": set}))
	}

	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *submissionRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": at}},
	)
	return err
}
