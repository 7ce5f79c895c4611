package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counter names. Rule ids must grow monotonically because rules are
// evaluated in ascending id order.
const (
	SeqForms       = "forms"
	SeqPages       = "pages"
	SeqQuestions   = "questions"
	SeqOptions     = "options"
	SeqRules       = "rules"
	SeqSubmissions = "submissions"
	SeqAnswers     = "answers"
)

// CounterRepo allocates monotonically increasing int64 ids per sequence
type CounterRepo interface {
	// Next reserves n consecutive ids and returns the first one
	Next(ctx context.Context, seq string, n int64) (int64, error)
}

type counterRepo struct {
	collection *mongo.Collection
}

// NewCounterRepo creates a counter repository on the "counters" collection
func NewCounterRepo(db *mongo.Database) CounterRepo {
	return &counterRepo{
		collection: db.Collection("counters"),
	}
}

func (r *counterRepo) Next(ctx context.Context, seq string, n int64) (int64, error) {
	if n <= 0 {
		return 0, errors.New("counter: n must be positive")
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Value int64 `bson:"value"`
	}
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": seq},
		bson.M{"$inc": bson.M{"value": n}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("counter %s: %w", seq, err)
	}
	return doc.Value - n + 1, nil
}
