package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/quizgrid/pkg/quiz"
)

const mongoCollection = "quizzes"

// Mongo stores one document per quiz, keyed by the quiz id.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongo connects to uri and selects database (default "quizgrid").
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	if database == "" {
		database = "quizgrid"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	coll := client.Database(database).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Mongo{client: client, coll: coll, now: time.Now}, nil
}

func normalize(q *quiz.Quiz) *quiz.Quiz {
	if q.Components == nil {
		q.Components = []quiz.Component{}
	}
	return q
}

func (s *Mongo) Get(ctx context.Context, id string) (*quiz.Quiz, error) {
	var q quiz.Quiz
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return normalize(&q), nil
}

func (s *Mongo) List(ctx context.Context) ([]*quiz.Quiz, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	var docs []*quiz.Quiz
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	for _, q := range docs {
		normalize(q)
	}
	return docs, nil
}

func (s *Mongo) Create(ctx context.Context, title string) (*quiz.Quiz, error) {
	// Mongo keeps millisecond precision.
	q := quiz.New(quiz.NewID(), title, s.now().Truncate(time.Millisecond))
	if _, err := s.coll.InsertOne(ctx, q); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return q, nil
}

func (s *Mongo) ReplaceComponents(ctx context.Context, id string, comps []quiz.Component) (*quiz.Quiz, error) {
	now := s.now().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"components": quiz.CloneComponents(comps),
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"title":      quiz.DefaultTitle,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var q quiz.Quiz
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&q); err != nil {
		return nil, fmt.Errorf("replace components: %w", err)
	}
	return normalize(&q), nil
}

func (s *Mongo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete quiz: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*Mongo)(nil)
