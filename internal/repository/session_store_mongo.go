package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"history_quiz_backend/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type savedSessionDoc struct {
	UserID   int64     `bson:"userId"`
	Document string    `bson:"document"`
	Screen   string    `bson:"screen"`
	IsExam   bool      `bson:"isExam"`
	SavedAt  time.Time `bson:"savedAt"`
}

type MongoSessionStore struct {
	collection *mongo.Collection
}

func NewMongoSessionStore(db *mongo.Database) *MongoSessionStore {
	return &MongoSessionStore{collection: db.Collection("saved_sessions")}
}

func (r *MongoSessionStore) Save(ctx context.Context, userID uint, s *model.Session) error {
	doc, err := encodeSession(s)
	if err != nil {
		return err
	}

	row := savedSessionDoc{
		UserID:   int64(userID),
		Document: string(doc),
		Screen:   string(s.Screen),
		IsExam:   s.IsExamMode,
		SavedAt:  time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"userId": int64(userID)}, row, opts); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *MongoSessionStore) Load(ctx context.Context, userID uint) (*model.Session, error) {
	var row savedSessionDoc
	err := r.collection.FindOne(ctx, bson.M{"userId": int64(userID)}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSession([]byte(row.Document))
}

func (r *MongoSessionStore) Delete(ctx context.Context, userID uint) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"userId": int64(userID)})
	return err
}
