package mongo

import (
	"context"
	"errors"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const goalTypeCollectionName = "goal_types"

// mongoGoalTypeRepository implements repository.GoalTypeRepository using MongoDB.
type mongoGoalTypeRepository struct {
	collection *mongo.Collection
}

// NewMongoGoalTypeRepository creates a new instance of mongoGoalTypeRepository.
func NewMongoGoalTypeRepository(db *mongo.Database) repository.GoalTypeRepository {
	return &mongoGoalTypeRepository{
		collection: db.Collection(goalTypeCollectionName),
	}
}

// Create inserts a new goal type.
func (r *mongoGoalTypeRepository) Create(ctx context.Context, goalType *domain.GoalType) (primitive.ObjectID, error) {
	if goalType.Category == "" {
		return primitive.NilObjectID, errors.New("goal type category is required")
	}

	goalType.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	goalType.CreatedAt = now
	goalType.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, goalType)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// List returns goal types up to the given limit, sorted by category.
func (r *mongoGoalTypeRepository) List(ctx context.Context, limit int64) ([]domain.GoalType, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "subcategory", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var goalTypes []domain.GoalType
	if err = cursor.All(ctx, &goalTypes); err != nil {
		return nil, err
	}
	return goalTypes, nil
}

// GetByCategory retrieves a goal type by its category name.
func (r *mongoGoalTypeRepository) GetByCategory(ctx context.Context, category string) (*domain.GoalType, error) {
	var goalType domain.GoalType
	err := r.collection.FindOne(ctx, bson.M{"category": category}).Decode(&goalType)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &goalType, nil
}

// EnsureGoalTypeIndexes creates necessary indexes for the goal_types collection.
func EnsureGoalTypeIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "subcategory", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
