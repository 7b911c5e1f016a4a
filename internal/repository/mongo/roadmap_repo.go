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

const roadmapCollectionName = "roadmaps"

// mongoRoadmapRepository implements repository.RoadmapRepository using MongoDB.
type mongoRoadmapRepository struct {
	collection *mongo.Collection
}

// NewMongoRoadmapRepository creates a new instance of mongoRoadmapRepository.
func NewMongoRoadmapRepository(db *mongo.Database) repository.RoadmapRepository {
	return &mongoRoadmapRepository{
		collection: db.Collection(roadmapCollectionName),
	}
}

// Save replaces the athlete's roadmap (one active roadmap per athlete;
// re-confirming after an abandoned attempt regenerates in place).
func (r *mongoRoadmapRepository) Save(ctx context.Context, roadmap *domain.Roadmap) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	if roadmap.ID == primitive.NilObjectID {
		roadmap.ID = primitive.NewObjectID()
		roadmap.CreatedAt = now
	}
	roadmap.UpdatedAt = now

	filter := bson.M{"athleteId": roadmap.AthleteID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, roadmap, opts)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return roadmap.ID, nil
}

// GetByAthleteID retrieves the athlete's roadmap.
func (r *mongoRoadmapRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.Roadmap, error) {
	var roadmap domain.Roadmap
	err := r.collection.FindOne(ctx, bson.M{"athleteId": athleteID}).Decode(&roadmap)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &roadmap, nil
}

// Update persists changes to an existing roadmap.
func (r *mongoRoadmapRepository) Update(ctx context.Context, roadmap *domain.Roadmap) error {
	roadmap.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": roadmap.ID}, roadmap)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListActive returns roadmaps that still have a non-completed cycle, for the
// nightly rollover job.
func (r *mongoRoadmapRepository) ListActive(ctx context.Context) ([]domain.Roadmap, error) {
	filter := bson.M{"cycles": bson.M{"$elemMatch": bson.M{"completed": false}}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roadmaps []domain.Roadmap
	if err = cursor.All(ctx, &roadmaps); err != nil {
		return nil, err
	}
	return roadmaps, nil
}

// EnsureRoadmapIndexes creates necessary indexes for the roadmaps collection.
func EnsureRoadmapIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
