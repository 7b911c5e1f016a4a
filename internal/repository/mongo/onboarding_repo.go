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

const onboardingCollectionName = "onboardings"

// mongoOnboardingRepository implements repository.OnboardingRepository using MongoDB.
type mongoOnboardingRepository struct {
	collection *mongo.Collection
}

// NewMongoOnboardingRepository creates a new instance of mongoOnboardingRepository.
func NewMongoOnboardingRepository(db *mongo.Database) repository.OnboardingRepository {
	return &mongoOnboardingRepository{
		collection: db.Collection(onboardingCollectionName),
	}
}

// Upsert creates or replaces the athlete's pending attempt. Evaluate and
// create calls are repeatable, so the pending draft is simply overwritten;
// a confirmed attempt is never touched.
func (r *mongoOnboardingRepository) Upsert(ctx context.Context, onboarding *domain.Onboarding) error {
	now := time.Now().UTC()
	onboarding.UpdatedAt = now
	if onboarding.Status == "" {
		onboarding.Status = domain.OnboardingPending
	}

	filter := bson.M{
		"athleteId": onboarding.AthleteID,
		"status":    domain.OnboardingPending,
	}
	update := bson.M{
		"$set": bson.M{
			"attemptId":      onboarding.AttemptID,
			"profile":        onboarding.Profile,
			"recommendation": onboarding.Recommendation,
			"status":         onboarding.Status,
			"updatedAt":      onboarding.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"athleteId": onboarding.AthleteID,
			"createdAt": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetPendingByAthleteID retrieves the athlete's pending attempt.
func (r *mongoOnboardingRepository) GetPendingByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.Onboarding, error) {
	return r.getOne(ctx, bson.M{"athleteId": athleteID, "status": domain.OnboardingPending})
}

// GetLatestByAthleteID retrieves the most recently updated attempt regardless
// of status.
func (r *mongoOnboardingRepository) GetLatestByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.Onboarding, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	var onboarding domain.Onboarding
	err := r.collection.FindOne(ctx, bson.M{"athleteId": athleteID}, opts).Decode(&onboarding)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &onboarding, nil
}

// Confirm moves the pending attempt to confirmed in a single conditional
// update. The status precondition in the filter is what makes confirm
// at-most-once: a second confirm matches nothing and reports ErrConflict.
func (r *mongoOnboardingRepository) Confirm(ctx context.Context, athleteID primitive.ObjectID, selection domain.CycleSelection) (*domain.Onboarding, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"athleteId": athleteID,
		"status":    domain.OnboardingPending,
	}
	update := bson.M{
		"$set": bson.M{
			"selection":   selection,
			"status":      domain.OnboardingConfirmed,
			"confirmedAt": now,
			"updatedAt":   now,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var onboarding domain.Onboarding
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&onboarding)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// No pending attempt. Distinguish "never evaluated" from
			// "already confirmed".
			if _, lookupErr := r.GetLatestByAthleteID(ctx, athleteID); lookupErr == nil {
				return nil, repository.ErrConflict
			}
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &onboarding, nil
}

// Complete marks the athlete's confirmed attempt as completed.
func (r *mongoOnboardingRepository) Complete(ctx context.Context, athleteID primitive.ObjectID) error {
	filter := bson.M{
		"athleteId": athleteID,
		"status":    domain.OnboardingConfirmed,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.OnboardingCompleted,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoOnboardingRepository) getOne(ctx context.Context, filter bson.M) (*domain.Onboarding, error) {
	var onboarding domain.Onboarding
	err := r.collection.FindOne(ctx, filter).Decode(&onboarding)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &onboarding, nil
}

// EnsureOnboardingIndexes creates necessary indexes for the onboardings collection.
func EnsureOnboardingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "attemptId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
