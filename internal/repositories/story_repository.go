package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoryRepository defines story operations. Expiry is applied in queries;
// expired stories are never deleted here.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	GetActiveStories(ctx context.Context, viewerID uint, friendIDs []uint, now time.Time) ([]models.Story, error)
	GetActiveStoriesByUser(ctx context.Context, userID uint, privacies []models.Privacy, now time.Time) ([]models.Story, error)
	CountByUsers(ctx context.Context, userIDs []uint) (map[uint]int64, error)
	ToggleReaction(ctx context.Context, id string, kind models.ReactionKind, userID uint, now time.Time) (*models.Story, error)
	DeleteStory(ctx context.Context, id string) error
}

type MongoStoryRepository struct {
	collection *mongo.Collection
}

func NewMongoStoryRepository(db *mongo.Database) *MongoStoryRepository {
	return &MongoStoryRepository{collection: db.Collection("stories")}
}

func (r *MongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	now := time.Now()
	story.ID = primitive.NewObjectID()
	story.CreatedAt = now
	story.ExpiresAt = now.Add(models.StoryLifetime)
	if story.Visibility == "" {
		story.Visibility = models.PrivacyFriends
	}
	if story.Likes == nil {
		story.Likes = []models.Reaction{}
	}
	if story.Dislikes == nil {
		story.Dislikes = []models.Reaction{}
	}
	_, err := r.collection.InsertOne(ctx, story)
	return err
}

func (r *MongoStoryRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	objID, err := parseObjectID(id, models.ErrStoryNotFound)
	if err != nil {
		return nil, err
	}
	var story models.Story
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&story); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrStoryNotFound
		}
		return nil, err
	}
	return &story, nil
}

// GetActiveStories returns unexpired stories visible to the viewer:
// their own, friends' non-private ones, and public ones.
func (r *MongoStoryRepository) GetActiveStories(ctx context.Context, viewerID uint, friendIDs []uint, now time.Time) ([]models.Story, error) {
	if friendIDs == nil {
		friendIDs = []uint{}
	}
	filter := bson.M{
		"expires_at": bson.M{"$gt": now},
		"$or": bson.A{
			bson.M{"user_id": viewerID},
			bson.M{"visibility": models.PrivacyPublic},
			bson.M{"visibility": models.PrivacyFriends, "user_id": bson.M{"$in": friendIDs}},
		},
	}
	return r.find(ctx, filter)
}

// GetActiveStoriesByUser returns userID's unexpired stories whose
// visibility is one of privacies.
func (r *MongoStoryRepository) GetActiveStoriesByUser(ctx context.Context, userID uint, privacies []models.Privacy, now time.Time) ([]models.Story, error) {
	filter := ownedWithPrivacy("user_id", userID, "visibility", privacies)
	filter["expires_at"] = bson.M{"$gt": now}
	return r.find(ctx, filter)
}

// CountByUsers counts all stories ever published, expired ones included.
func (r *MongoStoryRepository) CountByUsers(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	return countByUsers(ctx, r.collection, bson.M{"user_id": bson.M{"$in": userIDs}})
}

// ToggleReaction flips userID's kind reaction on an unexpired story in one
// atomic write.
func (r *MongoStoryRepository) ToggleReaction(ctx context.Context, id string, kind models.ReactionKind, userID uint, now time.Time) (*models.Story, error) {
	objID, err := parseObjectID(id, models.ErrStoryNotFound)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"_id": objID, "expires_at": bson.M{"$gt": now}}

	var story models.Story
	if err := toggleDocument(ctx, r.collection, filter, reactionFields("$", kind, userID, now), &story); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrStoryNotFound
		}
		return nil, err
	}
	return &story, nil
}

func (r *MongoStoryRepository) DeleteStory(ctx context.Context, id string) error {
	objID, err := parseObjectID(id, models.ErrStoryNotFound)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrStoryNotFound
	}
	return nil
}

func (r *MongoStoryRepository) find(ctx context.Context, filter bson.M) ([]models.Story, error) {
	opts := options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stories := []models.Story{}
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}
