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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint, privacies []models.Privacy, skip, limit int64) ([]models.Post, error)
	GetFeed(ctx context.Context, viewerID uint, friendIDs []uint, skip, limit int64) ([]models.Post, int64, error)
	CountByUsers(ctx context.Context, userIDs []uint) (map[uint]int64, error)
	ToggleReaction(ctx context.Context, id string, kind models.ReactionKind, userID uint, now time.Time) (*models.Post, error)
	AddCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error
	RemoveCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error
	DeletePost(ctx context.Context, id string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Privacy == "" {
		post.Privacy = models.PrivacyPublic
	}
	if post.Likes == nil {
		post.Likes = []models.Reaction{}
	}
	if post.Dislikes == nil {
		post.Dislikes = []models.Reaction{}
	}
	if post.CommentIDs == nil {
		post.CommentIDs = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parseObjectID(id, models.ErrPostNotFound)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByUserID pages through userID's posts whose privacy is one of
// privacies, newest first.
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID uint, privacies []models.Privacy, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, ownedWithPrivacy("user_id", userID, "privacy", privacies), findOptions)
}

// GetFeed returns posts the viewer may see, newest first: public posts,
// friends-only posts by friends, and everything the viewer wrote.
func (r *MongoPostRepository) GetFeed(ctx context.Context, viewerID uint, friendIDs []uint, skip, limit int64) ([]models.Post, int64, error) {
	if friendIDs == nil {
		friendIDs = []uint{}
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"privacy": models.PrivacyPublic},
		bson.M{"privacy": models.PrivacyFriends, "user_id": bson.M{"$in": friendIDs}},
		bson.M{"user_id": viewerID},
	}}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	posts, err := r.find(ctx, filter, findOptions)
	return posts, total, err
}

// CountByUsers returns the number of posts written by each user.
func (r *MongoPostRepository) CountByUsers(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	return countByUsers(ctx, r.collection, bson.M{"user_id": bson.M{"$in": userIDs}})
}

// ToggleReaction flips userID's kind reaction in one atomic write and
// returns the post as stored afterwards.
func (r *MongoPostRepository) ToggleReaction(ctx context.Context, id string, kind models.ReactionKind, userID uint, now time.Time) (*models.Post, error) {
	objID, err := parseObjectID(id, models.ErrPostNotFound)
	if err != nil {
		return nil, err
	}
	set := reactionFields("$", kind, userID, now)
	set["updated_at"] = now

	var post models.Post
	if err := toggleDocument(ctx, r.collection, bson.M{"_id": objID}, set, &post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) AddCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$push": bson.M{"comment_ids": commentID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrPostNotFound
	}
	return nil
}

func (r *MongoPostRepository) RemoveCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$pull": bson.M{"comment_ids": commentID},
	})
	return err
}

func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := parseObjectID(id, models.ErrPostNotFound)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrPostNotFound
	}
	return nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ownedWithPrivacy matches documents owned by userID whose privacy field
// holds one of privacies.
func ownedWithPrivacy(ownerField string, userID uint, privacyField string, privacies []models.Privacy) bson.M {
	if privacies == nil {
		privacies = []models.Privacy{}
	}
	return bson.M{ownerField: userID, privacyField: bson.M{"$in": privacies}}
}

func countByUsers(ctx context.Context, coll *mongo.Collection, match bson.M) (map[uint]int64, error) {
	cursor, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$user_id", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		UserID int64 `bson:"_id"`
		Count  int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[uint(row.UserID)] = row.Count
	}
	return counts, nil
}
