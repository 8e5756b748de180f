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

// CommentRepository persists Comment aggregates, replies included.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	ToggleReaction(ctx context.Context, id string, kind models.ReactionKind, userID uint, now time.Time) (*models.Comment, error)
	ToggleReplyReaction(ctx context.Context, id string, replyID primitive.ObjectID, kind models.ReactionKind, userID uint, now time.Time) (*models.Comment, error)
	AddReply(ctx context.Context, id string, reply models.Reply) (*models.Comment, error)
	RemoveReply(ctx context.Context, id string, replyID primitive.ObjectID, userID uint) error
	DeleteComment(ctx context.Context, id string) error
	DeleteByPostID(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

type MongoCommentRepository struct {
	collection *mongo.Collection
}

func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.Likes == nil {
		comment.Likes = []models.Reaction{}
	}
	if comment.Dislikes == nil {
		comment.Dislikes = []models.Reaction{}
	}
	if comment.Replies == nil {
		comment.Replies = []models.Reply{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := parseObjectID(id, models.ErrCommentNotFound)
	if err != nil {
		return nil, err
	}
	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID returns a post's comments, oldest first.
func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *MongoCommentRepository) ToggleReaction(ctx context.Context, id string, kind models.ReactionKind, userID uint, now time.Time) (*models.Comment, error) {
	objID, err := parseObjectID(id, models.ErrCommentNotFound)
	if err != nil {
		return nil, err
	}
	set := reactionFields("$", kind, userID, now)
	set["updated_at"] = now

	var comment models.Comment
	if err := toggleDocument(ctx, r.collection, bson.M{"_id": objID}, set, &comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// ToggleReplyReaction flips userID's kind reaction on one reply, leaving
// the comment's other replies untouched, in one atomic write.
func (r *MongoCommentRepository) ToggleReplyReaction(ctx context.Context, id string, replyID primitive.ObjectID, kind models.ReactionKind, userID uint, now time.Time) (*models.Comment, error) {
	objID, err := parseObjectID(id, models.ErrCommentNotFound)
	if err != nil {
		return nil, err
	}
	set := replyReactionFields(replyID, kind, userID, now)
	set["updated_at"] = now

	var comment models.Comment
	err = toggleDocument(ctx, r.collection, bson.M{"_id": objID, "replies._id": replyID}, set, &comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.missingReply(ctx, objID)
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *MongoCommentRepository) AddReply(ctx context.Context, id string, reply models.Reply) (*models.Comment, error) {
	objID, err := parseObjectID(id, models.ErrCommentNotFound)
	if err != nil {
		return nil, err
	}
	update := bson.M{
		"$push": bson.M{"replies": reply},
		"$set":  bson.M{"updated_at": reply.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// RemoveReply pulls a reply authored by userID. When nothing matches, the
// stored comment tells whether the reply is missing or someone else's.
func (r *MongoCommentRepository) RemoveReply(ctx context.Context, id string, replyID primitive.ObjectID, userID uint) error {
	objID, err := parseObjectID(id, models.ErrCommentNotFound)
	if err != nil {
		return err
	}
	filter := bson.M{
		"_id":     objID,
		"replies": bson.M{"$elemMatch": bson.M{"_id": replyID, "user_id": userID}},
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$pull": bson.M{"replies": bson.M{"_id": replyID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	comment, err := r.GetCommentByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := comment.RemoveReply(replyID, userID); err != nil {
		return err
	}
	return models.ErrReplyNotFound
}

func (r *MongoCommentRepository) missingReply(ctx context.Context, commentID primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": commentID})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrCommentNotFound
	}
	return models.ErrReplyNotFound
}

func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id string) error {
	objID, err := parseObjectID(id, models.ErrCommentNotFound)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrCommentNotFound
	}
	return nil
}

func (r *MongoCommentRepository) DeleteByPostID(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
