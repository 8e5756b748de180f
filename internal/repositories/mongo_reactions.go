package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// reactionFields returns $set expressions that flip userID's kind reaction
// on the likes and dislikes lists under path: "$" for the document itself,
// "$$reply." inside the $map over replies. Both expressions read the lists
// as they were before the write, so adding one kind drops the other in the
// same update.
func reactionFields(path string, kind models.ReactionKind, userID uint, now time.Time) bson.M {
	own, other := "likes", "dislikes"
	if kind == models.ReactionDislike {
		own, other = other, own
	}
	uid := int64(userID)
	ownList := bson.M{"$ifNull": bson.A{path + own, bson.A{}}}
	otherList := bson.M{"$ifNull": bson.A{path + other, bson.A{}}}

	without := func(list bson.M) bson.M {
		return bson.M{"$filter": bson.M{
			"input": list,
			"as":    "re",
			"cond":  bson.M{"$ne": bson.A{"$$re.user_id", uid}},
		}}
	}
	present := bson.M{"$in": bson.A{uid, bson.M{"$map": bson.M{
		"input": ownList,
		"as":    "re",
		"in":    "$$re.user_id",
	}}}}
	added := bson.M{"$concatArrays": bson.A{ownList, bson.A{bson.M{"user_id": uid, "date": now}}}}

	return bson.M{
		own:   bson.M{"$cond": bson.A{present, without(ownList), added}},
		other: bson.M{"$cond": bson.A{present, otherList, without(otherList)}},
	}
}

// replyReactionFields applies reactionFields to the one reply with replyID.
func replyReactionFields(replyID primitive.ObjectID, kind models.ReactionKind, userID uint, now time.Time) bson.M {
	return bson.M{"replies": bson.M{"$map": bson.M{
		"input": "$replies",
		"as":    "reply",
		"in": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$$reply._id", replyID}},
			bson.M{"$mergeObjects": bson.A{"$$reply", reactionFields("$$reply.", kind, userID, now)}},
			"$$reply",
		}},
	}}}
}

// toggleDocument runs set as a single-stage update pipeline on the
// document matching filter and decodes the document as it is after the
// write. Concurrent toggles on one document serialize in the server.
func toggleDocument(ctx context.Context, coll *mongo.Collection, filter, set bson.M, out interface{}) error {
	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return coll.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(out)
}

func parseObjectID(id string, notFound error) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return objID, nil
}
