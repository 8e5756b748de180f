package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct chat message stored in MongoDB
type Message struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SenderID   uint               `json:"sender_id" bson:"sender_id"`
	ReceiverID uint               `json:"receiver_id" bson:"receiver_id"`
	Body       string             `json:"body" bson:"body"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

type SendMessageRequest struct {
	To   uint   `json:"to" validate:"required"`
	Body string `json:"body" validate:"required,min=1,max=2000"`
}
