package model

import "time"

// RoomLock is the advisory lock document serializing booking commits for the
// room. The unique _id makes acquisition a single create-if-absent insert;
// expires_at backs a TTL index so a crashed holder cannot wedge the room.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	HolderID  string    `bson:"holder_id" json:"holder_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
