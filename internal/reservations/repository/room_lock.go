package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	reserrors "github.com/ye-spencer/ACMWebsitePort-sub000/internal/reservations/errors"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/config"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/model"
)

const (
	LockCollectionName = "Reservation_locks"
)

// RoomLockRepository implements the advisory lock serializing booking
// attempts for the room. The lock is a document with the room name as _id;
// InsertOne either takes the lock or fails with a duplicate key, which is
// how contention is detected. A TTL index on expires_at reaps locks left
// behind by a crashed holder.
type RoomLockRepository interface {
	Acquire(ctx context.Context, room string, holderID string) error
	Release(ctx context.Context, room string, holderID string) error
}

type mongoRoomLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoRoomLockRepository) Acquire(ctx context.Context, room string, holderID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := model.RoomLock{
		ID:        room,
		HolderID:  holderID,
		ExpiresAt: now.Add(r.cfg.LockTTL),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reserrors.ErrDuplicateKey
		}
		return fmt.Errorf("failed to acquire room lock: %w", err)
	}

	return nil
}

// Release only removes the lock if still held by holderID, so a holder
// whose lock expired and was taken by someone else cannot release theirs.
func (r *mongoRoomLockRepository) Release(ctx context.Context, room string, holderID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": room, "holder_id": holderID})
	if err != nil {
		return fmt.Errorf("failed to release room lock: %w", err)
	}

	return nil
}
