package rooms

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrRoomNotFound is returned when a room code does not exist
var ErrRoomNotFound = errors.New("room not found")

// RoomRepositoryInterface does everything related to storing rooms
type RoomRepositoryInterface interface {
	Add(ctx context.Context, room *Room) error
	FindByCode(ctx context.Context, code string) (*Room, error)
	FindAll(ctx context.Context) ([]Room, error)
	Remove(ctx context.Context, code string) error
}

// MongoDBRoomRepository does everything related to storing rooms in MongoDB
type MongoDBRoomRepository struct {
	DB *mongo.Collection
}

// Add inserts a room, keyed by its code
func (r *MongoDBRoomRepository) Add(ctx context.Context, room *Room) error {
	_, err := r.DB.InsertOne(ctx, room)
	if err != nil {
		return errors.Wrap(err, "could not insert room")
	}

	return nil
}

// FindByCode finds a room by its code
func (r *MongoDBRoomRepository) FindByCode(ctx context.Context, code string) (*Room, error) {
	room := Room{}

	err := r.DB.FindOne(ctx, bson.M{"_id": code}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRoomNotFound
		}
		return nil, errors.Wrap(err, "could not find room")
	}

	return &room, nil
}

// FindAll lists all rooms in creation order
func (r *MongoDBRoomRepository) FindAll(ctx context.Context) ([]Room, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"createdAt": 1})

	cursor, err := r.DB.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "could not query rooms")
	}

	rooms := []Room{}
	err = cursor.All(ctx, &rooms)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode rooms")
	}

	return rooms, nil
}

// Remove deletes a room document
func (r *MongoDBRoomRepository) Remove(ctx context.Context, code string) error {
	result, err := r.DB.DeleteOne(ctx, bson.M{"_id": code})
	if err != nil {
		return errors.Wrap(err, "could not delete room")
	}

	if result.DeletedCount != 1 {
		return ErrRoomNotFound
	}

	return nil
}
