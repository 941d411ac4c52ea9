package tasks

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iconix/fortudo/pkg/logger"
)

// TaskRepositoryInterface is the persistence collaborator contract: the
// engine loads an ordered snapshot per room on activation and emits a full
// upsert or delete per mutation
type TaskRepositoryInterface interface {
	Upsert(ctx context.Context, task *Task) error
	Delete(ctx context.Context, roomID string, taskID string) error
	FindAllByRoom(ctx context.Context, roomID string) ([]Task, error)
}

// MongoDBTaskRepository does everything related to storing and finding tasks
type MongoDBTaskRepository struct {
	DB     *mongo.Collection
	Logger logger.Interface
}

// Upsert writes the full task document keyed by room and task id
func (s *MongoDBTaskRepository) Upsert(ctx context.Context, task *Task) error {
	_, err := s.DB.ReplaceOne(ctx,
		bson.M{"_id": task.ID, "roomId": task.RoomID},
		task,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, "could not upsert task")
	}

	return nil
}

// Delete removes a task document
func (s *MongoDBTaskRepository) Delete(ctx context.Context, roomID string, taskID string) error {
	result, err := s.DB.DeleteOne(ctx, bson.M{"_id": taskID, "roomId": roomID})
	if err != nil {
		return errors.Wrap(err, "could not delete task")
	}

	if result.DeletedCount != 1 {
		return errors.New("deleted count != 1")
	}

	return nil
}

// FindAllByRoom loads a room's snapshot in insertion order
func (s *MongoDBTaskRepository) FindAllByRoom(ctx context.Context, roomID string) ([]Task, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"createdAt": 1})

	cursor, err := s.DB.Find(ctx, bson.M{"roomId": roomID}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "could not query tasks")
	}

	tasks := []Task{}
	err = cursor.All(ctx, &tasks)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode tasks")
	}

	return tasks, nil
}

// RepositorySink subscribes to a Store and forwards every mutation to the
// persistence collaborator, invalidating the room snapshot cache as it goes
type RepositorySink struct {
	Repository TaskRepositoryInterface
	Cache      RoomDataCacheInterface
	Logger     logger.Interface
}

// OnTaskEvent forwards a single store mutation
func (s *RepositorySink) OnTaskEvent(event StoreEvent) {
	ctx := context.Background()

	var err error
	switch event.Type {
	case EventUpsert:
		err = s.Repository.Upsert(ctx, &event.Task)
	case EventDelete:
		err = s.Repository.Delete(ctx, event.Task.RoomID, event.Task.ID)
	}

	if err != nil {
		s.Logger.Error("could not persist task mutation", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, event.Task.RoomID); err != nil {
			s.Logger.Warning(fmt.Sprintf("could not invalidate room snapshot cache: %v", err))
		}
	}
}
