package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iconix/fortudo/pkg/communication"
	"github.com/iconix/fortudo/pkg/environment"
	"github.com/iconix/fortudo/pkg/locking"
	"github.com/iconix/fortudo/pkg/logger"
	"github.com/iconix/fortudo/pkg/rooms"
	"github.com/iconix/fortudo/pkg/tasks"
)

func main() {
	var logging logger.Interface = logger.Logger{}
	fmt.Println("Server is starting up...")

	environment.Initialize()

	client, err := mongo.NewClient(options.Client().ApplyURI(environment.Global.DatabaseUrl))
	if err != nil {
		log.Fatal(err)
	}

	var ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = client.Connect(ctx)
	if err != nil {
		log.Panic(err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Panic(err)
	}

	defer func() {
		err := client.Disconnect(ctx)
		if err != nil {
			logging.Fatal(err)
		}
	}()

	fmt.Println("Database connected")

	db := client.Database(environment.Global.Database)

	taskCollection := db.Collection("Tasks")
	roomCollection := db.Collection("Rooms")

	var cache tasks.RoomDataCacheInterface
	var locker locking.LockerInterface

	if environment.Global.Redis != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     environment.Global.Redis,
			Password: environment.Global.RedisPassword,
		})

		err = redisClient.Ping(ctx).Err()
		if err != nil {
			log.Panic(err)
		}

		cache, err = tasks.NewRoomDataCacheRedis(redisClient)
		if err != nil {
			log.Panic(err)
		}

		locker = locking.NewLockerRedis(redisClient)

		fmt.Println("Redis connected")
	} else {
		cache, err = tasks.NewRoomDataCacheMemory()
		if err != nil {
			log.Panic(err)
		}

		locker = locking.NewLockerMemory()
	}

	responseManager := communication.ResponseManager{Logger: logging}

	taskRepository := &tasks.MongoDBTaskRepository{DB: taskCollection, Logger: logging}
	roomRepository := &rooms.MongoDBRoomRepository{DB: roomCollection}

	manager, err := rooms.NewManager(roomRepository, taskRepository, cache, locker, logging)
	if err != nil {
		log.Panic(err)
	}
	defer manager.Shutdown()

	err = manager.WarmUp(ctx)
	if err != nil {
		logging.Error("Could not warm up room snapshots", err)
	}

	roomHandler := rooms.Handler{Manager: manager, Logger: logging, ResponseManager: &responseManager}
	taskHandler := tasks.Handler{Engines: manager, Logger: logging, ResponseManager: &responseManager}

	r := mux.NewRouter()
	r.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)

		_, err := fmt.Fprint(writer, "Welcome to the API! ✔")
		if err != nil {
			log.Printf("Error: %v\n", err)
		}
	})

	r.HandleFunc("/rooms", roomHandler.RoomGetAll).Methods(http.MethodGet)
	r.HandleFunc("/rooms", roomHandler.RoomAdd).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomID}", roomHandler.RoomDelete).Methods(http.MethodDelete)

	r.HandleFunc("/rooms/{roomID}/schedule", taskHandler.ScheduleGet).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomID}/review", taskHandler.CandidateReview).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomID}/tasks", taskHandler.TaskAdd).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomID}/tasks/{taskID}", taskHandler.TaskEdit).Methods(http.MethodPut)
	r.HandleFunc("/rooms/{roomID}/tasks/{taskID}", taskHandler.TaskDelete).Methods(http.MethodDelete)
	r.HandleFunc("/rooms/{roomID}/tasks/{taskID}/complete", taskHandler.TaskToggleComplete).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomID}/tasks/{taskID}/lock", taskHandler.TaskToggleLock).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomID}/tasks/{taskID}/schedule", taskHandler.TaskScheduleModal).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomID}/tasks/{taskID}/unschedule", taskHandler.TaskUnschedule).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomID}/gaps/select", taskHandler.GapSelect).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomID}/gaps/fill", taskHandler.GapFill).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomID}/destructive", taskHandler.DestructiveRequest).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomID}/destructive/confirm", taskHandler.DestructiveConfirm).Methods(http.MethodPost)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Content-Type", "application/json")
			if environment.Global.Cors != "" {
				w.Header().Add("Access-Control-Allow-Origin", environment.Global.Cors)
			}
			next.ServeHTTP(w, r)
		})
	})

	http.Handle("/", r)
	log.Panic(http.ListenAndServe(":"+environment.Global.Port, r))
}
