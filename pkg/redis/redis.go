package redis

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"
)

type IRedis interface {
	SetDeviceSession(ctx context.Context, key string, session string, expiration time.Duration) error
	GetDeviceSession(ctx context.Context, key string) (string, error)
	SetDetection(ctx context.Context, key string, detection string, expiration time.Duration) error
	GetDetection(ctx context.Context, key string) (string, error)
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) SetDeviceSession(ctx context.Context, key string, session string, expiration time.Duration) error {
	if err := r.client.Set(ctx, key, session, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error setting device session for key %s: %v", key, err))
		return err
	}
	return nil
}

func (r *redisClient) GetDeviceSession(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Device session not found for key %s", key))
		return "", err
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting device session for key %s: %v", key, err))
		return "", err
	}
	return val, nil
}

func (r *redisClient) SetDetection(ctx context.Context, key string, detection string, expiration time.Duration) error {
	if err := r.client.Set(ctx, key, detection, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error caching detection for key %s: %v", key, err))
		return err
	}
	return nil
}

func (r *redisClient) GetDetection(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", err
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading cached detection for key %s: %v", key, err))
		return "", err
	}
	return val, nil
}
