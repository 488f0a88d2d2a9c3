package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"chatlink/backend/internal/config"
	"chatlink/backend/internal/logging"
	"chatlink/backend/internal/models"
	"chatlink/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger, err := logging.New(true)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	store := storage.NewService(db, rdb, logger)
	if err := store.Migrate(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
	}
	ctx := context.Background()

	switch os.Args[1] {
	case "create-user":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin create-user <name> <email> [image]")
			os.Exit(1)
		}
		user := &models.User{
			ID:    uuid.NewString(),
			Name:  os.Args[2],
			Email: os.Args[3],
		}
		if len(os.Args) > 4 {
			user.Image = os.Args[4]
		}
		if err := store.SaveUser(ctx, user); err != nil {
			log.Fatalf("failed to create user: %v", err)
		}
		fmt.Printf("created user %s (%s)\n", user.ID, user.Name)

	case "befriend":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin befriend <user_id> <friend_id>")
			os.Exit(1)
		}
		if err := store.AddFriend(ctx, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("failed to add friendship: %v", err)
		}
		fmt.Printf("%s and %s are now friends\n", os.Args[2], os.Args[3])

	case "friends":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin friends <user_id>")
			os.Exit(1)
		}
		friends, err := store.GetFriends(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("failed to list friends: %v", err)
		}
		for _, friend := range friends {
			fmt.Printf("%s\t%s\t%s\n", friend.ID, friend.Name, friend.Email)
		}

	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage: admin <create-user|befriend|friends> [args]")
	os.Exit(1)
}
