package main

import (
	"context"
	"os"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docmigrate-dev/docmigrate/engine"
	"github.com/docmigrate-dev/docmigrate/ledger"
	mongostore "github.com/docmigrate-dev/docmigrate/ledger/mongo"
	"github.com/docmigrate-dev/docmigrate/log"
)

func main() {
	ctx := context.Background()

	// Example: "mongodb://localhost:27017"
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		log.ErrorContext(ctx, "MONGODB_URI environment variable is not set")
		os.Exit(1)
	}

	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "app"
	}
	ctx = context.WithValue(ctx, log.DatabaseNameKey, dbName)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.ErrorContext(ctx, "failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.ErrorContext(ctx, "failed to disconnect", "error", err)
		}
	}()

	log.InfoContext(ctx, "connected to mongodb")

	store := mongostore.New(client.Database(dbName), "")

	led, err := ledger.Open(ctx, store)
	if err != nil {
		log.ErrorContext(ctx, "failed to initialize ledger", "error", err)
		os.Exit(1)
	}

	changeSets := []ledger.ChangeSet{
		{
			File:         "users.js",
			ChangeID:     "create-users-index",
			Author:       "demo",
			ResourcePath: "changesets/users.js",
			Script:       "db.users.createIndex({email: 1}, {unique: true})",
		},
		{
			File:         "users.js",
			ChangeID:     "seed-admin",
			Author:       "demo",
			ResourcePath: "changesets/users.js",
			Script:       "db.users.insert({email: 'admin@example.com', role: 'admin'})",
		},
	}

	if err := engine.New(led, store).Run(ctx, changeSets); err != nil {
		log.ErrorContext(ctx, "migration run failed", "error", err)
		os.Exit(1)
	}

	log.InfoContext(ctx, "migration run completed")
}
