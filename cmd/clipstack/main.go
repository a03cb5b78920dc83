package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/clipstack/backend/internal/app"
)

func main() {
	// A .env file is optional; real deployments set variables directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("skipping .env file: %v", err)
	}

	ctx := context.Background()
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
