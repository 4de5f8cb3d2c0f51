package main

import (
	"log"

	"github.com/MrSnakeDoc/jobboard/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ jobboard failed to start: %v", err)
	}
}
