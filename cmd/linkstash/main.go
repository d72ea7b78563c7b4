package main

import (
	"log"

	"github.com/MrSnakeDoc/linkstash/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ linkstash failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ linkstash stopped with error: %v", err)
	}
}
