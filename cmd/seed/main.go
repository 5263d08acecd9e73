// Command seed populates the development database with fake personas and posts.
package main

import (
	"flag"
	"log"

	"murmur/internal/bootstrap"
	"murmur/internal/config"
	"murmur/internal/seed"
)

func main() {
	numActors := flag.Int("actors", 10, "number of actors to create")
	numPosts := flag.Int("posts", 30, "number of starter posts to create")
	clean := flag.Bool("clean", false, "delete existing data first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumActors:   *numActors,
		NumPosts:    *numPosts,
		ShouldClean: *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
