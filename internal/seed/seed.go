// Package seed provides helpers to create development and test data for the
// application database.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"murmur/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumActors   int
	NumPosts    int
	ShouldClean bool
}

var interestTopics = []string{
	"photography", "hiking", "cooking", "jazz", "cycling", "gardening",
	"astronomy", "chess", "woodworking", "poetry", "travel", "coffee",
	"running", "painting", "board games", "film", "climbing", "baking",
}

// Run populates the database with fake personas and optional starter posts.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return err
		}
	}

	if opts.NumActors <= 0 {
		opts.NumActors = 10
	}

	actors := make([]*models.Actor, 0, opts.NumActors)
	for i := 0; i < opts.NumActors; i++ {
		actor := BuildActor()
		if err := db.Create(actor).Error; err != nil {
			return fmt.Errorf("seeding actor %d: %w", i, err)
		}
		actors = append(actors, actor)
	}
	log.Printf("Seeded %d actors", len(actors))

	if opts.NumPosts > 0 {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		for i := 0; i < opts.NumPosts; i++ {
			actor := actors[r.Intn(len(actors))]
			post := BuildPost(actor)
			if err := db.Create(post).Error; err != nil {
				return fmt.Errorf("seeding post %d: %w", i, err)
			}
		}
		log.Printf("Seeded %d posts", opts.NumPosts)
	}

	return nil
}

// BuildActor constructs an unsaved actor with a fake persona profile and one
// to four interest tags. The persona token is synthetic; against a real
// persona service, actors arrive through the auth sync endpoint instead.
func BuildActor() *models.Actor {
	name := gofakeit.Name()
	hobby := gofakeit.RandomString(interestTopics)

	actor := &models.Actor{
		Name:             name,
		Email:            gofakeit.Email(),
		Avatar:           fmt.Sprintf("https://i.pravatar.cc/150?u=%s", uuid.NewString()),
		Bio:              gofakeit.Sentence(8),
		SelfIntroduction: fmt.Sprintf("Hi, I'm %s. %s Lately I've been really into %s.", name, gofakeit.Quote(), hobby),
		PersonaToken:     "seed-" + uuid.NewString(),
	}

	count := 1 + rand.Intn(4)
	seen := map[string]bool{}
	for len(actor.Interests) < count {
		topic := gofakeit.RandomString(interestTopics)
		if seen[topic] {
			continue
		}
		seen[topic] = true
		actor.Interests = append(actor.Interests, models.Interest{
			Name:        topic,
			Description: gofakeit.Sentence(6),
			Confidence:  gofakeit.RandomString([]string{"low", "medium", "high"}),
		})
	}
	return actor
}

// BuildPost constructs an unsaved short post in the actor's voice with a
// realistic created_at spread over the last two weeks.
func BuildPost(actor *models.Actor) *models.Post {
	content := gofakeit.Sentence(10 + rand.Intn(15))
	if len(content) > 200 {
		content = strings.TrimSpace(content[:200])
	}

	hoursBack := rand.Intn(14 * 24)
	return &models.Post{
		ActorID:     actor.ID,
		Content:     content,
		AIGenerated: true,
		CreatedAt:   time.Now().Add(-time.Duration(hoursBack) * time.Hour),
	}
}

func clean(db *gorm.DB) error {
	// Children first to keep foreign keys happy.
	for _, m := range []any{
		&models.Like{},
		&models.Comment{},
		&models.Post{},
		&models.Interest{},
		&models.Actor{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			return err
		}
	}
	log.Println("Cleaned existing seed data")
	return nil
}
