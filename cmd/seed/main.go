// Command main runs the database seeder for Noctua.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/madaghaxx/Noctua/internal/bootstrap"
	"github.com/madaghaxx/Noctua/internal/config"
	"github.com/madaghaxx/Noctua/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	scenario := flag.String("scenario", "", "Apply a YAML scenario file instead of random data")
	fast := flag.Bool("fast", false, "Skip bcrypt hashing; generated users cannot log in")
	randomSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated content")
	flag.Parse()

	if *scenario != "" {
		log.Printf("Applying scenario %s (ignoring -users and -posts)", *scenario)
	} else {
		log.Printf("Target: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer rt.Close()

	report, err := seed.Seed(ctx, rt.DB, seed.Options{
		ScenarioPath: *scenario,
		NumUsers:     *numUsers,
		NumPosts:     *numPosts,
		Clean:        *shouldClean,
		SkipBcrypt:   *fast,
		RandomSeed:   *randomSeed,
	})
	if err != nil {
		rt.Close()
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded users=%d posts=%d comments=%d likes=%d subscriptions=%d reports=%d",
		report.Users, report.Posts, report.Comments, report.Likes, report.Subscriptions, report.Reports)
	if !*fast {
		log.Println("All generated users have the password: password123")
	}
}
