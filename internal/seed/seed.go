package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/madaghaxx/Noctua/internal/cascade"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/notifications"
	"github.com/madaghaxx/Noctua/internal/repository"
	"github.com/madaghaxx/Noctua/internal/service"

	"gorm.io/gorm"
)

// Options configures a seeding run. When ScenarioPath is set the counts are
// ignored.
type Options struct {
	ScenarioPath string
	NumUsers     int
	NumPosts     int
	Clean        bool
	SkipBcrypt   bool
	RandomSeed   int64
}

// Report counts what a run created.
type Report struct {
	Users         int
	Posts         int
	Comments      int
	Likes         int
	Subscriptions int
	Reports       int
}

// Seeder writes demo data through the domain services.
type Seeder struct {
	db            *gorm.DB
	factory       *Factory
	posts         *service.PostService
	comments      *service.CommentService
	likes         *service.LikeService
	subscriptions *service.SubscriptionService
	reports       *service.ReportService
	moderation    *service.ModerationService
}

// NewSeeder wires a Seeder over db. Realtime delivery is disabled.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	store := repository.NewStore(db)
	dispatcher := notifications.NewDispatcher(nil)
	deleter := cascade.NewDeleter(store)
	return &Seeder{
		db:            db,
		factory:       NewFactory(db, opts.RandomSeed, opts.SkipBcrypt),
		posts:         service.NewPostService(store, deleter, nil),
		comments:      service.NewCommentService(store, dispatcher),
		likes:         service.NewLikeService(store, dispatcher),
		subscriptions: service.NewSubscriptionService(store, dispatcher),
		reports:       service.NewReportService(store, nil),
		moderation:    service.NewModerationService(store, deleter, nil),
	}
}

// Seed runs a scenario file or a random run, depending on opts.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Report, error) {
	s := NewSeeder(db, opts)
	if opts.Clean {
		if err := Clean(ctx, db); err != nil {
			return nil, err
		}
	}
	if opts.ScenarioPath != "" {
		sc, err := LoadScenario(opts.ScenarioPath)
		if err != nil {
			return nil, err
		}
		return s.Apply(ctx, sc)
	}
	return s.Random(ctx, opts.NumUsers, opts.NumPosts)
}

// Clean removes every row the seeder can create, children first.
func Clean(ctx context.Context, db *gorm.DB) error {
	tables := []string{"notifications", "reports", "media", "likes", "comments", "subscriptions", "posts", "users"}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clean %s: %w", table, err)
			}
		}
		return nil
	})
}

// Apply creates the scenario's entities in dependency order.
func (s *Seeder) Apply(ctx context.Context, sc *Scenario) (*Report, error) {
	rep := &Report{}
	users := make(map[string]*models.User, len(sc.Users))
	posts := make(map[string]*models.Post, len(sc.Posts))

	for _, spec := range sc.Users {
		u, err := s.factory.CreateUser(spec)
		if err != nil {
			return rep, err
		}
		users[spec.Key] = u
		rep.Users++
	}

	for _, spec := range sc.Posts {
		title, content := spec.Title, spec.Content
		if title == "" {
			title = s.factory.Title()
		}
		if content == "" {
			content = s.factory.Content()
		}
		p, err := s.posts.CreatePost(ctx, service.CreatePostInput{UserID: users[spec.Author].ID, Title: title, Content: content})
		if err != nil {
			return rep, fmt.Errorf("post %s: %w", spec.Key, err)
		}
		if spec.Hidden {
			if err := s.moderation.HidePost(ctx, p.ID); err != nil {
				return rep, fmt.Errorf("hide post %s: %w", spec.Key, err)
			}
		}
		posts[spec.Key] = p
		rep.Posts++
	}

	for _, spec := range sc.Subscriptions {
		if _, err := s.subscriptions.ToggleSubscription(ctx, users[spec.Subscriber].ID, users[spec.Target].ID); err != nil {
			return rep, fmt.Errorf("subscription %s->%s: %w", spec.Subscriber, spec.Target, err)
		}
		rep.Subscriptions++
	}

	for _, spec := range sc.Likes {
		if _, err := s.likes.ToggleLike(ctx, users[spec.User].ID, posts[spec.Post].ID); err != nil {
			return rep, fmt.Errorf("like %s->%s: %w", spec.User, spec.Post, err)
		}
		rep.Likes++
	}

	for _, spec := range sc.Comments {
		content := spec.Content
		if content == "" {
			content = s.factory.Comment()
		}
		if _, err := s.comments.CreateComment(ctx, service.CreateCommentInput{UserID: users[spec.Author].ID, PostID: posts[spec.Post].ID, Content: content}); err != nil {
			return rep, fmt.Errorf("comment by %s: %w", spec.Author, err)
		}
		rep.Comments++
	}

	for _, spec := range sc.Reports {
		in := service.CreateReportInput{
			ReporterID:     users[spec.Reporter].ID,
			ReportedUserID: users[spec.Reported].ID,
			Reason:         spec.Reason,
		}
		if spec.Post != "" {
			id := posts[spec.Post].ID
			in.ReportedPostID = &id
		}
		if _, err := s.reports.CreateReport(ctx, in); err != nil {
			return rep, fmt.Errorf("report %s->%s: %w", spec.Reporter, spec.Reported, err)
		}
		rep.Reports++
	}

	slog.InfoContext(ctx, "scenario seeded", slog.String("scenario", sc.Name), slog.Any("report", rep))
	return rep, nil
}

// Random creates numUsers users and numPosts posts, then a sparse mesh of
// subscriptions, likes, comments and a few reports between them.
func (s *Seeder) Random(ctx context.Context, numUsers, numPosts int) (*Report, error) {
	rep := &Report{}
	if numUsers <= 0 {
		return rep, nil
	}

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		u, err := s.factory.CreateUser(UserSpec{})
		if err != nil {
			return rep, err
		}
		users = append(users, u)
		rep.Users++
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.factory.Intn(len(users))]
		p, err := s.posts.CreatePost(ctx, service.CreatePostInput{UserID: author.ID, Title: s.factory.Title(), Content: s.factory.Content()})
		if err != nil {
			return rep, err
		}
		posts = append(posts, p)
		rep.Posts++
	}

	type pair struct{ a, b uint }
	subscribed := make(map[pair]bool)
	liked := make(map[pair]bool)
	reported := make(map[pair]bool)

	for _, u := range users {
		for i := 0; i < 3 && len(users) > 1; i++ {
			target := users[s.factory.Intn(len(users))]
			key := pair{u.ID, target.ID}
			if target.ID == u.ID || subscribed[key] {
				continue
			}
			if _, err := s.subscriptions.ToggleSubscription(ctx, u.ID, target.ID); err != nil {
				return rep, err
			}
			subscribed[key] = true
			rep.Subscriptions++
		}

		for i := 0; i < 5 && len(posts) > 0; i++ {
			post := posts[s.factory.Intn(len(posts))]
			key := pair{u.ID, post.ID}
			if !liked[key] {
				if _, err := s.likes.ToggleLike(ctx, u.ID, post.ID); err != nil {
					return rep, err
				}
				liked[key] = true
				rep.Likes++
			}
			if s.factory.Intn(3) == 0 {
				if _, err := s.comments.CreateComment(ctx, service.CreateCommentInput{UserID: u.ID, PostID: post.ID, Content: s.factory.Comment()}); err != nil {
					return rep, err
				}
				rep.Comments++
			}
		}
	}

	for i := 0; i < len(users)/5; i++ {
		reporter := users[s.factory.Intn(len(users))]
		target := users[s.factory.Intn(len(users))]
		key := pair{reporter.ID, target.ID}
		if reporter.ID == target.ID || reported[key] {
			continue
		}
		if _, err := s.reports.CreateReport(ctx, service.CreateReportInput{ReporterID: reporter.ID, ReportedUserID: target.ID, Reason: s.factory.Reason()}); err != nil {
			return rep, err
		}
		reported[key] = true
		rep.Reports++
	}

	slog.InfoContext(ctx, "random data seeded", slog.Any("report", rep))
	return rep, nil
}
