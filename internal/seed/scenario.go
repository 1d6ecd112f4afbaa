package seed

import (
	"bytes"
	"fmt"
	"os"

	"github.com/madaghaxx/Noctua/internal/models"

	"gopkg.in/yaml.v3"
)

// Scenario is a hand-written data set. Entities reference each other by key
// so a file never depends on generated IDs.
type Scenario struct {
	Name          string             `yaml:"name"`
	Users         []UserSpec         `yaml:"users"`
	Posts         []PostSpec         `yaml:"posts"`
	Comments      []CommentSpec      `yaml:"comments,omitempty"`
	Likes         []LikeSpec         `yaml:"likes,omitempty"`
	Subscriptions []SubscriptionSpec `yaml:"subscriptions,omitempty"`
	Reports       []ReportSpec       `yaml:"reports,omitempty"`
}

// UserSpec describes one account. Empty fields are filled with fake data.
type UserSpec struct {
	Key      string            `yaml:"key"`
	Username string            `yaml:"username,omitempty"`
	Email    string            `yaml:"email,omitempty"`
	Password string            `yaml:"password,omitempty"`
	Role     models.Role       `yaml:"role,omitempty"`
	Status   models.UserStatus `yaml:"status,omitempty"`
}

type PostSpec struct {
	Key     string `yaml:"key"`
	Author  string `yaml:"author"`
	Title   string `yaml:"title,omitempty"`
	Content string `yaml:"content,omitempty"`
	Hidden  bool   `yaml:"hidden,omitempty"`
}

type CommentSpec struct {
	Author  string `yaml:"author"`
	Post    string `yaml:"post"`
	Content string `yaml:"content,omitempty"`
}

type LikeSpec struct {
	User string `yaml:"user"`
	Post string `yaml:"post"`
}

type SubscriptionSpec struct {
	Subscriber string `yaml:"subscriber"`
	Target     string `yaml:"target"`
}

type ReportSpec struct {
	Reporter string `yaml:"reporter"`
	Reported string `yaml:"reported"`
	Post     string `yaml:"post,omitempty"`
	Reason   string `yaml:"reason"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario and checks every key reference.
func ParseScenario(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	users := make(map[string]bool, len(sc.Users))
	for _, u := range sc.Users {
		if u.Key == "" {
			return fmt.Errorf("scenario %q: user without key", sc.Name)
		}
		if users[u.Key] {
			return fmt.Errorf("scenario %q: duplicate user key %q", sc.Name, u.Key)
		}
		if u.Status != "" && !u.Status.Valid() {
			return fmt.Errorf("scenario %q: user %q has unknown status %q", sc.Name, u.Key, u.Status)
		}
		users[u.Key] = true
	}

	posts := make(map[string]bool, len(sc.Posts))
	for _, p := range sc.Posts {
		if p.Key == "" || posts[p.Key] {
			return fmt.Errorf("scenario %q: missing or duplicate post key %q", sc.Name, p.Key)
		}
		if !users[p.Author] {
			return fmt.Errorf("scenario %q: post %q has unknown author %q", sc.Name, p.Key, p.Author)
		}
		posts[p.Key] = true
	}

	refs := func(kind string, userKeys []string, postKey string, optionalPost bool) error {
		for _, k := range userKeys {
			if !users[k] {
				return fmt.Errorf("scenario %q: %s references unknown user %q", sc.Name, kind, k)
			}
		}
		if postKey == "" && optionalPost {
			return nil
		}
		if !posts[postKey] {
			return fmt.Errorf("scenario %q: %s references unknown post %q", sc.Name, kind, postKey)
		}
		return nil
	}
	for _, c := range sc.Comments {
		if err := refs("comment", []string{c.Author}, c.Post, false); err != nil {
			return err
		}
	}
	for _, l := range sc.Likes {
		if err := refs("like", []string{l.User}, l.Post, false); err != nil {
			return err
		}
	}
	for _, s := range sc.Subscriptions {
		if err := refs("subscription", []string{s.Subscriber, s.Target}, "", true); err != nil {
			return err
		}
	}
	for _, r := range sc.Reports {
		if err := refs("report", []string{r.Reporter, r.Reported}, r.Post, true); err != nil {
			return err
		}
	}
	return nil
}
