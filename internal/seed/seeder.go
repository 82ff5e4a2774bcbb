// Package seed fills a database with realistic chat data for development.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account
const DefaultPassword = "password123"

// SeedEmailDomain marks seeded accounts so Clean can find them
const SeedEmailDomain = "@seed.example.com"

var emojis = []string{"👍", "❤️", "😂", "😮", "😢", "🔥"}

var backgrounds = []string{"#1f2937", "#7c3aed", "#059669", "#dc2626", "#2563eb"}

// Options sizes a seed run
type Options struct {
	Users                int
	Groups               int
	MessagesPerPair      int
	StatusesPerUser      int
	PasswordCost         int
	ConversationsPerUser int
}

// DefaultOptions returns the sizes used by `seed dev`
func DefaultOptions() Options {
	return Options{
		Users:                20,
		Groups:               4,
		MessagesPerPair:      8,
		StatusesPerUser:      1,
		PasswordCost:         bcrypt.DefaultCost,
		ConversationsPerUser: 3,
	}
}

// Result counts what a run created
type Result struct {
	Users     int
	Groups    int
	Messages  int
	Reactions int
	Statuses  int
}

// Seeder handles database seeding operations
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	seed := time.Now().UnixNano()
	_ = gofakeit.Seed(seed)
	return &Seeder{db: db, rand: rand.New(rand.NewSource(seed))}
}

// SeedDev seeds the database with users, groups, conversations and statuses
func (s *Seeder) SeedDev(opts Options) (*Result, error) {
	result := &Result{}

	logger.Log.Info("Creating users...", zap.Int("count", opts.Users))
	users, err := s.seedUsers(opts.Users, opts.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}
	result.Users = len(users)
	if len(users) < 2 {
		return result, nil
	}

	logger.Log.Info("Creating groups...", zap.Int("count", opts.Groups))
	groups, err := s.seedGroups(users, opts.Groups)
	if err != nil {
		return nil, fmt.Errorf("failed to seed groups: %w", err)
	}
	result.Groups = len(groups)

	logger.Log.Info("Creating conversations...")
	messages, err := s.seedDirectMessages(users, opts.ConversationsPerUser, opts.MessagesPerPair)
	if err != nil {
		return nil, fmt.Errorf("failed to seed messages: %w", err)
	}
	groupMessages, err := s.seedGroupMessages(groups, opts.MessagesPerPair)
	if err != nil {
		return nil, fmt.Errorf("failed to seed group messages: %w", err)
	}
	messages = append(messages, groupMessages...)
	result.Messages = len(messages)

	logger.Log.Info("Creating reactions...")
	result.Reactions, err = s.seedReactions(users, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to seed reactions: %w", err)
	}

	logger.Log.Info("Creating statuses...")
	result.Statuses, err = s.seedStatuses(users, opts.StatusesPerUser)
	if err != nil {
		return nil, fmt.Errorf("failed to seed statuses: %w", err)
	}

	logger.Log.Info("Seed complete",
		zap.Int("users", result.Users),
		zap.Int("groups", result.Groups),
		zap.Int("messages", result.Messages),
		zap.Int("reactions", result.Reactions),
		zap.Int("statuses", result.Statuses),
	)
	return result, nil
}

// Clean removes every seeded account and everything that references it
func (s *Seeder) Clean() error {
	var ids []string
	if err := s.db.Model(&models.User{}).Where("email LIKE ?", "%"+SeedEmailDomain).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("failed to find seed users: %w", err)
	}
	if len(ids) == 0 {
		logger.Log.Info("No seed data found")
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var groupIDs []string
		if err := tx.Model(&models.Group{}).Where("created_by IN ?", ids).Pluck("id", &groupIDs).Error; err != nil {
			return err
		}

		var messageIDs []string
		if err := tx.Model(&models.Message{}).
			Where("sender_id IN ? OR receiver_id IN ? OR group_id IN ?", ids, ids, orEmpty(groupIDs)).
			Pluck("id", &messageIDs).Error; err != nil {
			return err
		}

		steps := []struct {
			table string
			run   func() *gorm.DB
		}{
			{"message_reactions", func() *gorm.DB {
				return tx.Where("user_id IN ? OR message_id IN ?", ids, orEmpty(messageIDs)).Delete(&models.MessageReaction{})
			}},
			{"messages", func() *gorm.DB { return tx.Where("id IN ?", orEmpty(messageIDs)).Delete(&models.Message{}) }},
			{"group_members", func() *gorm.DB {
				return tx.Exec("DELETE FROM group_members WHERE group_id IN ? OR user_id IN ?", orEmpty(groupIDs), ids)
			}},
			{"group_admins", func() *gorm.DB {
				return tx.Exec("DELETE FROM group_admins WHERE group_id IN ? OR user_id IN ?", orEmpty(groupIDs), ids)
			}},
			{"groups", func() *gorm.DB { return tx.Where("id IN ?", orEmpty(groupIDs)).Delete(&models.Group{}) }},
			{"statuses", func() *gorm.DB { return tx.Where("user_id IN ?", ids).Delete(&models.Status{}) }},
			{"notifications", func() *gorm.DB { return tx.Where("user_id IN ?", ids).Delete(&models.Notification{}) }},
			{"password_resets", func() *gorm.DB { return tx.Where("user_id IN ?", ids).Delete(&models.PasswordReset{}) }},
			{"users", func() *gorm.DB { return tx.Where("id IN ?", ids).Delete(&models.User{}) }},
		}
		for _, step := range steps {
			if err := step.run().Error; err != nil {
				return fmt.Errorf("failed to clean %s: %w", step.table, err)
			}
		}

		logger.Log.Info("Removed seed data", zap.Int("users", len(ids)), zap.Int("groups", len(groupIDs)))
		return nil
	})
}

// seedUsers creates count users sharing DefaultPassword
func (s *Seeder) seedUsers(count, cost int) ([]models.User, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	// One hash for every account keeps large runs fast
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		user := models.User{
			Email:        fmt.Sprintf("%s.%d%s", strings.ToLower(gofakeit.Username()), i, SeedEmailDomain),
			FullName:     name,
			PasswordHash: string(hash),
			ProfilePic:   fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", strings.ReplaceAll(name, " ", "")),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// seedGroups creates groups of 3-6 members; the first member is the admin
func (s *Seeder) seedGroups(users []models.User, count int) ([]models.Group, error) {
	groups := make([]models.Group, 0, count)
	for i := 0; i < count; i++ {
		size := lo.Min([]int{len(users), 3 + s.rand.Intn(4)})
		members := lo.Samples(users, size)
		creator := members[0]

		group := models.Group{
			Name:        gofakeit.Color() + " " + gofakeit.RandomString([]string{"Crew", "Club", "Squad", "Team"}),
			Description: gofakeit.HipsterSentence(),
			CreatedBy:   creator.ID,
			Members:     lo.Map(members, func(u models.User, _ int) models.User { return models.User{ID: u.ID} }),
			Admins:      []models.User{{ID: creator.ID}},
		}
		if err := s.db.Omit("Members.*", "Admins.*").Create(&group).Error; err != nil {
			return nil, fmt.Errorf("failed to create group: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// seedDirectMessages pairs each user with a few others and alternates messages
func (s *Seeder) seedDirectMessages(users []models.User, perUser, perPair int) ([]models.Message, error) {
	var messages []models.Message
	seen := map[string]bool{}

	for i, a := range users {
		for k := 1; k <= perUser; k++ {
			b := users[(i+k)%len(users)]
			if a.ID == b.ID {
				continue
			}
			key := lo.Ternary(a.ID < b.ID, a.ID+b.ID, b.ID+a.ID)
			if seen[key] {
				continue
			}
			seen[key] = true

			start := time.Now().UTC().Add(-time.Duration(s.rand.Intn(72)+1) * time.Hour)
			for n := 0; n < perPair; n++ {
				sender, receiver := a, b
				if n%2 == 1 {
					sender, receiver = b, a
				}
				msg := models.Message{
					SenderID:   sender.ID,
					ReceiverID: lo.ToPtr(receiver.ID),
					Text:       gofakeit.HipsterSentence(),
					CreatedAt:  start.Add(time.Duration(n) * time.Minute),
				}
				if err := s.db.Create(&msg).Error; err != nil {
					return nil, err
				}
				messages = append(messages, msg)
			}
		}
	}
	return messages, nil
}

func (s *Seeder) seedGroupMessages(groups []models.Group, perGroup int) ([]models.Message, error) {
	var messages []models.Message
	for _, g := range groups {
		start := time.Now().UTC().Add(-time.Duration(s.rand.Intn(48)+1) * time.Hour)
		for n := 0; n < perGroup; n++ {
			sender := g.Members[s.rand.Intn(len(g.Members))]
			msg := models.Message{
				SenderID:  sender.ID,
				GroupID:   lo.ToPtr(g.ID),
				Text:      gofakeit.Quote(),
				CreatedAt: start.Add(time.Duration(n) * time.Minute),
			}
			if err := s.db.Create(&msg).Error; err != nil {
				return nil, err
			}
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

// seedReactions puts an emoji from a participant on roughly one message in five
func (s *Seeder) seedReactions(users []models.User, messages []models.Message) (int, error) {
	count := 0
	for _, m := range messages {
		if s.rand.Intn(5) != 0 {
			continue
		}
		// The other side of a direct message, anyone for group messages
		reactor := users[s.rand.Intn(len(users))].ID
		if m.ReceiverID != nil {
			reactor = *m.ReceiverID
		}
		reaction := models.MessageReaction{
			MessageID: m.ID,
			UserID:    reactor,
			Emoji:     emojis[s.rand.Intn(len(emojis))],
		}
		if err := s.db.Create(&reaction).Error; err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// seedStatuses creates live text statuses spread over the last few hours
func (s *Seeder) seedStatuses(users []models.User, perUser int) (int, error) {
	count := 0
	for _, u := range users {
		for n := 0; n < perUser; n++ {
			created := time.Now().UTC().Add(-time.Duration(s.rand.Intn(12)) * time.Hour)
			status := models.Status{
				UserID:     u.ID,
				Text:       gofakeit.Quote(),
				Background: backgrounds[s.rand.Intn(len(backgrounds))],
				CreatedAt:  created,
				ExpiresAt:  created.Add(models.DefaultStatusTTL),
			}
			if err := s.db.Create(&status).Error; err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// orEmpty keeps IN clauses valid when a list is empty
func orEmpty(ids []string) []string {
	if len(ids) == 0 {
		return []string{""}
	}
	return ids
}
