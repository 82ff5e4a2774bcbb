package statuses

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// MockFileDeleter implements storage.FileDeleter for testing
type MockFileDeleter struct {
	mu          sync.Mutex
	DeletedURLs []string
	ShouldFail  bool
}

func (m *MockFileDeleter) DeleteByURL(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return fmt.Errorf("mock delete failure")
	}
	m.DeletedURLs = append(m.DeletedURLs, url)
	return nil
}

type CleanupTestSuite struct {
	suite.Suite
	db          *gorm.DB
	fileDeleter *MockFileDeleter
	user        *models.User
}

func (s *CleanupTestSuite) SetupTest() {
	db, err := database.OpenInMemory()
	s.Require().NoError(err)
	s.db = db
	s.fileDeleter = &MockFileDeleter{}

	s.user = &models.User{Email: "sweeper@example.com", FullName: "Sweeper", PasswordHash: "x"}
	s.Require().NoError(db.Create(s.user).Error)
}

func (s *CleanupTestSuite) TearDownTest() {
	sqlDB, _ := s.db.DB()
	sqlDB.Close()
}

func (s *CleanupTestSuite) createStatus(text, image string, expiresAt time.Time) *models.Status {
	status := &models.Status{UserID: s.user.ID, Text: text, Image: image, ExpiresAt: expiresAt}
	s.Require().NoError(s.db.Create(status).Error)
	return status
}

func (s *CleanupTestSuite) TestSweepDeletesOnlyExpired() {
	now := time.Now().UTC()
	expired := s.createStatus("old", "https://cdn.test/statuses/a.png", now.Add(-time.Hour))
	fresh := s.createStatus("new", "", now.Add(time.Hour))

	service := NewCleanupService(s.db, s.fileDeleter, time.Minute)
	result := service.Sweep(context.Background(), now)

	s.Equal(1, result.Deleted)
	s.Equal(1, result.MediaDeleted)
	s.Equal([]string{"https://cdn.test/statuses/a.png"}, s.fileDeleter.DeletedURLs)

	var count int64
	s.db.Model(&models.Status{}).Where("id = ?", expired.ID).Count(&count)
	s.Zero(count)
	s.db.Model(&models.Status{}).Where("id = ?", fresh.ID).Count(&count)
	s.Equal(int64(1), count)
}

func (s *CleanupTestSuite) TestSweepDeletesRowsWhenMediaDeleteFails() {
	s.fileDeleter.ShouldFail = true
	s.createStatus("", "https://cdn.test/statuses/b.png", time.Now().UTC().Add(-time.Minute))

	result := NewCleanupService(s.db, s.fileDeleter, time.Minute).Sweep(context.Background(), time.Now().UTC())

	s.Equal(1, result.Deleted)
	s.Zero(result.MediaDeleted)
}

func (s *CleanupTestSuite) TestSweepWithoutDeleter() {
	s.createStatus("bye", "https://cdn.test/statuses/c.png", time.Now().UTC().Add(-time.Minute))

	result := NewCleanupService(s.db, nil, time.Minute).Sweep(context.Background(), time.Now().UTC())
	s.Equal(1, result.Deleted)
}

func (s *CleanupTestSuite) TestSweepHandlesMoreThanOneBatch() {
	past := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < sweepBatch+5; i++ {
		s.createStatus(fmt.Sprintf("s%d", i), "", past)
	}

	result := NewCleanupService(s.db, nil, time.Minute).Sweep(context.Background(), time.Now().UTC())
	s.Equal(sweepBatch+5, result.Deleted)
}

func (s *CleanupTestSuite) TestStartRunsImmediatelyAndStops() {
	s.createStatus("old", "", time.Now().UTC().Add(-time.Hour))

	service := NewCleanupService(s.db, s.fileDeleter, time.Hour)
	service.Start()

	s.Eventually(func() bool {
		var count int64
		s.db.Model(&models.Status{}).Count(&count)
		return count == 0
	}, 2*time.Second, 20*time.Millisecond)

	service.Stop()
}

func TestCleanupSuite(t *testing.T) {
	suite.Run(t, new(CleanupTestSuite))
}
