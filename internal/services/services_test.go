package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
	"github.com/journeymate/backend/pkg/config"
	"github.com/journeymate/backend/pkg/filestore"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db            *gorm.DB
	store         *repositories.Store
	files         *filestore.Store
	users         *UserService
	trips         *TripService
	joins         *JoinRequestService
	feedback      *FeedbackService
	saved         *SavedPostService
	messages      *MessageService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := config.OpenSQLite(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repositories.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	files, err := filestore.New(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}

	store := repositories.NewStore(db)
	return &testEnv{
		db:            db,
		store:         store,
		files:         files,
		users:         NewUserService(store, files, nil, bcrypt.MinCost),
		trips:         NewTripService(store, files, nil).WithClock(func() time.Time { return testNow }),
		joins:         NewJoinRequestService(store, nil),
		feedback:      NewFeedbackService(store, nil),
		saved:         NewSavedPostService(store),
		messages:      NewMessageService(store, nil),
		notifications: NewNotificationService(store),
	}
}

func (env *testEnv) register(t *testing.T, fullName string) (*models.User, authz.Caller) {
	t.Helper()
	user, err := env.users.Register(context.Background(), models.RegisterRequest{
		Email:    fmt.Sprintf("%d-%s@example.com", time.Now().UnixNano(), "u"),
		Password: "secret123",
		FullName: fullName,
	})
	if err != nil {
		t.Fatalf("register %s: %v", fullName, err)
	}
	return user, callerOf(user)
}

func (env *testEnv) admin(t *testing.T) authz.Caller {
	t.Helper()
	user, err := env.users.CreateAdmin(context.Background(), models.RegisterRequest{
		Username: "root",
		Email:    "root@example.com",
		Password: "secret123",
		FullName: "Root Admin",
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return callerOf(user)
}

// rejectInserts makes every insert into table fail the way a unique index
// does when a concurrent writer wins between the existence check and the insert.
func (env *testEnv) rejectInserts(t *testing.T, table string) {
	t.Helper()
	err := env.db.Callback().Create().Before("gorm:create").Register("test:reject_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(fmt.Errorf("insert into %s: %w", table, gorm.ErrDuplicatedKey))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func callerOf(u *models.User) authz.Caller {
	return authz.Caller{ID: u.ID, UID: u.UID, Username: u.Username, Roles: u.RoleNames()}
}

func tripRequest(title, expire string) models.TripPostRequest {
	return models.TripPostRequest{
		Title:            title,
		Description:      "Two weeks along the coast",
		Destination:      "Lisbon",
		Amount:           1200,
		MinAge:           20,
		MaxAge:           40,
		PersonCount:      4,
		TripStartingDate: "2025-07-01",
		TripEndingDate:   "2025-07-15",
		PostExpireDate:   expire,
	}
}

// png is enough of a PNG header for content sniffing.
var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func images(n int) []filestore.Upload {
	uploads := make([]filestore.Upload, n)
	for i := range uploads {
		uploads[i] = filestore.FromBytes(fmt.Sprintf("photo%d.PNG", i), png)
	}
	return uploads
}
