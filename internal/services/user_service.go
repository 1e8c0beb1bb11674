package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/authz"
	"github.com/journeymate/backend/internal/events"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
	"github.com/journeymate/backend/pkg/filestore"
	"golang.org/x/crypto/bcrypt"
)

const usernameAttempts = 10

type UserService struct {
	store      *repositories.Store
	files      *filestore.Store
	events     *events.Recorder
	bcryptCost int
	now        func() time.Time
}

func NewUserService(store *repositories.Store, files *filestore.Store, recorder *events.Recorder, bcryptCost int) *UserService {
	return &UserService{store: store, files: files, events: recorder, bcryptCost: bcryptCost, now: time.Now}
}

// Register creates a USER account. Without an explicit username one is generated from
// the first word of the full name and a timestamp fragment.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.register(ctx, req, authz.RoleUser)
}

// CreateAdmin registers an account holding both USER and ADMIN.
func (s *UserService) CreateAdmin(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.register(ctx, req, authz.RoleUser, authz.RoleAdmin)
}

// GrantAdmin adds ADMIN to the active account registered under email.
// Granting it twice is a no-op.
func (s *UserService) GrantAdmin(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	var user *models.User
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		found, err := tx.Users.GetActiveByEmail(ctx, email)
		if err != nil {
			return lookup(err, "user with email %s not found", email)
		}
		user = found
		if slices.Contains(found.RoleNames(), authz.RoleAdmin) {
			return nil
		}

		role, err := tx.Users.GetRole(ctx, authz.RoleAdmin)
		if err != nil {
			return fmt.Errorf("load role %s: %w", authz.RoleAdmin, err)
		}
		if err := tx.Users.AddRole(ctx, found, role); err != nil {
			return fmt.Errorf("grant %s: %w", authz.RoleAdmin, err)
		}
		if user, err = tx.Users.GetActiveByID(ctx, found.ID); err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) register(ctx context.Context, req models.RegisterRequest, roleNames ...string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	email := normalizeEmail(req.Email)
	var user *models.User
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		taken, err := tx.Users.EmailTaken(ctx, email, 0)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return apperrors.Duplicate("email %s is already registered", email)
		}

		username := strings.TrimSpace(req.Username)
		if username != "" {
			taken, err := tx.Users.UsernameTaken(ctx, username, 0)
			if err != nil {
				return fmt.Errorf("check username: %w", err)
			}
			if taken {
				return apperrors.Duplicate("username %s is already taken", username)
			}
		} else if username, err = s.generateUsername(ctx, tx, req.FullName, email); err != nil {
			return err
		}

		roles := make([]models.Role, 0, len(roleNames))
		for _, name := range roleNames {
			role, err := tx.Users.GetRole(ctx, name)
			if err != nil {
				return fmt.Errorf("load role %s: %w", name, err)
			}
			roles = append(roles, *role)
		}

		user = &models.User{
			UID:        uuid.NewString(),
			Username:   username,
			Email:      email,
			Password:   string(hash),
			FullName:   strings.TrimSpace(req.FullName),
			MobileNo:   req.MobileNo,
			Occupation: req.Occupation,
			Address:    req.Address,
			Age:        req.Age,
			Gender:     req.Gender,
			Enabled:    true,
			Roles:      roles,
		}
		if err := tx.Users.CreateUser(ctx, user); err != nil {
			if isDuplicate(err) {
				return apperrors.Duplicate("email or username is already registered")
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Record(ctx, events.Event{Type: events.UserRegistered, ActorUID: user.UID, SubjectUID: user.UID})
	return user, nil
}

func (s *UserService) generateUsername(ctx context.Context, tx *repositories.Store, fullName, email string) (string, error) {
	base := usernameBase(fullName)
	if base == "" {
		base = usernameBase(strings.SplitN(email, "@", 2)[0])
	}
	if base == "" {
		base = "user"
	}
	if len(base) > 40 {
		base = base[:40]
	}

	stamp := s.now().UnixMilli()
	for i := 0; i < usernameAttempts; i++ {
		candidate := fmt.Sprintf("%s%06d", base, (stamp+int64(i))%1_000_000)
		taken, err := tx.Users.UsernameTaken(ctx, candidate, 0)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperrors.Duplicate("could not generate a free username, please choose one")
}

// usernameBase keeps the letters and digits of the first word.
func usernameBase(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range fields[0] {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Users.GetActiveByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.Unauthorized("invalid username or password")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	return user, nil
}

// ActiveByUsername resolves a token subject. A missing user reads as Unauthorized.
func (s *UserService) ActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.Users.GetActiveByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.Unauthorized("user no longer active")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// FindOrCreateExternal links an identity provider account to a local user, creating one
// when neither the provider id nor the email is known.
func (s *UserService) FindOrCreateExternal(ctx context.Context, externalID, email, name string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.Validation("identity token carries no email")
	}

	var user *models.User
	created := false
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		found, err := tx.Users.GetActiveByFirebaseUID(ctx, externalID)
		if err == nil {
			user = found
			return nil
		}
		if !isNotFound(err) {
			return fmt.Errorf("load user by provider id: %w", err)
		}

		found, err = tx.Users.GetActiveByEmail(ctx, email)
		if err == nil {
			found.FirebaseUID = &externalID
			if err := tx.Users.UpdateUser(ctx, found); err != nil {
				if isDuplicate(err) {
					return apperrors.Duplicate("provider account is already linked to another user")
				}
				return fmt.Errorf("link provider id: %w", err)
			}
			user = found
			return nil
		}
		if !isNotFound(err) {
			return fmt.Errorf("load user by email: %w", err)
		}

		taken, err := tx.Users.EmailTaken(ctx, email, 0)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return apperrors.Forbidden("account for %s is disabled", email)
		}

		username, err := s.generateUsername(ctx, tx, name, email)
		if err != nil {
			return err
		}
		role, err := tx.Users.GetRole(ctx, authz.RoleUser)
		if err != nil {
			return fmt.Errorf("load role: %w", err)
		}
		user = &models.User{
			UID:         uuid.NewString(),
			Username:    username,
			Email:       email,
			FullName:    name,
			FirebaseUID: &externalID,
			Enabled:     true,
			Roles:       []models.Role{*role},
		}
		if err := tx.Users.CreateUser(ctx, user); err != nil {
			if isDuplicate(err) {
				return apperrors.Duplicate("email or username is already registered")
			}
			return fmt.Errorf("create user: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.events.Record(ctx, events.Event{Type: events.UserRegistered, ActorUID: user.UID, SubjectUID: user.UID,
			Payload: map[string]any{"provider": "firebase"}})
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users.GetActiveByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "user not found")
	}
	return user, nil
}

func (s *UserService) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	return activeUser(ctx, s.store, uid)
}

// Profile maps a user to its public projection with the image inlined.
func (s *UserService) Profile(u *models.User) models.UserProfile {
	return models.NewUserProfile(u, s.files.DataURI(u.ProfileImage))
}

func (s *UserService) ListAll(ctx context.Context, caller authz.Caller) ([]models.UserProfile, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	users, err := s.store.Users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	profiles := make([]models.UserProfile, len(users))
	for i := range users {
		profiles[i] = s.Profile(&users[i])
	}
	return profiles, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller authz.Caller, uid string, req models.UpdateUserRequest) (*models.User, error) {
	var user *models.User
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		if user, err = activeUser(ctx, tx, uid); err != nil {
			return err
		}
		if err := authz.OwnerOrAdmin(caller, user.ID); err != nil {
			return err
		}

		if req.Username != nil && *req.Username != user.Username {
			taken, err := tx.Users.UsernameTaken(ctx, *req.Username, user.ID)
			if err != nil {
				return fmt.Errorf("check username: %w", err)
			}
			if taken {
				return apperrors.Duplicate("username %s is already taken", *req.Username)
			}
			user.Username = *req.Username
		}
		if req.Email != nil && normalizeEmail(*req.Email) != user.Email {
			email := normalizeEmail(*req.Email)
			taken, err := tx.Users.EmailTaken(ctx, email, user.ID)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if taken {
				return apperrors.Duplicate("email %s is already registered", email)
			}
			user.Email = email
		}
		if req.FullName != nil {
			user.FullName = *req.FullName
		}
		if req.MobileNo != nil {
			user.MobileNo = *req.MobileNo
		}
		if req.Occupation != nil {
			user.Occupation = *req.Occupation
		}
		if req.Address != nil {
			user.Address = *req.Address
		}
		if req.Age != nil {
			user.Age = *req.Age
		}
		if req.Gender != nil {
			user.Gender = *req.Gender
		}

		if err := tx.Users.UpdateUser(ctx, user); err != nil {
			if isDuplicate(err) {
				return apperrors.Duplicate("username or email is already taken")
			}
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ResetPassword(ctx context.Context, caller authz.Caller, req models.ResetPasswordRequest) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user, err := tx.Users.GetActiveByID(ctx, caller.ID)
		if err != nil {
			return lookup(err, "user not found")
		}
		if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) != nil {
			return apperrors.Unauthorized("old password does not match")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
		if err != nil {
			return apperrors.Internal("failed to hash password", err)
		}
		user.Password = string(hash)
		if err := tx.Users.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
}

// ReplaceProfileImage stores the new image and returns it as a data URI. The previous file
// is removed only after the new reference is committed.
func (s *UserService) ReplaceProfileImage(ctx context.Context, caller authz.Caller, upload filestore.Upload) (string, error) {
	staged, err := stageAll(s.files, []filestore.Upload{upload})
	if err != nil {
		return "", err
	}
	name := staged[0]

	var previous string
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user, err := tx.Users.GetActiveByID(ctx, caller.ID)
		if err != nil {
			return lookup(err, "user not found")
		}
		previous = user.ProfileImage
		user.ProfileImage = name
		if err := tx.Users.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("update profile image: %w", err)
		}
		return nil
	})
	if err != nil {
		s.files.Discard(name)
		return "", err
	}

	promoteAll(s.files, staged)
	if previous != "" {
		removeAll(s.files, []string{previous})
	}
	return s.files.DataURI(name), nil
}

// Delete soft-deletes a user. Admin only.
func (s *UserService) Delete(ctx context.Context, caller authz.Caller, uid string) error {
	if err := authz.RequireAdmin(caller); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user, err := activeUser(ctx, tx, uid)
		if err != nil {
			return err
		}
		if err := tx.Users.SoftDelete(ctx, user.ID); err != nil {
			return lookup(err, "user %s not found", uid)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Record(ctx, events.Event{Type: events.UserDeleted, ActorUID: caller.UID, SubjectUID: uid})
	return nil
}
