package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
	"user_auth_service/internal/auth"
	"user_auth_service/internal/cache"
	"user_auth_service/internal/observability"
	"user_auth_service/internal/queue"

	"github.com/sirupsen/logrus"
)

var ErrWrongPassword = errors.New("wrong password")

// Per-request deadline for store access.
const storeTimeout = 5 * time.Second

// EventPublisher sends user lifecycle events to the audit queue.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, event queue.UserEvent) error
}

type UserServiceInterface interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	CreateUser(ctx context.Context, username, displayName, password string, admin bool) error
	GetUserByUsername(ctx context.Context, username string) ([]*User, error)
	UpdateUser(ctx context.Context, key, newUsername, newDisplayName, newPassword string, newAdmin bool) error
	DeleteUserByUsername(ctx context.Context, username string) error
}

type UserService struct {
	repo   UserRepositoryInterface
	db     *sql.DB
	cache  *cache.UserCache
	events EventPublisher
}

// NewUserService wires the record store with the optional cache and event
// publisher; both may be nil (the worker-less test setup runs without them).
func NewUserService(repo UserRepositoryInterface, db *sql.DB, userCache *cache.UserCache, events EventPublisher) UserServiceInterface {
	return &UserService{
		repo:   repo,
		db:     db,
		cache:  userCache,
		events: events,
	}
}

// Authenticate checks the submitted credentials against the stored record.
// A single point lookup: ErrUserNotFound when absent, ErrWrongPassword when
// the bcrypt comparison fails, the full record on success.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.repo.GetByUsername(ctx, s.db, username)
	if err != nil {
		return nil, err
	}

	if err := auth.ComparePasswordHash([]byte(user.Password), password); err != nil {
		return nil, ErrWrongPassword
	}

	return user, nil
}

// ListUsers returns every record, cache-aside over the store.
func (s *UserService) ListUsers(ctx context.Context) ([]*User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	cacheKey := cache.AllUsersKey()
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		var users []*User
		if json.Unmarshal(cached, &users) == nil {
			observability.IncCacheHit("users")
			return users, nil
		}
	}
	observability.IncCacheMiss("users")

	users, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, users)
	return users, nil
}

// CreateUser inserts a record with exactly the four supplied fields. The
// password is hashed before it reaches the store. Duplicate usernames surface
// as whatever the store reports, here ErrDuplicateUsername.
func (s *UserService) CreateUser(ctx context.Context, username, displayName, password string, admin bool) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	hashedPassword, err := auth.GeneratePasswordHash(password)
	if err != nil {
		return err
	}

	user := &User{
		Username:    username,
		DisplayName: displayName,
		Password:    hashedPassword,
		Admin:       admin,
	}

	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		return err
	}

	observability.IncUserMutation("created")
	s.invalidate(ctx, cache.AllUsersKey(), cache.UserKey(username))
	s.publish(ctx, queue.ActionUserCreated, username)
	return nil
}

// GetUserByUsername returns all records matching username, cache-aside.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) ([]*User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	cacheKey := cache.UserKey(username)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		var users []*User
		if json.Unmarshal(cached, &users) == nil {
			observability.IncCacheHit("user")
			return users, nil
		}
	}
	observability.IncCacheMiss("user")

	users, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, users)
	return users, nil
}

// UpdateUser replaces all fields of the record matched by key, inserting a
// new record when no row matches. Update-or-create, never "not found".
func (s *UserService) UpdateUser(ctx context.Context, key, newUsername, newDisplayName, newPassword string, newAdmin bool) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	hashedPassword, err := auth.GeneratePasswordHash(newPassword)
	if err != nil {
		return err
	}

	user := &User{
		Username:    newUsername,
		DisplayName: newDisplayName,
		Password:    hashedPassword,
		Admin:       newAdmin,
	}

	if err := s.repo.Upsert(ctx, s.db, key, user); err != nil {
		return err
	}

	observability.IncUserMutation("updated")
	s.invalidate(ctx, cache.AllUsersKey(), cache.UserKey(key), cache.UserKey(newUsername))
	s.publish(ctx, queue.ActionUserUpdated, newUsername)
	return nil
}

// DeleteUserByUsername removes the matching record. Reports success even when
// nothing matched.
func (s *UserService) DeleteUserByUsername(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.repo.DeleteByUsername(ctx, s.db, username); err != nil {
		return err
	}

	observability.IncUserMutation("deleted")
	s.invalidate(ctx, cache.AllUsersKey(), cache.UserKey(username))
	s.publish(ctx, queue.ActionUserDeleted, username)
	return nil
}

func (s *UserService) cacheGet(ctx context.Context, key string) []byte {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).Warn("Failed to read user cache")
		return nil
	}
	return data
}

func (s *UserService) cacheSet(ctx context.Context, key string, data interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		logrus.WithError(err).Warn("Failed to set user cache")
	}
}

func (s *UserService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate user cache")
	}
}

// publish emits a lifecycle event. Publish failures are logged and never fail
// the request.
func (s *UserService) publish(ctx context.Context, action, username string) {
	if s.events == nil {
		return
	}
	event := queue.UserEvent{
		Action:     action,
		Username:   username,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishUserEvent(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":   action,
			"username": username,
		}).Warn("Failed to publish user event")
	}
}
