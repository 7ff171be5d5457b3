package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MeoAhihi/fashion-shop-api/internal/cache"
	dom "github.com/MeoAhihi/fashion-shop-api/internal/domain"
	"github.com/MeoAhihi/fashion-shop-api/internal/repo"
	"github.com/MeoAhihi/fashion-shop-api/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrFieldsRequired      = errors.New("fullname, email, and password are required")
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrEmptyFullname       = errors.New("fullname cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrNothingToUpdate     = errors.New("no fields to update")
)

// IsValidation reports whether err is one of the bad-input sentinels (maps
// to HTTP 400).
func IsValidation(err error) bool {
	for _, e := range []error{
		ErrFieldsRequired, ErrCredentialsRequired,
		ErrEmptyFullname, ErrEmptyEmail, ErrEmptyPassword,
		ErrNothingToUpdate,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// UserService owns user records: validation, email uniqueness, credential
// hashing. Tokens are the auth package's business; handlers glue the two.
type UserService struct {
	repo  repo.UserRepo
	cache *cache.UserCache
	sf    singleflight.Group
	now   func() time.Time
}

// NewUserService creates a UserService. If c is nil, caching is disabled.
func NewUserService(r repo.UserRepo, c *cache.UserCache) *UserService {
	return &UserService{repo: r, cache: c, now: time.Now}
}

// Register creates a user with a freshly hashed credential. Also backs the
// administrative create endpoint, which applies the same rules.
func (s *UserService) Register(ctx context.Context, fullname, email, password string) (dom.User, error) {
	fullname = strings.TrimSpace(fullname)
	email = utils.NormalizeEmail(email)
	if fullname == "" || email == "" || password == "" {
		return dom.User{}, ErrFieldsRequired
	}

	taken, err := s.repo.EmailTaken(ctx, email, primitive.NilObjectID)
	if err != nil {
		return dom.User{}, err
	}
	if taken {
		return dom.User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.User{}, err
	}

	now := s.now().UTC()
	u, err := s.repo.Insert(ctx, dom.User{
		Fullname:     fullname,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The unique email index arbitrates the check-then-insert race.
		if utils.IsDuplicateKey(err) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}
	s.invalidateCache(ctx)
	return u, nil
}

// Authenticate verifies email and password. Unknown email and wrong password
// return the same error so callers cannot probe which emails exist.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (dom.User, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return dom.User{}, ErrCredentialsRequired
	}
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// List returns all users, newest first, through the cache when one is wired.
func (s *UserService) List(ctx context.Context) ([]dom.User, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("list", func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.User), nil
	}
	return s.repo.List(ctx)
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (dom.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}

// Update applies a partial update. A supplied-but-empty field is a
// validation error, distinct from the field being absent; an update with no
// recognized fields is rejected before the record is even looked up.
func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, fullname, email, password *string) (dom.User, error) {
	var patch repo.UserUpdate

	if fullname != nil {
		v := strings.TrimSpace(*fullname)
		if v == "" {
			return dom.User{}, ErrEmptyFullname
		}
		patch.Fullname = &v
	}
	if email != nil {
		v := utils.NormalizeEmail(*email)
		if v == "" {
			return dom.User{}, ErrEmptyEmail
		}
		taken, err := s.repo.EmailTaken(ctx, v, id)
		if err != nil {
			return dom.User{}, err
		}
		if taken {
			return dom.User{}, ErrEmailTaken
		}
		patch.Email = &v
	}
	if password != nil {
		if *password == "" {
			return dom.User{}, ErrEmptyPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return dom.User{}, err
		}
		v := string(hash)
		patch.PasswordHash = &v
	}
	if patch.Fullname == nil && patch.Email == nil && patch.PasswordHash == nil {
		return dom.User{}, ErrNothingToUpdate
	}

	u, err := s.repo.Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dom.User{}, ErrNotFound
		}
		if utils.IsDuplicateKey(err) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}
	s.invalidateCache(ctx)
	return u, nil
}

// Delete permanently removes a user. No soft-delete.
func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *UserService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}
