package service

import (
	"context"
	"sort"
	"testing"
	"time"

	dom "github.com/MeoAhihi/fashion-shop-api/internal/domain"
	"github.com/MeoAhihi/fashion-shop-api/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// mockUserRepo is an in-memory UserRepo for testing.
type mockUserRepo struct {
	users     map[primitive.ObjectID]dom.User
	insertErr error
	updateErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[primitive.ObjectID]dom.User)}
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (dom.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, mongo.ErrNoDocuments
}

func (m *mockUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (dom.User, error) {
	u, ok := m.users[id]
	if !ok {
		return dom.User{}, mongo.ErrNoDocuments
	}
	return u, nil
}

func (m *mockUserRepo) EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (bool, error) {
	for id, u := range m.users {
		if u.Email == email && id != except {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]dom.User, error) {
	list := make([]dom.User, 0, len(m.users))
	for _, u := range m.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (m *mockUserRepo) Insert(ctx context.Context, u dom.User) (dom.User, error) {
	if m.insertErr != nil {
		return dom.User{}, m.insertErr
	}
	u.ID = primitive.NewObjectID()
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id primitive.ObjectID, patch repo.UserUpdate, updatedAt time.Time) (dom.User, error) {
	if m.updateErr != nil {
		return dom.User{}, m.updateErr
	}
	u, ok := m.users[id]
	if !ok {
		return dom.User{}, mongo.ErrNoDocuments
	}
	if patch.Fullname != nil {
		u.Fullname = *patch.Fullname
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	u.UpdatedAt = updatedAt
	m.users[id] = u
	return u, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := m.users[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.users, id)
	return nil
}

func newTestService(r repo.UserRepo) *UserService {
	return NewUserService(r, nil)
}

func TestRegister_NormalizesAndHashes(t *testing.T) {
	mock := newMockUserRepo()
	svc := newTestService(mock)

	u, err := svc.Register(context.Background(), "  Ada ", "ADA@x.com", "pw123456")
	require.NoError(t, err)

	assert.Equal(t, "Ada", u.Fullname)
	assert.Equal(t, "ada@x.com", u.Email)
	assert.False(t, u.ID.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw123456")))
}

func TestRegister_EmptyFields(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	for _, tc := range []struct{ fullname, email, password string }{
		{"", "a@x.com", "pw"},
		{"Ada", "", "pw"},
		{"Ada", "a@x.com", ""},
		{"   ", "  ", "pw"},
	} {
		_, err := svc.Register(context.Background(), tc.fullname, tc.email, tc.password)
		assert.ErrorIs(t, err, ErrFieldsRequired)
		assert.True(t, IsValidation(err))
	}
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	_, err := svc.Register(context.Background(), "Ada", "ADA@x.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Other", "ada@X.COM", "pw654321")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_DuplicateKeyRace(t *testing.T) {
	mock := newMockUserRepo()
	// The existence check passes but the unique index rejects the insert.
	mock.insertErr = mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	svc := newTestService(mock)

	_, err := svc.Register(context.Background(), "Ada", "ada@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	mock := newMockUserRepo()
	svc := newTestService(mock)

	_, err := svc.Register(context.Background(), "Ada", "ada@x.com", "pw123456")
	require.NoError(t, err)

	_, errWrongPassword := svc.Authenticate(context.Background(), "ada@x.com", "wrong")
	_, errUnknownEmail := svc.Authenticate(context.Background(), "nobody@x.com", "pw123456")

	assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword, errUnknownEmail)
}

func TestAuthenticate_Success(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	created, err := svc.Register(context.Background(), "Ada", "Ada@X.com", "pw123456")
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "  ADA@x.com ", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
}

func TestAuthenticate_EmptyFields(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	_, err := svc.Authenticate(context.Background(), "", "pw")
	assert.ErrorIs(t, err, ErrCredentialsRequired)
	_, err = svc.Authenticate(context.Background(), "a@x.com", "")
	assert.ErrorIs(t, err, ErrCredentialsRequired)
}

func TestUpdate_NothingToUpdate(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	// Rejected before existence is even checked: an unknown id still gets
	// the validation error, not a 404.
	_, err := svc.Update(context.Background(), primitive.NewObjectID(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNothingToUpdate)
	assert.True(t, IsValidation(err))
}

func TestUpdate_SuppliedEmptyField(t *testing.T) {
	svc := newTestService(newMockUserRepo())
	empty := ""
	blank := "   "

	_, err := svc.Update(context.Background(), primitive.NewObjectID(), &blank, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyFullname)

	_, err = svc.Update(context.Background(), primitive.NewObjectID(), nil, &empty, nil)
	assert.ErrorIs(t, err, ErrEmptyEmail)

	_, err = svc.Update(context.Background(), primitive.NewObjectID(), nil, nil, &empty)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestUpdate_EmailUniquenessAgainstOthers(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	ada, err := svc.Register(context.Background(), "Ada", "ada@x.com", "pw123456")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Bob", "bob@x.com", "pw123456")
	require.NoError(t, err)

	taken := "BOB@x.com"
	_, err = svc.Update(context.Background(), ada.ID, nil, &taken, nil)
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Keeping your own email is not a conflict.
	own := "ada@x.com"
	_, err = svc.Update(context.Background(), ada.ID, nil, &own, nil)
	assert.NoError(t, err)
}

func TestUpdate_RehashesPasswordAndBumpsUpdatedAt(t *testing.T) {
	mock := newMockUserRepo()
	svc := newTestService(mock)

	u, err := svc.Register(context.Background(), "Ada", "ada@x.com", "pw123456")
	require.NoError(t, err)
	oldHash := u.PasswordHash

	later := u.CreatedAt.Add(time.Hour)
	svc.now = func() time.Time { return later }

	newPassword := "pw654321"
	updated, err := svc.Update(context.Background(), u.ID, nil, nil, &newPassword)
	require.NoError(t, err)

	assert.NotEqual(t, oldHash, updated.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(newPassword)))
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, u.CreatedAt, updated.CreatedAt)

	// Old password no longer authenticates.
	_, err = svc.Authenticate(context.Background(), "ada@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	name := "Ada"
	_, err := svc.Update(context.Background(), primitive.NewObjectID(), &name, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_ThenGetNotFound(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	u, err := svc.Register(context.Background(), "Ada", "ada@x.com", "pw123456")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), u.ID))

	_, err = svc.GetByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), u.ID), ErrNotFound)
}

func TestList(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	_, err := svc.Register(context.Background(), "Ada", "ada@x.com", "pw123456")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Bob", "bob@x.com", "pw123456")
	require.NoError(t, err)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
