package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pixkeep/pixkeep/internal/common"
	"github.com/pixkeep/pixkeep/internal/dbx"
	"github.com/pixkeep/pixkeep/internal/server/identity"
	"github.com/pixkeep/pixkeep/internal/server/models"
	"github.com/pixkeep/pixkeep/internal/server/objectstore"
	"github.com/pixkeep/pixkeep/internal/server/repositories/images"
	"github.com/pixkeep/pixkeep/internal/server/repositories/users"
)

type fakeRepoManager struct {
	users  *fakeUsersRepo
	images *fakeImagesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Images(dbx.DBTX) images.Repository            { return m.images }

type fakeUsersRepo struct {
	byID            map[string]*models.User
	emailByUsername map[string]string

	createErr         error
	getEmailErr       error
	updateUsernameErr error
	touchErr          error

	updatedUsernames map[string]string
	touchedAt        []time.Time
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byID:             map[string]*models.User{},
		emailByUsername:  map[string]string{},
		updatedUsernames: map[string]string{},
	}
}

func (r *fakeUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	cp := *user
	cp.ID = fmt.Sprintf("user-%d", len(r.byID)+1)
	r.byID[cp.ID] = &cp
	r.emailByUsername[cp.Username] = cp.Email
	return &cp, nil
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return user, nil
}

func (r *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUsersRepo) GetEmailByUsername(_ context.Context, username string) (string, error) {
	if r.getEmailErr != nil {
		return "", r.getEmailErr
	}
	email, ok := r.emailByUsername[username]
	if !ok {
		return "", common.ErrNotFound
	}
	return email, nil
}

func (r *fakeUsersRepo) UpdateUsername(_ context.Context, id, username string) error {
	if r.updateUsernameErr != nil {
		return r.updateUsernameErr
	}
	r.updatedUsernames[id] = username
	return nil
}

func (r *fakeUsersRepo) SetPasswordHash(_ context.Context, id string, hash []byte) error {
	user, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	user.PasswordHash = hash
	return nil
}

func (r *fakeUsersRepo) TouchPasswordChanged(_ context.Context, _ string, at time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	r.touchedAt = append(r.touchedAt, at)
	return nil
}

func (r *fakeUsersRepo) StageEmailChange(_ context.Context, id, pendingEmail, token string) error {
	user, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	user.PendingEmail = pendingEmail
	user.EmailChangeToken = token
	return nil
}

func (r *fakeUsersRepo) ConfirmEmailChange(_ context.Context, token string) error {
	for _, user := range r.byID {
		if user.EmailChangeToken == token && user.PendingEmail != "" {
			user.Email = user.PendingEmail
			user.PendingEmail = ""
			user.EmailChangeToken = ""
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeUsersRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeImagesRepo struct {
	byID map[string]*models.Image

	createErr error
	deleteErr error
	existsErr error
	selectErr error
}

func newFakeImagesRepo() *fakeImagesRepo {
	return &fakeImagesRepo{byID: map[string]*models.Image{}}
}

func (r *fakeImagesRepo) Create(_ context.Context, image *models.Image) (*models.Image, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	cp := *image
	cp.CreatedAt = time.Now()
	r.byID[cp.ID] = &cp
	return &cp, nil
}

func (r *fakeImagesRepo) GetByID(_ context.Context, id string) (*models.Image, error) {
	image, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return image, nil
}

func (r *fakeImagesRepo) SelectByUser(_ context.Context, userID, titleFilter string) ([]*models.Image, error) {
	if r.selectErr != nil {
		return nil, r.selectErr
	}
	var result []*models.Image
	for _, image := range r.byID {
		if image.UserID != userID {
			continue
		}
		if titleFilter != "" &&
			!strings.Contains(strings.ToLower(image.Title), strings.ToLower(titleFilter)) {
			continue
		}
		result = append(result, image)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeImagesRepo) ExistsByStorageKey(_ context.Context, key string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	for _, image := range r.byID {
		if image.StorageKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeImagesRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

const fakeStoreBaseURL = "https://cdn.test/pixkeep/"

type fakeObject struct {
	data     []byte
	modified time.Time
}

type fakeStore struct {
	objects map[string]*fakeObject

	putErr    error
	removeErr error
	listErr   error

	putCalls    int
	removeCalls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]*fakeObject{}}
}

func (s *fakeStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.putCalls++
	if s.putErr != nil {
		return s.putErr
	}
	if _, ok := s.objects[key]; ok {
		return objectstore.ErrKeyExists
	}
	s.objects[key] = &fakeObject{data: data, modified: time.Now()}
	return nil
}

func (s *fakeStore) Remove(_ context.Context, key string) error {
	s.removeCalls = append(s.removeCalls, key)
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) PublicURL(key string) string {
	return fakeStoreBaseURL + key
}

func (s *fakeStore) KeyFromURL(url string) (string, error) {
	key, ok := strings.CutPrefix(url, fakeStoreBaseURL)
	if !ok || key == "" {
		return "", fmt.Errorf("url %q does not belong to this store", url)
	}
	return key, nil
}

func (s *fakeStore) List(_ context.Context, prefix string) ([]objectstore.Object, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var result []objectstore.Object
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			result = append(result, objectstore.Object{Key: key, LastModified: obj.modified})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

type credentialChange struct {
	accountID string
	update    identity.CredentialUpdate
}

type fakeVerifier struct {
	sessionsByEmail map[string]*identity.Session

	hashErr   error
	signInErr error
	updateErr error
	deleteErr error

	updates   []credentialChange
	confirmed []string
	deleted   []string
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{sessionsByEmail: map[string]*identity.Session{}}
}

func (v *fakeVerifier) SignIn(_ context.Context, email, _ string) (*identity.Session, error) {
	if v.signInErr != nil {
		return nil, v.signInErr
	}
	session, ok := v.sessionsByEmail[email]
	if !ok {
		return nil, common.ErrUnauthorized
	}
	return session, nil
}

func (v *fakeVerifier) HashPassword(password string) ([]byte, error) {
	if v.hashErr != nil {
		return nil, v.hashErr
	}
	return []byte("hashed:" + password), nil
}

func (v *fakeVerifier) UpdateCredential(_ context.Context, accountID string, upd identity.CredentialUpdate) error {
	if v.updateErr != nil {
		return v.updateErr
	}
	v.updates = append(v.updates, credentialChange{accountID: accountID, update: upd})
	return nil
}

func (v *fakeVerifier) ConfirmEmailChange(_ context.Context, token string) error {
	v.confirmed = append(v.confirmed, token)
	return nil
}

func (v *fakeVerifier) DeleteIdentity(_ context.Context, accountID string) error {
	if v.deleteErr != nil {
		return v.deleteErr
	}
	v.deleted = append(v.deleted, accountID)
	return nil
}
