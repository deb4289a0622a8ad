package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/pradeep-dev/papertrail/internal/common"
	"github.com/pradeep-dev/papertrail/internal/dbx"
	"github.com/pradeep-dev/papertrail/internal/server/models"
	notesrepo "github.com/pradeep-dev/papertrail/internal/server/repositories/notes"
	permsrepo "github.com/pradeep-dev/papertrail/internal/server/repositories/permissions"
	refreshrepo "github.com/pradeep-dev/papertrail/internal/server/repositories/refreshtokens"
	usersrepo "github.com/pradeep-dev/papertrail/internal/server/repositories/users"
	"github.com/pradeep-dev/papertrail/internal/server/repositories/repomanager"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// fakeStore is a shared in-memory backing store for the fake repositories,
// so permission checks and joins observe the same state the note repo does.
type fakeStore struct {
	users      map[int64]*models.User
	notes      map[int64]*models.Note
	perms      map[int64]*models.NotePermission
	tokens     map[string]*models.RefreshToken
	nextNoteID int64
	nextPermID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  map[int64]*models.User{},
		notes:  map[int64]*models.Note{},
		perms:  map[int64]*models.NotePermission{},
		tokens: map[string]*models.RefreshToken{},
	}
}

func (s *fakeStore) addUser(id int64, email, name string) *models.User {
	u := &models.User{ID: id, Email: email, Name: name, CreatedAt: time.Now()}
	s.users[id] = u
	return u
}

type fakeUsersRepo struct{ s *fakeStore }

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range f.s.users {
		if u.Email == user.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	user.ID = int64(len(f.s.users) + 1)
	user.CreatedAt = time.Now()
	f.s.users[user.ID] = user
	return user, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeNotesRepo struct{ s *fakeStore }

func (f *fakeNotesRepo) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	f.s.nextNoteID++
	note.ID = f.s.nextNoteID
	note.CreatedAt = time.Now()
	note.UpdatedAt = note.CreatedAt
	cp := *note
	f.s.notes[note.ID] = &cp
	return note, nil
}

func (f *fakeNotesRepo) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	n, ok := f.s.notes[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotesRepo) ListByOwner(ctx context.Context, userID int64) ([]*models.Note, error) {
	var result []*models.Note
	for id := int64(1); id <= f.s.nextNoteID; id++ {
		if n, ok := f.s.notes[id]; ok && n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (f *fakeNotesRepo) ListSharedWith(ctx context.Context, userID int64) ([]*models.Note, error) {
	seen := map[int64]bool{}
	var result []*models.Note
	for id := int64(1); id <= f.s.nextPermID; id++ {
		p, ok := f.s.perms[id]
		if !ok || p.UserID != userID {
			continue
		}
		if p.Level != models.PermissionRead && p.Level != models.PermissionEdit {
			continue
		}
		n, ok := f.s.notes[p.NoteID]
		if !ok || seen[p.NoteID] {
			continue
		}
		seen[p.NoteID] = true
		result = append(result, n)
	}
	return result, nil
}

func (f *fakeNotesRepo) Update(ctx context.Context, note *models.Note) (*models.Note, error) {
	stored, ok := f.s.notes[note.ID]
	if !ok {
		return nil, common.ErrNotFound
	}
	stored.Title = note.Title
	stored.Content = note.Content
	stored.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	cp := *stored
	return &cp, nil
}

func (f *fakeNotesRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.s.notes[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.s.notes, id)
	return nil
}

type fakePermsRepo struct{ s *fakeStore }

func (f *fakePermsRepo) Upsert(ctx context.Context, perm *models.NotePermission) (*models.NotePermission, error) {
	for _, p := range f.s.perms {
		if p.NoteID == perm.NoteID && p.UserID == perm.UserID {
			p.Level = perm.Level
			cp := *p
			return &cp, nil
		}
	}
	f.s.nextPermID++
	perm.ID = f.s.nextPermID
	f.s.perms[perm.ID] = perm
	return perm, nil
}

func (f *fakePermsRepo) Get(ctx context.Context, noteID, userID int64) (*models.NotePermission, error) {
	for _, p := range f.s.perms {
		if p.NoteID == noteID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakePermsRepo) ListByNote(ctx context.Context, noteID int64) ([]*models.NotePermission, error) {
	var result []*models.NotePermission
	for id := int64(1); id <= f.s.nextPermID; id++ {
		if p, ok := f.s.perms[id]; ok && p.NoteID == noteID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakePermsRepo) DeleteByNoteAndUser(ctx context.Context, noteID, userID int64) error {
	for id, p := range f.s.perms {
		if p.NoteID == noteID && p.UserID == userID {
			delete(f.s.perms, id)
			return nil
		}
	}
	return nil
}

func (f *fakePermsRepo) DeleteByNote(ctx context.Context, noteID int64) error {
	for id, p := range f.s.perms {
		if p.NoteID == noteID {
			delete(f.s.perms, id)
		}
	}
	return nil
}

type fakeRefreshRepo struct{ s *fakeStore }

func (f *fakeRefreshRepo) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	f.s.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := f.s.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return rt, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	delete(f.s.tokens, token)
	return nil
}

type fakeRepoManager struct{ s *fakeStore }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return &fakeUsersRepo{s: m.s} }
func (m *fakeRepoManager) Notes(db dbx.DBTX) notesrepo.Repository      { return &fakeNotesRepo{s: m.s} }
func (m *fakeRepoManager) Permissions(db dbx.DBTX) permsrepo.Repository {
	return &fakePermsRepo{s: m.s}
}
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshrepo.Repository {
	return &fakeRefreshRepo{s: m.s}
}
