package httpapi

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pradeep-dev/papertrail/internal/common"
	"github.com/pradeep-dev/papertrail/internal/logging"
	"github.com/pradeep-dev/papertrail/internal/server/models"
	"github.com/pradeep-dev/papertrail/internal/server/services"
)

const testSecret = "test-secret"

func newTestServer(us UserService, ns NoteService, is ImageService) *Server {
	logger := logging.NewLogger(io.Discard, slog.LevelError, false)
	return NewServer(":0", logger, us, ns, is, testSecret)
}

// fakeNoteService serves canned notes out of a map keyed by note ID and
// records the caller of the last mutating call.
type fakeNoteService struct {
	notes      map[int64]*models.Note
	perms      []*models.NotePermission
	lastCaller int64

	err error
}

func newFakeNoteService() *fakeNoteService {
	return &fakeNoteService{notes: map[int64]*models.Note{}}
}

func (f *fakeNoteService) addNote(id, ownerID int64, title string) *models.Note {
	n := &models.Note{
		ID: id, UserID: ownerID, Title: title,
		Content:   map[string]any{},
		CreatedBy: "Owner",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.notes[id] = n
	return n
}

func (f *fakeNoteService) CreateNote(ctx context.Context, callerID int64, title string, content map[string]any) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCaller = callerID
	n := &models.Note{
		ID: int64(len(f.notes) + 1), UserID: callerID, Title: title, Content: content,
		CreatedBy: "Owner", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.notes[n.ID] = n
	return n, nil
}

func (f *fakeNoteService) GetNote(ctx context.Context, callerID, noteID int64) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCaller = callerID
	n, ok := f.notes[noteID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return n, nil
}

func (f *fakeNoteService) ListOwnedNotes(ctx context.Context, callerID int64) ([]*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCaller = callerID
	var out []*models.Note
	for _, n := range f.notes {
		if n.UserID == callerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNoteService) ListSharedNotes(ctx context.Context, callerID int64) ([]*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCaller = callerID
	return nil, nil
}

func (f *fakeNoteService) UpdateNote(ctx context.Context, callerID, noteID int64, title string, content map[string]any) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCaller = callerID
	n, ok := f.notes[noteID]
	if !ok {
		return nil, common.ErrNotFound
	}
	n.Title = title
	n.Content = content
	return n, nil
}

func (f *fakeNoteService) ShareNote(ctx context.Context, callerID, noteID int64, targetEmail string, level models.PermissionLevel) (*models.NotePermission, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCaller = callerID
	p := &models.NotePermission{ID: 1, NoteID: noteID, UserID: 2, Level: level}
	f.perms = append(f.perms, p)
	return p, nil
}

func (f *fakeNoteService) RevokePermission(ctx context.Context, callerID, noteID, targetUserID int64) error {
	f.lastCaller = callerID
	return f.err
}

func (f *fakeNoteService) DeleteNote(ctx context.Context, callerID, noteID int64) error {
	f.lastCaller = callerID
	if f.err != nil {
		return f.err
	}
	delete(f.notes, noteID)
	return nil
}

func (f *fakeNoteService) ListPermissions(ctx context.Context, callerID, noteID int64) ([]*models.NotePermission, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCaller = callerID
	return f.perms, nil
}

type fakeUserService struct {
	user *models.User
	pair *services.TokenPair
	err  error

	lastEmail, lastRefreshToken string
}

func (f *fakeUserService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	f.lastEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	f.lastEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return f.pair, nil
}

func (f *fakeUserService) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	f.lastRefreshToken = refreshToken
	if f.err != nil {
		return nil, f.err
	}
	return f.pair, nil
}

type fakeImageService struct {
	upload *services.ImageUpload
	url    string
	err    error

	lastCaller int64
	lastKey    string
	lastData   []byte
}

func (f *fakeImageService) Upload(ctx context.Context, callerID int64, data []byte, filename, contentType string) (*services.ImageUpload, error) {
	f.lastCaller = callerID
	f.lastData = data
	if f.err != nil {
		return nil, f.err
	}
	return f.upload, nil
}

func (f *fakeImageService) Delete(ctx context.Context, callerID int64, key string) error {
	f.lastCaller = callerID
	f.lastKey = key
	return f.err
}

func (f *fakeImageService) URL(ctx context.Context, key string) (string, error) {
	f.lastKey = key
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}
