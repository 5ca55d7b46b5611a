package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/internal/repository"
	"anoa.com/unibot/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	users      UserService
	requests   RequestService
	callbacks  CallbackService
	broadcasts BroadcastService
}

type fixtureOptions struct {
	redis     *redis.Client
	index     RequestIndex
	storage   *fakeStorage
	uploadDir string
	events    EventPublisher
	rateLimit time.Duration
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	callbackRepo := repository.NewCallbackRepository(db)
	broadcastRepo := repository.NewBroadcastRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	events := opts.events
	if events == nil {
		events = NewEventPublisher(opts.redis, nil)
	}

	f := &fixture{
		db:        db,
		users:     NewUserService(db, userRepo, nil),
		requests:  NewRequestService(db, requestRepo, userRepo, opts.redis, opts.index, events, opts.rateLimit, nil),
		callbacks: NewCallbackService(db, callbackRepo, userRepo, events, nil),
	}
	if opts.storage != nil {
		f.broadcasts = NewBroadcastService(db, broadcastRepo, attachmentRepo, userRepo, opts.storage, "unibot_test", opts.uploadDir, events, nil)
	} else {
		f.broadcasts = NewBroadcastService(db, broadcastRepo, attachmentRepo, userRepo, nil, "unibot_test", opts.uploadDir, events, nil)
	}
	return f
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func (f *fixture) countRows(t *testing.T, table any) int64 {
	t.Helper()

	var count int64
	require.NoError(t, f.db.Model(table).Count(&count).Error)
	return count
}

func strp(s string) *string { return &s }

func extp(id model.ExternalID) *model.ExternalID { return &id }

type fakeStorage struct {
	mu      sync.Mutex
	uploads map[string][]byte
	err     error
}

func (s *fakeStorage) UploadMedia(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[folder+"/"+fileName] = body
	return "https://res.cloudinary.com/demo/" + folder + "/" + fileName, nil
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[model.InternalID]model.RequestStatus
	hits    []model.InternalID
	err     error
}

func (i *fakeIndex) InitIndex() error { return nil }

func (i *fakeIndex) IndexRequest(request *model.Request) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.indexed == nil {
		i.indexed = map[model.InternalID]model.RequestStatus{}
	}
	i.indexed[request.ID] = request.Status
	return nil
}

func (i *fakeIndex) Search(string, int) ([]model.InternalID, error) {
	return i.hits, i.err
}

type publishedEvent struct {
	Type    string
	UserID  model.ExternalID
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, userID model.ExternalID, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, UserID: userID, Payload: payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
