package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/repositories"
	"github.com/anonto42/memories/backend/internal/storage"
	"github.com/rs/zerolog"
)

// --- Fakes ---

type fakePostRepo struct {
	mu      sync.Mutex
	order   []string
	posts   map[string]models.Post
	nextID  int
	queries []models.PostQuery

	createCalls int
	createErr   error
	// taggedErr fails every tagged query; ownedErr only ordered owner queries
	taggedErr error
	ownedErr  error
	updateErr error
	deleteErr error
	updates   []map[string]interface{}
	deleted   []string
}

func newFakePostRepo(posts ...models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[string]models.Post)}
	for _, p := range posts {
		r.order = append(r.order, p.ID)
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) CreatePost(ctx context.Context, record *models.PostRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return "", r.createErr
	}
	r.nextID++
	id := fmt.Sprintf("post-%d", r.nextID)
	r.order = append(r.order, id)
	r.posts[id] = record.ToPost(id)
	return id, nil
}

func (r *fakePostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (r *fakePostRepo) QueryPosts(ctx context.Context, q models.PostQuery) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	if q.TaggedUserID != "" && r.taggedErr != nil {
		return nil, r.taggedErr
	}
	if q.OwnerID != "" && r.ownedErr != nil && q.Ordered {
		return nil, r.ownedErr
	}

	out := make([]models.Post, 0)
	for _, id := range r.order {
		p := r.posts[id]
		if q.OwnerID != "" && p.OwnerID != q.OwnerID {
			continue
		}
		if q.TaggedUserID != "" && !contains(p.TaggedPeople, q.TaggedUserID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePostRepo) UpdatePost(ctx context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	r.updates = append(r.updates, fields)
	return nil
}

func (r *fakePostRepo) DeletePost(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, id)
	delete(r.posts, id)
	return nil
}

const fakeStoreBase = "https://objects.test/"

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	// failPut fails uploads whose key contains the string
	failPut     string
	failDelete  map[string]error
	deleteCalls map[string]int
	// delays staggers uploads by key substring to shuffle completion order
	delays map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:     make(map[string][]byte),
		failDelete:  make(map[string]error),
		deleteCalls: make(map[string]int),
		delays:      make(map[string]time.Duration),
	}
}

func (s *fakeStore) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	for sub, d := range s.delays {
		if strings.Contains(key, sub) {
			time.Sleep(d)
		}
	}
	if s.failPut != "" && strings.Contains(key, s.failPut) {
		return errors.New("upload rejected")
	}
	blob, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = blob
	return nil
}

func (s *fakeStore) URL(ctx context.Context, key string) (string, error) {
	return fakeStoreBase + key, nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls[key]++
	if err := s.failDelete[key]; err != nil {
		return err
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) KeyFromURL(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, fakeStoreBase) {
		return "", storage.ErrUnknownURL
	}
	return strings.TrimPrefix(rawURL, fakeStoreBase), nil
}

func (s *fakeStore) objectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeTimelineCache struct {
	mu          sync.Mutex
	lists       map[string][]models.Post
	sets        int
	invalidated []string
}

func newFakeTimelineCache() *fakeTimelineCache {
	return &fakeTimelineCache{lists: make(map[string][]models.Post)}
}

func (c *fakeTimelineCache) Get(ctx context.Context, userID string) ([]models.Post, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.lists[userID]
	return list, ok, nil
}

func (c *fakeTimelineCache) Set(ctx context.Context, userID string, posts []models.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.lists[userID] = posts
	return nil
}

func (c *fakeTimelineCache) Invalidate(ctx context.Context, userIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		c.invalidated = append(c.invalidated, id)
		delete(c.lists, id)
	}
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	created []string
	deleted []string
}

func (p *fakePublisher) PublishPostCreated(ctx context.Context, post models.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, post.ID)
	return nil
}

func (p *fakePublisher) PublishPostDeleted(ctx context.Context, post models.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, post.ID)
	return nil
}

type fakeUserRepo struct {
	users   map[string]models.User
	err     error
	ensured []string
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) EnsureUser(ctx context.Context, user *models.User) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.ensured = append(r.ensured, user.ID)
	if existing, ok := r.users[user.ID]; ok {
		return &existing, nil
	}
	r.users[user.ID] = *user
	return user, nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return &u, nil
}

func (r *fakeUserRepo) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetUsers(ctx context.Context) ([]models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeTagRepo struct {
	tags map[string][]string
	err  error
}

func (r *fakeTagRepo) GetTagsByUserID(ctx context.Context, userID string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]string{}, r.tags[userID]...), nil
}

func (r *fakeTagRepo) AddTag(ctx context.Context, userID, tag string) error {
	if r.err != nil {
		return r.err
	}
	r.tags[userID] = append(r.tags[userID], tag)
	return nil
}

var (
	_ repositories.PostRepository    = (*fakePostRepo)(nil)
	_ repositories.UserRepository    = (*fakeUserRepo)(nil)
	_ repositories.UserTagRepository = (*fakeTagRepo)(nil)
	_ storage.ObjectStore            = (*fakeStore)(nil)
)

// --- Helpers ---

type testEnv struct {
	svc       *PostService
	posts     *fakePostRepo
	store     *fakeStore
	timelines *fakeTimelineCache
	events    *fakePublisher
	users     *fakeUserRepo
}

func newTestEnv(t *testing.T, posts ...models.Post) *testEnv {
	t.Helper()
	env := &testEnv{
		posts:     newFakePostRepo(posts...),
		store:     newFakeStore(),
		timelines: newFakeTimelineCache(),
		events:    &fakePublisher{},
		users:     newFakeUserRepo(),
	}
	people := NewUserService(env.users, zerolog.Nop())
	env.svc = NewPostService(env.posts, people, env.store, env.timelines, env.events, zerolog.Nop())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return fixed }
	return env
}

func bytesMedia(name string, kind models.MediaKind, content string) LocalMedia {
	return LocalMedia{
		Kind:         kind,
		OriginalName: name,
		ContentType:  "application/octet-stream",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func mkPost(id, owner string, occurred time.Time, tagged ...string) models.Post {
	return models.Post{
		ID:           id,
		OwnerID:      owner,
		OccurredAt:   occurred,
		Tags:         []string{},
		TaggedPeople: tagged,
	}
}

func ids(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
