package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"room-relay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoomStore struct {
	mu       sync.Mutex
	rooms    []models.Room
	messages map[string][]string
	getCalls int
	failAdd  bool
}

func (s *fakeRoomStore) AddRoom(_ context.Context, roomID, roomName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAdd {
		return errors.New("disk full")
	}
	s.rooms = append(s.rooms, models.Room{ID: roomID, Name: roomName})
	return nil
}

// AddMessage records the message's room pair once, like SELECT DISTINCT.
func (s *fakeRoomStore) AddMessage(_ context.Context, roomID, roomName, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := models.Room{ID: roomID, Name: roomName}
	for _, r := range s.rooms {
		if r == room {
			return nil
		}
	}
	s.rooms = append(s.rooms, room)
	return nil
}

func (s *fakeRoomStore) GetRooms(context.Context) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	out := make([]models.Room, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}

func (s *fakeRoomStore) GetMessages(_ context.Context, roomID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[roomID], nil
}

// mapCache is an in-process Cache that ignores expiry.
type mapCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	raw, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestRoomServiceCreateThenList(t *testing.T) {
	store := &fakeRoomStore{}
	svc := NewRoomService(store, nil, 0)
	ctx := context.Background()

	id, err := svc.CreateRoom(ctx, "Lobby")
	require.NoError(t, err)
	assert.Len(t, id, 36)

	rooms, err := svc.ListRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Room{{ID: id, Name: "Lobby"}}, rooms)
}

func TestRoomServiceCreateRoomAcceptsEmptyName(t *testing.T) {
	svc := NewRoomService(&fakeRoomStore{}, nil, 0)

	id, err := svc.CreateRoom(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestRoomServiceCreateRoomIDsAreUnique(t *testing.T) {
	svc := NewRoomService(&fakeRoomStore{}, nil, 0)
	ctx := context.Background()

	first, err := svc.CreateRoom(ctx, "Lobby")
	require.NoError(t, err)
	second, err := svc.CreateRoom(ctx, "Lobby")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestRoomServiceCreateRoomStoreFailure(t *testing.T) {
	svc := NewRoomService(&fakeRoomStore{failAdd: true}, nil, 0)

	id, err := svc.CreateRoom(context.Background(), "Lobby")
	assert.Error(t, err)
	assert.Empty(t, id)
}

func TestRoomServiceListUsesCache(t *testing.T) {
	store := &fakeRoomStore{rooms: []models.Room{{ID: "r1", Name: "General"}}}
	cache := newMapCache()
	svc := NewRoomService(store, cache, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rooms, err := svc.ListRooms(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.Room{{ID: "r1", Name: "General"}}, rooms)
	}
	assert.Equal(t, 1, store.getCalls)

	_, err := svc.CreateRoom(ctx, "Lobby")
	require.NoError(t, err)

	rooms, err := svc.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.Equal(t, 2, store.getCalls)
}

func TestRoomServiceRoomMessages(t *testing.T) {
	store := &fakeRoomStore{messages: map[string][]string{"r1": {"hi", "yo"}}}
	svc := NewRoomService(store, nil, 0)

	texts, err := svc.RoomMessages(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"hi", "yo"}, texts)
}

func TestRoomServiceRelayedRoomInvalidatesCache(t *testing.T) {
	store := &fakeRoomStore{}
	cache := newMapCache()
	svc := NewRoomService(store, cache, time.Minute)
	tracked := svc.TrackMessages(store)
	ctx := context.Background()

	rooms, err := svc.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	require.NoError(t, tracked.AddMessage(ctx, "r1", "General", "hi"))

	rooms, err = svc.ListRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Room{{ID: "r1", Name: "General"}}, rooms)
	assert.Equal(t, 1, cache.deletes)

	// a known room leaves the cached list alone
	require.NoError(t, tracked.AddMessage(ctx, "r1", "General", "again"))
	_, err = svc.ListRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.deletes)
	assert.Equal(t, 2, store.getCalls)

	// a new name for the same id is a new pair
	require.NoError(t, tracked.AddMessage(ctx, "r1", "", "no name"))
	rooms, err = svc.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.Equal(t, 2, cache.deletes)
}

func TestRoomServiceKnownRoomsFromStoreSkipInvalidation(t *testing.T) {
	store := &fakeRoomStore{rooms: []models.Room{{ID: "r1", Name: "General"}}}
	cache := newMapCache()
	svc := NewRoomService(store, cache, time.Minute)
	tracked := svc.TrackMessages(store)
	ctx := context.Background()

	_, err := svc.ListRooms(ctx)
	require.NoError(t, err)

	require.NoError(t, tracked.AddMessage(ctx, "r1", "General", "hi"))
	assert.Equal(t, 0, cache.deletes)
}

// blockingRoomStore pauses GetRooms until released so a relayed message can
// land between the store read and the cache write.
type blockingRoomStore struct {
	*fakeRoomStore
	reading chan struct{}
	release chan struct{}
}

func (s *blockingRoomStore) GetRooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.fakeRoomStore.GetRooms(ctx)
	close(s.reading)
	<-s.release
	return rooms, err
}

func TestRoomServiceStaleListIsNotCached(t *testing.T) {
	inner := &fakeRoomStore{}
	store := &blockingRoomStore{fakeRoomStore: inner, reading: make(chan struct{}), release: make(chan struct{})}
	cache := newMapCache()
	svc := NewRoomService(store, cache, time.Minute)
	tracked := svc.TrackMessages(inner)
	ctx := context.Background()

	done := make(chan []models.Room)
	go func() {
		rooms, _ := svc.ListRooms(ctx)
		done <- rooms
	}()

	<-store.reading
	require.NoError(t, tracked.AddMessage(ctx, "r1", "General", "hi"))
	close(store.release)
	assert.Empty(t, <-done)

	var cached []models.Room
	assert.ErrorIs(t, cache.Get(ctx, roomListCacheKey, &cached), ErrCacheMiss)
}

func TestTrackedStorePropagatesWriteError(t *testing.T) {
	svc := NewRoomService(&fakeRoomStore{}, newMapCache(), time.Minute)
	tracked := svc.TrackMessages(failingWriter{})

	assert.Error(t, tracked.AddMessage(context.Background(), "r1", "General", "hi"))
}

type failingWriter struct{}

func (failingWriter) AddMessage(context.Context, string, string, string) error {
	return errors.New("database is locked")
}
