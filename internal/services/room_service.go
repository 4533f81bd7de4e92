package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"room-relay/internal/models"

	"github.com/google/uuid"
)

const roomListCacheKey = "rooms:list"

// ErrCacheMiss is returned by Cache.Get for an absent key.
var ErrCacheMiss = errors.New("cache miss")

// RoomStore is the part of the message store the room endpoints read from.
type RoomStore interface {
	AddRoom(ctx context.Context, roomID, roomName string) error
	GetRooms(ctx context.Context) ([]models.Room, error)
	GetMessages(ctx context.Context, roomID string) ([]string, error)
}

// MessageWriter is the write side of the message store used by the relay.
type MessageWriter interface {
	AddMessage(ctx context.Context, roomID, roomName, text string) error
}

// Cache is a JSON key/value cache. RedisService implements it.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type RoomService struct {
	store RoomStore
	cache Cache
	ttl   time.Duration

	// mu guards known and generation. generation moves on every
	// invalidation so a list read from the store before it is not cached.
	mu         sync.Mutex
	known      map[models.Room]struct{}
	generation uint64
}

// NewRoomService builds the service. cache may be nil, which disables
// caching of the room list.
func NewRoomService(store RoomStore, cache Cache, ttl time.Duration) *RoomService {
	return &RoomService{
		store: store,
		cache: cache,
		ttl:   ttl,
		known: make(map[models.Room]struct{}),
	}
}

// ListRooms returns every distinct (id, name) pair in the store.
func (s *RoomService) ListRooms(ctx context.Context) ([]models.Room, error) {
	if s.cache != nil {
		var cached []models.Room
		err := s.cache.Get(ctx, roomListCacheKey, &cached)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil && !errors.Is(err, ErrCacheMiss) {
			slog.Warn("Failed to read room list from cache", "error", err)
		}
	}

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	rooms, err := s.store.GetRooms(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range rooms {
		s.known[room] = struct{}{}
	}
	if s.cache != nil && s.ttl > 0 && s.generation == generation {
		if err := s.cache.Set(ctx, roomListCacheKey, rooms, s.ttl); err != nil {
			slog.Warn("Failed to cache room list", "error", err)
		}
	}
	return rooms, nil
}

// CreateRoom stores a creation marker under a fresh id and returns the id.
func (s *RoomService) CreateRoom(ctx context.Context, name string) (string, error) {
	id := uuid.New().String()
	if err := s.store.AddRoom(ctx, id, name); err != nil {
		return "", err
	}
	s.noteRoom(ctx, models.Room{ID: id, Name: name})

	slog.Info("Room created", "roomID", id, "roomName", name)
	return id, nil
}

// RoomMessages returns the stored message texts of a room, oldest first.
func (s *RoomService) RoomMessages(ctx context.Context, roomID string) ([]string, error) {
	return s.store.GetMessages(ctx, roomID)
}

// TrackMessages wraps w so that persisting a message under a room pair this
// service has not seen yet drops the cached room list.
func (s *RoomService) TrackMessages(w MessageWriter) *TrackedStore {
	return &TrackedStore{writer: w, rooms: s}
}

// noteRoom invalidates the cached room list the first time room is seen.
func (s *RoomService) noteRoom(ctx context.Context, room models.Room) {
	s.mu.Lock()
	if _, ok := s.known[room]; ok {
		s.mu.Unlock()
		return
	}
	s.known[room] = struct{}{}
	s.generation++
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, roomListCacheKey); err != nil {
		slog.Warn("Failed to invalidate room list cache", "roomID", room.ID, "error", err)
		// retry on the next message for this room
		s.mu.Lock()
		delete(s.known, room)
		s.mu.Unlock()
	}
}

// TrackedStore is a MessageWriter that keeps the room list cache in step
// with rooms first created by relayed messages.
type TrackedStore struct {
	writer MessageWriter
	rooms  *RoomService
}

func (t *TrackedStore) AddMessage(ctx context.Context, roomID, roomName, text string) error {
	if err := t.writer.AddMessage(ctx, roomID, roomName, text); err != nil {
		return err
	}
	t.rooms.noteRoom(ctx, models.Room{ID: roomID, Name: roomName})
	return nil
}
