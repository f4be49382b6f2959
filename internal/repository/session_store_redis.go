package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"history_quiz_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

type RedisSessionStore struct {
	Redis *redis.Client
	ttl   time.Duration
}

// NewRedisSessionStore ttl <= 0 表示不过期
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{Redis: rdb, ttl: ttl}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("quiz:session:%d", userID)
}

// redisSessionDoc 与 Mongo 文档一致，带保存时间
type redisSessionDoc struct {
	Document json.RawMessage `json:"document"`
	SavedAt  time.Time       `json:"savedAt"`
}

func encodeRedisDoc(s *model.Session, savedAt time.Time) ([]byte, error) {
	doc, err := encodeSession(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(redisSessionDoc{Document: doc, SavedAt: savedAt.UTC()})
}

func decodeRedisDoc(data []byte) (*model.Session, time.Time, error) {
	var doc redisSessionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode saved session: %w", err)
	}
	if len(doc.Document) == 0 {
		return nil, time.Time{}, fmt.Errorf("decode saved session: empty document")
	}
	s, err := decodeSession(doc.Document)
	if err != nil {
		return nil, time.Time{}, err
	}
	return s, doc.SavedAt, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, userID uint, s *model.Session) error {
	doc, err := encodeRedisDoc(s, time.Now())
	if err != nil {
		return err
	}
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	return r.Redis.Set(ctx, sessionKey(userID), doc, ttl).Err()
}

func (r *RedisSessionStore) Load(ctx context.Context, userID uint) (*model.Session, error) {
	data, err := r.Redis.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s, _, err := decodeRedisDoc(data)
	return s, err
}

func (r *RedisSessionStore) Delete(ctx context.Context, userID uint) error {
	return r.Redis.Del(ctx, sessionKey(userID)).Err()
}
