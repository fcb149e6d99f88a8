package redisdoc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "avail"

// casScript атомарный compare-and-swap документа по ревизии.
// KEYS[1] - ключ документа, ARGV[1] - ожидаемая ревизия,
// ARGV[2] - новое тело документа (уже с rev+1).
// Возвращает 1 при успехе, 0 при конфликте ревизии, -1 если документа нет.
var casScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then
  return -1
end
local doc = cjson.decode(cur)
if tonumber(doc['rev']) ~= tonumber(ARGV[1]) then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`)

// Результаты casScript
const (
	casMissing  = -1
	casConflict = 0
	casOK       = 1
)

// ErrScript возвращается при ошибке выполнения Lua скрипта
var ErrScript = errors.New("redisdoc: script execution failed")

// store общая часть документных хранилищ: клиент и схема ключей
type store struct {
	rdb    *redis.Client
	prefix string
}

// Option настраивает документное хранилище
type Option func(*store)

// WithPrefix задает префикс ключей (по умолчанию "avail")
func WithPrefix(prefix string) Option {
	return func(s *store) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func newStore(rdb *redis.Client, opts ...Option) store {
	s := store{rdb: rdb, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s *store) slotKey(id string) string {
	return fmt.Sprintf("%s:slot:%s", s.prefix, id)
}

func (s *store) siteSlotsKey(siteID string) string {
	return fmt.Sprintf("%s:site:%s:slots", s.prefix, siteID)
}

func (s *store) bookingKey(id string) string {
	return fmt.Sprintf("%s:booking:%s", s.prefix, id)
}

func (s *store) slotBookingsKey(slotID string) string {
	return fmt.Sprintf("%s:slot:%s:bookings", s.prefix, slotID)
}

// cas выполняет условную запись документа
func (s *store) cas(ctx context.Context, key string, expectedRev int64, body []byte) (int64, error) {
	res, err := casScript.Run(ctx, s.rdb, []string{key}, expectedRev, body).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScript, err)
	}
	return res, nil
}
