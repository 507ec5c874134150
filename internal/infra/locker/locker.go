package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Блокировка слота - ключ в Redis с TTL. SET NX - единственная атомарная
// условная вставка: из двух конкурентных Acquire на один слот ровно один
// получит ключ. Истечение TTL встроено в хранилище, поэтому протухшая
// блокировка невидима для чтения без всякого фонового чистильщика
var (
	// ErrAlreadyLocked возвращается, когда слот уже удерживается другим держателем
	ErrAlreadyLocked = errors.New("locker: slot is already locked")

	// ErrNotHolder возвращается при попытке снять чужую блокировку
	ErrNotHolder = errors.New("locker: lock is held by another holder")

	// ErrUnavailable возвращается при недоступности Redis
	ErrUnavailable = errors.New("locker: redis unavailable")
)

// releaseScript атомарное сравнение держателя и удаление
// Снимать блокировку может только тот, кто её поставил, иначе
// медленный клиент удалил бы блокировку, уже перехваченную другим
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return -1
`)

// SlotLocker менеджер краткоживущих блокировок слотов поверх Redis
type SlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// New создает новый менеджер блокировок
// ttl - время жизни блокировки по умолчанию
func New(client *redis.Client, ttl time.Duration) *SlotLocker {
	return &SlotLocker{client: client, ttl: ttl}
}

func lockKey(slotID int64) string {
	return fmt.Sprintf("slotlock:%d", slotID)
}

// Acquire захватывает блокировку слота для держателя holder
// Если ttl <= 0, используется TTL по умолчанию
func (l *SlotLocker) Acquire(ctx context.Context, slotID int64, holder string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = l.ttl
	}

	ok, err := l.client.SetNX(ctx, lockKey(slotID), holder, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: Acquire - slot %d: %v", ErrUnavailable, slotID, err)
	}
	if !ok {
		return ErrAlreadyLocked
	}

	return nil
}

// Release снимает блокировку слота, если её держит holder
// Отсутствующая (истекшая) блокировка считается успешно снятой
func (l *SlotLocker) Release(ctx context.Context, slotID int64, holder string) error {
	res, err := releaseScript.Run(ctx, l.client, []string{lockKey(slotID)}, holder).Int()
	if err != nil {
		return fmt.Errorf("%w: Release - slot %d: %v", ErrUnavailable, slotID, err)
	}
	if res == -1 {
		// Ключа нет (TTL истек) или держатель другой
		exists, err := l.client.Exists(ctx, lockKey(slotID)).Result()
		if err != nil {
			return fmt.Errorf("%w: Release - slot %d: %v", ErrUnavailable, slotID, err)
		}
		if exists > 0 {
			return ErrNotHolder
		}
	}

	return nil
}

// IsLocked возвращает true, если на слоте есть живая блокировка
func (l *SlotLocker) IsLocked(ctx context.Context, slotID int64) (bool, error) {
	exists, err := l.client.Exists(ctx, lockKey(slotID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: IsLocked - slot %d: %v", ErrUnavailable, slotID, err)
	}
	return exists > 0, nil
}

// HeldBy возвращает true, если блокировку слота держит именно holder
func (l *SlotLocker) HeldBy(ctx context.Context, slotID int64, holder string) (bool, error) {
	val, err := l.client.Get(ctx, lockKey(slotID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: HeldBy - slot %d: %v", ErrUnavailable, slotID, err)
	}
	return val == holder, nil
}

// LockedSet возвращает подмножество slotIDs с живыми блокировками
// и держателя каждой. Один MGET вместо N запросов
func (l *SlotLocker) LockedSet(ctx context.Context, slotIDs []int64) (map[int64]string, error) {
	locked := make(map[int64]string)
	if len(slotIDs) == 0 {
		return locked, nil
	}

	keys := make([]string, len(slotIDs))
	for i, id := range slotIDs {
		keys[i] = lockKey(id)
	}

	vals, err := l.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: LockedSet: %v", ErrUnavailable, err)
	}

	for i, v := range vals {
		if v == nil {
			continue
		}
		if holder, ok := v.(string); ok {
			locked[slotIDs[i]] = holder
		}
	}

	return locked, nil
}
