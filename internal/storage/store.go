package storage

import "context"

// LimiterStore — счётчики rate limit для анонимного API (лог/история/удаление
// не требуют входа, поэтому лимитируем по IP и по владельцу).
// Реализации: redis.Client, memory.Client (для -dev и запуска без Redis).
type LimiterStore interface {
	// Allow учитывает одно обращение по ключу и сообщает, укладывается ли
	// вызывающий в окно. Ошибка означает недоступность хранилища, не отказ.
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}
