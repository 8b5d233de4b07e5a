package model

// Session — одна записанная фокус-сессия. start_time хранится текстом
// (ISO-8601) ровно в том виде, в котором его прислал клиент: офлайн-клиенты
// синхронизируют прошедшие сессии, и история должна вернуть то же значение.
// Owner наружу не отдаётся — история и так запрашивается по владельцу.
type Session struct {
	ID        int64  `json:"id"`
	Owner     string `json:"-"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
}
