package utils

import (
	"context"
	"time"
)

// RequestTimeout ограничение времени на обращения к хранилищу в рамках запроса
const RequestTimeout = 5 * time.Second

// GetContext возвращает контекст с таймаутом для операций с базой данных
func GetContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), RequestTimeout)
}
