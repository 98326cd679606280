// Package jitter добавляет случайность в интервалы повторов и опроса,
// чтобы несколько экземпляров сервиса не обращались к брокеру и БД синхронно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter - стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

// Duration возвращает d, увеличенную на случайную долю в пределах factor.
// Результат в диапазоне [d, d*(1+factor)).
func Duration(d time.Duration, factor float64) time.Duration {
	if d <= 0 || factor <= 0 {
		return d
	}
	return d + time.Duration(rand.Float64()*factor*float64(d))
}

// ExponentialBackoff удваивает base на каждую попытку (attempt с нуля), не превышая limit,
// и применяет джиттер к результату.
func ExponentialBackoff(base, limit time.Duration, attempt int, factor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt && backoff < limit; i++ {
		backoff *= 2
	}
	return Duration(min(backoff, limit), factor)
}
