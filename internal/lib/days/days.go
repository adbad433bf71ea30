// Package days содержит функции для работы с календарными датами брони:
// разбор дат, нормализацию к началу суток и подсчёт дней до начала поездки.
package days

import (
	"fmt"
	"time"
)

// Layout — формат дат в запросах и ответах API.
const Layout = "2006-01-02"

// Parse разбирает дату в формате 2006-01-02 в полночь UTC.
func Parse(value string) (time.Time, error) {
	const op = "days.Parse"
	t, err := time.ParseInLocation(Layout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// Truncate отбрасывает время суток, оставляя календарную дату в UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Until возвращает число полных календарных дней от today до start.
// Отрицательное значение означает, что поездка уже началась.
func Until(today, start time.Time) int {
	diff := Truncate(start).Sub(Truncate(today))
	return int(diff.Hours() / 24)
}

// InsideWindow сообщает, попадает ли today в окно из windowDays дней перед start.
func InsideWindow(today, start time.Time, windowDays int) bool {
	return Until(today, start) < windowDays
}
