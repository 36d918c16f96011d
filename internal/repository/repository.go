package repository

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a row does not exist or is outside the
// caller's tenant.
var ErrNotFound = errors.New("not found")

// notFound 将 pgx.ErrNoRows 转换为 ErrNotFound
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// dateOrZero 数据源中缺失的日期以零值表示
func dateOrZero(d *time.Time) time.Time {
	if d == nil {
		return time.Time{}
	}
	return *d
}
