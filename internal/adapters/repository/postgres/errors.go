package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/logiflow/internal/core/validation"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// translatePgError は PostgreSQL のエラーをドメインのエラーへ変換します。
// 行が存在しない場合は notFound を返します。
func translatePgError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, validation.ErrDuplicateKey)
		case foreignKeyViolationCode:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, validation.ErrInvalidReference)
		case checkViolationCode:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, validation.ErrInvalidFormat)
		}
	}

	return err
}
