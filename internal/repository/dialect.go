package repository

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dialect 屏蔽不同数据库在驱动名、占位符、唯一约束错误上的差异
type dialect struct {
	name       string
	driverName string
	// 位置参数占位符，false 时使用 ?
	numbered        bool
	uniqueViolation func(err error) bool
	schema          []string
}

func dialectFor(driver string) (*dialect, bool) {
	switch driver {
	case "mysql":
		return &dialect{
			name:            "mysql",
			driverName:      "mysql",
			uniqueViolation: isMySQLDuplicate,
			schema:          mysqlSchema,
		}, true
	case "postgres":
		return &dialect{
			name:            "postgres",
			driverName:      "pgx",
			numbered:        true,
			uniqueViolation: isPostgresUniqueViolation,
			schema:          postgresSchema,
		}, true
	case "sqlite":
		return &dialect{
			name:            "sqlite",
			driverName:      "sqlite",
			uniqueViolation: isSQLiteConstraint,
			schema:          sqliteSchema,
		}, true
	}
	return nil, false
}

// rebind 将 ? 占位符转换为当前方言的形式
func (d *dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isMySQLDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isSQLiteConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
