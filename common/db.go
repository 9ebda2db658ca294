package common

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver from the scheme of databaseURL. A value
// without a scheme is taken as a sqlite file path.
func Dialector(databaseURL string) (gorm.Dialector, error) {
	scheme, rest, found := strings.Cut(databaseURL, "://")
	if !found {
		return sqlite.Open(databaseURL), nil
	}

	switch scheme {
	case "sqlite", "sqlite3", "file":
		if rest == "" {
			return nil, fmt.Errorf("empty sqlite path in %q", databaseURL)
		}
		return sqlite.Open(rest), nil
	case "postgres", "postgresql":
		return postgres.Open(databaseURL), nil
	case "mysql":
		return mysql.Open(mysqlDSN(rest)), nil
	}
	return nil, fmt.Errorf("unsupported database scheme %q", scheme)
}

// mysqlDSN turns on the driver options the repositories rely on. Without
// clientFoundRows an update that leaves a row unchanged reports zero rows.
func mysqlDSN(dsn string) string {
	for _, param := range []string{"parseTime=true", "clientFoundRows=true"} {
		name, _, _ := strings.Cut(param, "=")
		if strings.Contains(dsn, name+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + param
	}
	return dsn
}

func ConnectDb(databaseURL string) (*gorm.DB, error) {
	dialector, err := Dialector(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Println("Error opening database: " + err.Error())
		return nil, err
	}

	log.Println("opened database:", dialector.Name())
	return db, nil
}
