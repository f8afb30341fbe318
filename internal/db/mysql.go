package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"learnhub/internal/logging"
)

type opener func(dsn string) (*gorm.DB, error)

// NewMySQL returns a connected GORM DB instance. Driver errors such as
// duplicate keys are translated to gorm's portable errors.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Connect tries every DSN in order, retrying the whole list up to attempts
// times with exponential backoff between rounds.
func Connect(dsns []string, attempts int) (*gorm.DB, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = 0
	return connect(dsns, attempts, NewMySQL, b)
}

func connect(dsns []string, attempts int, open opener, b backoff.BackOff) (*gorm.DB, error) {
	if len(dsns) == 0 {
		return nil, errors.New("connect mysql: no DSN configured")
	}
	if attempts < 1 {
		attempts = 1
	}

	var conn *gorm.DB
	round := 0
	op := func() error {
		round++
		var errs []error
		for i, dsn := range dsns {
			db, err := open(dsn)
			if err == nil {
				conn = db
				return nil
			}
			logging.Log().WithError(err).WithField("dsn_index", i).WithField("attempt", round).Warn("database connection failed")
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}

	if err := backoff.Retry(op, backoff.WithMaxRetries(b, uint64(attempts-1))); err != nil {
		return nil, fmt.Errorf("connect mysql after %d attempts: %w", attempts, err)
	}
	return conn, nil
}
