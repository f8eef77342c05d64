package database

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/xelth-com/tradetrack/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	embeddedDataPath = "./db_data"
	embeddedPort     = 5433
	embeddedPassword = "postgres"

	pollInterval = 500 * time.Millisecond
)

// DB wraps gorm.DB and includes a reference to an embedded process if active
type DB struct {
	*gorm.DB
	embedded *embeddedpostgres.EmbeddedPostgres
	log      *zap.Logger
}

// stalePID returns the pid recorded by a previous embedded server, or 0.
func stalePID(dataPath string) (int, string) {
	pidFile := filepath.Join(dataPath, "postmaster.pid")
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, pidFile
	}
	first, _, _ := strings.Cut(string(data), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, pidFile
	}
	return pid, pidFile
}

func alive(p *os.Process) bool {
	return p.Signal(syscall.Signal(0)) == nil
}

// reapEmbedded stops a server left running by a crashed process and removes its
// pid file, so embedded-postgres can start on the same data directory.
func reapEmbedded(log *zap.Logger) {
	pid, pidFile := stalePID(embeddedDataPath)
	if pid == 0 {
		return
	}
	defer os.Remove(pidFile)

	proc, err := os.FindProcess(pid)
	if err != nil || !alive(proc) {
		log.Info("removing stale postmaster.pid", zap.Int("pid", pid))
		return
	}

	log.Warn("stopping orphaned PostgreSQL", zap.Int("pid", pid))
	_ = proc.Signal(syscall.SIGTERM)
	if waitUntil(10, func() bool { return !alive(proc) }) {
		return
	}
	log.Warn("orphaned PostgreSQL ignored SIGTERM, killing", zap.Int("pid", pid))
	_ = proc.Kill()
	time.Sleep(pollInterval)
}

// waitUntil polls cond up to tries times.
func waitUntil(tries int, cond func() bool) bool {
	for i := 0; i < tries; i++ {
		if cond() {
			return true
		}
		time.Sleep(pollInterval)
	}
	return cond()
}

func portInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// startEmbedded boots the bundled server and points cfg at it.
func startEmbedded(cfg *config.DatabaseConfig, log *zap.Logger) (*embeddedpostgres.EmbeddedPostgres, error) {
	log.Info("starting embedded PostgreSQL", zap.String("data", embeddedDataPath))
	reapEmbedded(log)

	if !waitUntil(6, func() bool { return !portInUse(embeddedPort) }) {
		return nil, fmt.Errorf("embedded port %d is held by another process", embeddedPort)
	}

	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		DataPath(embeddedDataPath).
		Port(uint32(embeddedPort)).
		Database(cfg.Database).
		Username(cfg.Username).
		Password(embeddedPassword))
	if err := pg.Start(); err != nil {
		return nil, fmt.Errorf("start embedded database: %w", err)
	}

	cfg.Host = "localhost"
	cfg.Port = strconv.Itoa(embeddedPort)
	cfg.Password = embeddedPassword
	log.Info("embedded PostgreSQL started", zap.Int("port", embeddedPort))
	return pg, nil
}

// Connect opens the configured PostgreSQL, starting the embedded server when
// no external one is configured.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var pg *embeddedpostgres.EmbeddedPostgres
	if cfg.Embedded() {
		var err error
		if pg, err = startEmbedded(&cfg, log); err != nil {
			return nil, err
		}
	} else {
		log.Info("connecting to external PostgreSQL", zap.String("host", cfg.Host), zap.String("port", cfg.Port))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)

	// DB_ALTER runs are noisy; keep gorm quiet for them
	level := logger.Warn
	if cfg.Alter {
		level = logger.Silent
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		if pg != nil {
			_ = pg.Stop()
		}
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("database connection established", zap.Bool("embedded", pg != nil))
	return &DB{DB: gdb, embedded: pg, log: log}, nil
}

// Close closes the pool, then stops the embedded server if this process started it.
func (db *DB) Close() error {
	var errs []error
	if sqlDB, err := db.DB.DB(); err != nil {
		errs = append(errs, err)
	} else if err := sqlDB.Close(); err != nil {
		errs = append(errs, err)
	}
	if db.embedded != nil {
		db.log.Info("stopping embedded PostgreSQL")
		if err := db.embedded.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop embedded database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// AutoMigrate creates or updates the tables for models
func (db *DB) AutoMigrate(models ...interface{}) error {
	return db.DB.AutoMigrate(models...)
}
