package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"

	"footstep/internal/pkg/config"
	"footstep/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "roll back all migrations")
	force := flag.Int("force", -1, "force version after a failed migration")
	flag.Parse()

	config.LoadConfig()
	log := logger.InitLogger(config.GlobalConfig.App.Env, config.GlobalConfig.App.Debug)
	defer logger.Sync()

	m, err := migrate.New("file://migrations", databaseURL(config.GlobalConfig.Database))
	if err != nil {
		log.Fatal("open migrations", zap.Error(err))
	}
	defer m.Close()

	// 数据库处于 dirty 状态时需要先手动指定版本
	if *force >= 0 {
		if err := m.Force(*force); err != nil {
			log.Fatal("force version", zap.Int("version", *force), zap.Error(err))
		}
		log.Info("version forced", zap.Int("version", *force))
	}

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Fatal("database is dirty, rerun with -force", zap.Int("version", dirty.Version))
		}
		log.Fatal("migration failed", zap.Error(err))
	}

	version, dirty, _ := m.Version()
	log.Info("migration finished", zap.Uint("version", version), zap.Bool("dirty", dirty))
}

func databaseURL(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=" + cfg.SSLMode,
	}
	return u.String()
}
