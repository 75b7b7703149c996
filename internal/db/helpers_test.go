package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wb-go/wbf/zlog"

	"github.com/unclebandit/donorlink-backend/internal/config"
)

func sqliteConfig(t *testing.T) config.Database {
	return config.Database{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "donors.db")}
}

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}
