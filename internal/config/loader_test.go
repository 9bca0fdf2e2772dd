package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ringsidehq/ringside/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given only defaults", t, func() {
		cfg, err := config.Load()
		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":9080")
	})
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RINGSIDE_ADDR", ":7070")
	t.Setenv("RINGSIDE_STORE_DRIVER", "memory")
	t.Setenv("RINGSIDE_WORKER_COUNT", "3")

	Convey("Given env overrides", t, func() {
		cfg, err := config.Load()
		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":7070")
		So(cfg.StoreDriver, ShouldEqual, config.StoreDriverMemory)
		So(cfg.WorkerCount, ShouldEqual, 3)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":6060\"\nlog_level: debug\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("RINGSIDE_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load()
		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":6060")
		So(cfg.LogLevel, ShouldEqual, "debug")
	})
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("RINGSIDE_STORE_DRIVER", "postgres")

	Convey("Given an unknown store driver", t, func() {
		_, err := config.Load()
		So(err, ShouldWrap, config.ErrInvalidConfig)
	})
}
