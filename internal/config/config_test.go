package config_test

import (
	"testing"

	"github.com/ringsidehq/ringside/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := config.New()

		Convey("Then sane defaults are set", func() {
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.QueueSize, ShouldEqual, 4096)
			So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
			So(cfg.StoreDriver, ShouldEqual, config.StoreDriverSQLite)
			So(cfg.TokenTTLMinutes, ShouldEqual, 480)
		})
	})
}
