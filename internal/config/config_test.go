package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/glance/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a fresh config", t, func() {
		cfg := config.New()

		Convey("It carries the documented defaults", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.GoalDBPath, ShouldEqual, "goals.db")
			So(cfg.SnapshotDBPath, ShouldEqual, "widget.db")
			So(cfg.NotifyPath, ShouldBeEmpty)
			So(cfg.MetricsAddr, ShouldEqual, ":9090")
			So(cfg.DebounceMS, ShouldEqual, 300)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given no file and no environment overrides", t, func() {
		t.Setenv("GLANCE_CONFIG", "")

		cfg, err := config.Load(context.Background())
		So(err, ShouldBeNil)

		Convey("Load returns the defaults", func() {
			So(cfg, ShouldResemble, config.New())
		})
	})

	Convey("Given a YAML config file", t, func() {
		path := filepath.Join(t.TempDir(), "glance.yaml")
		body := "log_level: debug\ngoal_db_path: /data/goals.db\ndebounce_ms: 150\n"
		So(os.WriteFile(path, []byte(body), 0o644), ShouldBeNil)
		t.Setenv("GLANCE_CONFIG", path)

		cfg, err := config.Load(context.Background())
		So(err, ShouldBeNil)

		Convey("File values override the defaults", func() {
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.GoalDBPath, ShouldEqual, "/data/goals.db")
			So(cfg.DebounceMS, ShouldEqual, 150)
		})

		Convey("Untouched keys keep their defaults", func() {
			So(cfg.SnapshotDBPath, ShouldEqual, "widget.db")
			So(cfg.MetricsAddr, ShouldEqual, ":9090")
		})

		Convey("And environment variables override the file", func() {
			t.Setenv("GLANCE_GOAL_DB_PATH", "/env/goals.db")
			t.Setenv("GLANCE_LOG_LEVEL", "warn")

			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.GoalDBPath, ShouldEqual, "/env/goals.db")
			So(cfg.LogLevel, ShouldEqual, "warn")
			So(cfg.DebounceMS, ShouldEqual, 150)
		})
	})

	Convey("Given an unreadable config file", t, func() {
		t.Setenv("GLANCE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

		_, err := config.Load(context.Background())
		So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
	})

	Convey("Given invalid values", t, func() {
		t.Setenv("GLANCE_CONFIG", "")

		Convey("An empty goal database path is rejected", func() {
			path := filepath.Join(t.TempDir(), "glance.yaml")
			So(os.WriteFile(path, []byte(`goal_db_path: ""`+"\n"), 0o644), ShouldBeNil)
			t.Setenv("GLANCE_CONFIG", path)

			_, err := config.Load(context.Background())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("A non-positive debounce is rejected", func() {
			path := filepath.Join(t.TempDir(), "glance.yaml")
			So(os.WriteFile(path, []byte("debounce_ms: 0\n"), 0o644), ShouldBeNil)
			t.Setenv("GLANCE_CONFIG", path)

			_, err := config.Load(context.Background())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
