package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ringsidehq/ringside/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithPrometheusRegistry(registry),
			metrics.WithNamespace("ringside_test"),
			metrics.WithSubsystem("unit"),
		)
		So(m, ShouldNotBeNil)

		Convey("Then all metric families register without collision", func() {
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			// Counters do not appear until first increment; gauges and
			// histograms register immediately.
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the helpers record without panicking", func() {
			So(func() {
				metrics.RecordEvaluation("normal")
				metrics.RecordEvaluation("did_not_participate")
				metrics.RecordEvaluationDeleted()
				metrics.RecordLeaderboardRebuild(3.5)
				metrics.RecordLeaderboardRebuildError()
				metrics.UpdateQueueSize(10)
				metrics.UpdateQueueCapacity(100)
				metrics.UpdateQueueUtilization(0.1)
				metrics.RecordQueueEnqueue()
				metrics.RecordQueueDequeue()
				metrics.RecordQueueDropped("queue_full")
				metrics.UpdateWorkerCount(4)
				metrics.UpdateStreamClients(2)
				metrics.RecordStoreOp("evaluations", "create")
				metrics.RecordWatchDropped("competitors")
				metrics.RecordHTTPRequest("leaderboard", "GET", "200")
				metrics.RecordHTTPRequestDuration("leaderboard", "GET", "200", 1.2)
				metrics.UpdateSystemMemoryUsage(1 << 20)
				metrics.UpdateSystemGoroutineCount(42)
			}, ShouldNotPanic)
		})

		Convey("Then the global registry gathers the recorded families", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make(map[string]bool, len(families))
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["ringside_console_evaluations_recorded_total"], ShouldBeTrue)
			So(names["ringside_console_leaderboard_rebuilds_total"], ShouldBeTrue)
			So(names["ringside_console_store_operations_total"], ShouldBeTrue)
		})
	})
}
