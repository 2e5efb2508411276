package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("viz"),
				WithRenderBuckets([]float64{0.1, 0.5, 1.0}),
				WithRecording(false),
				WithRefreshInterval(5*time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.Enabled(), ShouldBeFalse)
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "viz")
			})

			Convey("And metrics are registered on the given registry", func() {
				manager.renderPasses.WithLabelValues("trend").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestRenderMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When render passes are recorded", func() {
			before := testutil.ToFloat64(globalManager.renderPasses.WithLabelValues("ability"))
			RecordRender("ability", 0.4, 21)
			RecordRender("ability", 0.6, 21)

			Convey("Then the per-chart counter advances", func() {
				after := testutil.ToFloat64(globalManager.renderPasses.WithLabelValues("ability"))
				So(after-before, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.sceneNodes.WithLabelValues("ability")), ShouldEqual, 21)
			})
		})

		Convey("When sizes are observed", func() {
			before := testutil.ToFloat64(globalManager.sizeEmissions)
			RecordSizeObservation()
			RecordSizeEmission()
			RecordSizeFailure()

			Convey("Then the emission counter advances", func() {
				So(testutil.ToFloat64(globalManager.sizeEmissions)-before, ShouldEqual, 1)
			})
		})

		Convey("When gauges are updated", func() {
			UpdatePanels(3)
			UpdatePlayersLoaded(42)
			UpdateTableRows("rankings", 42)

			Convey("Then they hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.panels), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.playersLoaded), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.tableRows.WithLabelValues("rankings")), ShouldEqual, 42)
			})
		})

		Convey("When the mounted chart gauge is adjusted", func() {
			before := testutil.ToFloat64(globalManager.mountedCharts)
			AddMountedCharts(3)
			AddMountedCharts(-1)

			So(testutil.ToFloat64(globalManager.mountedCharts)-before, ShouldEqual, 2)
		})
	})
}

func TestMiscRecording(t *testing.T) {
	Convey("Given recording helpers", t, func() {
		So(func() {
			RecordEmptyRender("trend", "zero_size")
			RecordCommit("svg", 1.5)
			RecordCommitError("png")
			RecordTooltipEvent("record", "enter")
			RecordHTTPRequest("players", "GET", "200")
			RecordHTTPRequestDuration("players", "GET", "200", 3)
			RecordErrorByEndpoint("panels", "POST", "client_error")
			RecordErrorByType("client_error", "medium")
			RecordErrorLatency("http", "client_error", 2)
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(12)
			RecordSystemGCPauseTime(0.3)
		}, ShouldNotPanic)
		So(GetRegistry(), ShouldNotBeNil)
		So(Interval(), ShouldEqual, defaultRefreshInterval)
	})
}

func TestExportMetrics(t *testing.T) {
	Convey("Given the export metrics", t, func() {
		before := testutil.ToFloat64(globalManager.exportJobs.WithLabelValues("trend", "ok"))
		RecordExportJob("trend", "ok", 4)
		RecordExportJob("trend", "failed", 1)
		UpdateExportQueueSize(7)
		AddExportWorkers(2)
		AddExportWorkers(-2)

		So(testutil.ToFloat64(globalManager.exportJobs.WithLabelValues("trend", "ok"))-before, ShouldEqual, 1)
		So(testutil.ToFloat64(globalManager.exportQueueSize), ShouldEqual, 7)
		So(testutil.ToFloat64(globalManager.exportWorkers), ShouldEqual, 0)
	})
}
