package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/KyleBrandon/rasp-home-server/internal/store"
)

const NOTIFICATION_SUBJECT = "Home Notification"

// InitializeMonitorContext creates the monitor and starts its routines.
func InitializeMonitorContext(publisher SettingsPublisher, writer MeasurementWriter, notifier Notifier) *MonitorContext {
	slog.Debug(">>InitializeMonitorContext")
	defer slog.Debug("<<InitializeMonitorContext")

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	mctx := MonitorContext{
		wg:                &wg,
		ctx:               ctx,
		monitorCancelFunc: cancel,
		publisher:         publisher,
		writer:            writer,
		notifier:          notifier,
		SettingsCh:        make(chan SettingsTask, EVENT_BUFFER_SIZE),
		TelemetryCh:       make(chan TelemetryTask, EVENT_BUFFER_SIZE),
		NotificationCh:    make(chan NotificationTask, EVENT_BUFFER_SIZE),
	}

	mctx.startMonitorRoutines()

	return &mctx
}

// CancelAndWait stops the monitor routines and waits for them to exit.
func (mctx *MonitorContext) CancelAndWait() {
	mctx.monitorCancelFunc()

	mctx.wg.Wait()
}

func (mctx *MonitorContext) startMonitorRoutines() {
	mctx.wg.Add(1)
	go mctx.monitorSettings()

	mctx.wg.Add(1)
	go mctx.monitorTelemetry()

	mctx.wg.Add(1)
	go mctx.monitorNotifications()
}

// SettingsChanged queues a saved settings row. It never blocks the caller; when
// the queue is full the task is dropped.
func (mctx *MonitorContext) SettingsChanged(previous, current database.StateAndSetting) {
	select {
	case mctx.SettingsCh <- SettingsTask{Previous: previous, Current: current}:
	default:
		slog.Warn("settings queue is full, dropping update")
	}
}

// TelemetryRecorded queues a stored telemetry post without blocking. The
// settings snapshot goes through the settings queue so every publish happens
// on one routine in the order it was queued.
func (mctx *MonitorContext) TelemetryRecorded(result store.TelemetryResult) {
	select {
	case mctx.SettingsCh <- SettingsTask{Previous: result.Settings, Current: result.Settings}:
	default:
		slog.Warn("settings queue is full, dropping update")
	}

	select {
	case mctx.TelemetryCh <- TelemetryTask{Result: result}:
	default:
		slog.Warn("telemetry queue is full, dropping update")
	}
}

func (mctx *MonitorContext) monitorSettings() {
	slog.Debug(">>monitorSettings")
	defer slog.Debug("<<monitorSettings")

	defer mctx.wg.Done()

	var lastPublished time.Time

	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorSettings: context done")
			return

		case task, ok := <-mctx.SettingsCh:
			if !ok {
				slog.Error("The settings channel was closed")
				return
			}

			// retained topics keep whatever came last, never go back in time
			if task.Current.LastUpdate.Before(lastPublished) {
				slog.Debug("skipping stale settings snapshot", "last_update", task.Current.LastUpdate)
			} else {
				mctx.publishSettings(task.Current)
				lastPublished = task.Current.LastUpdate
			}

			if task.Previous.AlarmEnabled != task.Current.AlarmEnabled {
				mctx.notify(alarmMessage(task.Current.AlarmEnabled))
			}

			if task.Previous.HeatingEnabled != task.Current.HeatingEnabled {
				mctx.notify(heatingMessage(task.Current.HeatingEnabled))
			}
		}
	}
}

func (mctx *MonitorContext) monitorTelemetry() {
	slog.Debug(">>monitorTelemetry")
	defer slog.Debug("<<monitorTelemetry")

	defer mctx.wg.Done()

	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorTelemetry: context done")
			return

		case task, ok := <-mctx.TelemetryCh:
			if !ok {
				slog.Error("The telemetry channel was closed")
				return
			}

			if mctx.writer != nil {
				err := mctx.writer.WriteMeasurements(mctx.ctx, task.Result.Measurements)
				if err != nil {
					slog.Error("failed to mirror measurements", "error", err)
				}
			}
		}
	}
}

func (mctx *MonitorContext) monitorNotifications() {
	slog.Debug(">>monitorNotifications")
	defer slog.Debug("<<monitorNotifications")

	defer mctx.wg.Done()

	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorNotifications: context done")
			return

		case task, ok := <-mctx.NotificationCh:
			if !ok {
				slog.Error("The notification channel was closed")
				return
			}

			// Send the SMS
			if mctx.notifier != nil {
				err := mctx.notifier.Send(mctx.ctx, NOTIFICATION_SUBJECT, task.Message)
				if err != nil {
					slog.Error("failed to send message", "error", err, "message", task.Message)
				}
			} else {
				slog.Debug("Notifier is not registered for notifications", "message", task.Message)
			}
		}
	}
}

func (mctx *MonitorContext) publishSettings(settings database.StateAndSetting) {
	if mctx.publisher == nil {
		return
	}

	if err := mctx.publisher.PublishSettings(mctx.ctx, settings); err != nil {
		slog.Error("failed to publish settings", "error", err)
	}
}

func (mctx *MonitorContext) notify(message string) {
	select {
	case mctx.NotificationCh <- NotificationTask{Message: message}:
	default:
		slog.Warn("notification queue is full, dropping message", "message", message)
	}
}

func alarmMessage(enabled bool) string {
	return fmt.Sprintf("Alarm %s", enabledWord(enabled))
}

func heatingMessage(enabled bool) string {
	return fmt.Sprintf("Heating %s", enabledWord(enabled))
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}

	return "disabled"
}
