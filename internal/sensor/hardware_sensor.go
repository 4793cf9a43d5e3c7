package sensor

import (
	"errors"
	"log/slog"
	"time"
)

var ErrSensorTimeout = errors.New("timed out reading sensor")

func (s *HardwareSensors) readTemperatureSensor(device *DeviceConfig) TemperatureReading {
	type result struct {
		t   float64
		err error
	}

	// the 1-wire read can hang on a bad bus, so bound it by the sensor timeout
	ch := make(chan result, 1)
	go func() {
		t, err := s.readTemperature(device.Address)
		ch <- result{t, err}
	}()

	var tr TemperatureReading
	select {
	case r := <-ch:
		tr = newTemperatureReading(device, r.t, r.err)
	case <-time.After(s.config.SensorTimeout):
		tr = newTemperatureReading(device, 0, ErrSensorTimeout)
	}

	if tr.Err != nil {
		slog.Error("failed to read sensor", "name", device.Name, "address", device.Address, "error", tr.Err)
	}

	return tr
}

func (s *HardwareSensors) ReadTemperatures() []TemperatureReading {
	slog.Debug(">>ReadTemperatures")
	defer slog.Debug("<<ReadTemperatures")

	readings := make([]TemperatureReading, 0, len(s.config.TemperatureSensors))

	for _, device := range s.config.TemperatureSensors {
		tr := s.readTemperatureSensor(&device)
		readings = append(readings, tr)
	}

	return readings
}

func (s *HardwareSensors) ReadRoomAndHeatingTemperature() (TemperatureReading, TemperatureReading) {
	return selectRoomAndHeating(s.ReadTemperatures())
}
