package sensor

import (
	"log/slog"
)

func (m *MockSensors) readTemperatureSensor(device *DeviceConfig) TemperatureReading {
	t := m.RoomTempC
	if device.Name == NAME_HEATING {
		t = m.HeatingTempC
	}

	return newTemperatureReading(device, t, nil)
}

func (m *MockSensors) ReadTemperatures() []TemperatureReading {
	slog.Debug(">>ReadTemperatures")
	defer slog.Debug("<<ReadTemperatures")

	readings := make([]TemperatureReading, 0, len(m.config.TemperatureSensors))

	for _, device := range m.config.TemperatureSensors {
		tr := m.readTemperatureSensor(&device)
		readings = append(readings, tr)
	}

	return readings
}

func (m *MockSensors) ReadRoomAndHeatingTemperature() (TemperatureReading, TemperatureReading) {
	room, heating := selectRoomAndHeating(m.ReadTemperatures())

	// without configured devices the mock still reports something useful
	if room.Name == "" {
		room = newTemperatureReading(&DeviceConfig{Name: NAME_ROOM}, m.RoomTempC, nil)
	}
	if heating.Name == "" {
		heating = newTemperatureReading(&DeviceConfig{Name: NAME_HEATING}, m.HeatingTempC, nil)
	}

	return room, heating
}
