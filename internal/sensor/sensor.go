package sensor

import (
	"log/slog"
	"time"

	"github.com/yryz/ds18b20"
)

const DEFAULT_SENSOR_TIMEOUT = 10 * time.Second

func NewSensorConfig(sensorTimeout int, devices []DeviceConfig, useMock bool) Sensors {
	slog.Debug(">>NewSensorConfig")
	defer slog.Debug("<<NewSensorConfig")

	sc := SensorConfig{
		SensorTimeout: time.Duration(sensorTimeout) * time.Second,
		Devices:       devices,
	}

	if sc.SensorTimeout <= 0 {
		sc.SensorTimeout = DEFAULT_SENSOR_TIMEOUT
	}

	sc.TemperatureSensors = make(map[string]DeviceConfig)
	for _, d := range sc.Devices {
		if d.SensorType == SENSOR_TEMPERATURE && d.DriverType == DRIVERTYPE_DS18B20 {
			sc.TemperatureSensors[d.Address] = d
		}
	}

	if useMock {
		return &MockSensors{
			config:       sc,
			RoomTempC:    21.5,
			HeatingTempC: 35.0,
		}
	}

	return &HardwareSensors{
		config:          sc,
		readTemperature: ds18b20.Temperature,
	}
}

func newTemperatureReading(device *DeviceConfig, t float64, err error) TemperatureReading {
	tr := TemperatureReading{
		Name:        device.Name,
		Description: device.Description,
		Address:     device.Address,
		Err:         err,
	}

	if err == nil {
		t += device.CalibrationOffsetCelsius
		tr.TemperatureC = t
		tr.TemperatureF = (t * 9 / 5) + 32
	}

	return tr
}

// selectRoomAndHeating picks the two named readings out of the sensor list.
func selectRoomAndHeating(temperatures []TemperatureReading) (TemperatureReading, TemperatureReading) {
	var roomTemp TemperatureReading
	var heatingTemp TemperatureReading

	for _, temp := range temperatures {
		switch temp.Name {
		case NAME_ROOM:
			roomTemp = temp
		case NAME_HEATING:
			heatingTemp = temp
		}
	}

	return roomTemp, heatingTemp
}
