package sensor

import "time"

const (
	DRIVERTYPE_DS18B20 string = "DS18B20"
	SENSOR_TEMPERATURE string = "temperature"

	NAME_ROOM    string = "Room"
	NAME_HEATING string = "Heating"
)

type (
	SensorConfig struct {
		SensorTimeout time.Duration
		Devices       []DeviceConfig

		TemperatureSensors map[string]DeviceConfig
	}

	DeviceConfig struct {
		DriverType               string  `json:"driver_type"`
		SensorType               string  `json:"sensor_type"`
		Address                  string  `json:"address"`
		Name                     string  `json:"name"`
		Description              string  `json:"description"`
		CalibrationOffsetCelsius float64 `json:"calibration_offset_celsius"`
	}

	TemperatureReading struct {
		Name         string  `json:"name,omitempty"`
		Description  string  `json:"description,omitempty"`
		Address      string  `json:"address,omitempty"`
		TemperatureC float64 `json:"temperature_c,omitempty"`
		TemperatureF float64 `json:"temperature_f,omitempty"`
		Err          error   `json:"err,omitempty"`
	}

	// SystemStats is the host health the agent reports with every post.
	SystemStats struct {
		CpuTemp     float64
		RamPerc     float64
		FreeStorage float64
	}

	SystemPaths struct {
		ThermalZone string
		MemInfo     string
		StorageRoot string
	}

	Sensors interface {
		ReadRoomAndHeatingTemperature() (TemperatureReading, TemperatureReading)
		ReadTemperatures() []TemperatureReading
	}

	HardwareSensors struct {
		config          SensorConfig
		readTemperature func(address string) (float64, error)
	}

	MockSensors struct {
		config       SensorConfig
		RoomTempC    float64
		HeatingTempC float64
	}
)
