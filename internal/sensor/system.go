package sensor

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

const BYTES_PER_GB = 1024 * 1024 * 1024

var DefaultSystemPaths = SystemPaths{
	ThermalZone: "/sys/class/thermal/thermal_zone0/temp",
	MemInfo:     "/proc/meminfo",
	StorageRoot: "/",
}

// ReadSystemStats reads the CPU temperature, the share of RAM in use and the
// free storage in GB.
func ReadSystemStats(paths SystemPaths) (SystemStats, error) {
	var stats SystemStats

	cpuTemp, err := readCpuTemp(paths.ThermalZone)
	if err != nil {
		return stats, err
	}

	ramPerc, err := readRamPercent(paths.MemInfo)
	if err != nil {
		return stats, err
	}

	freeStorage, err := readFreeStorage(paths.StorageRoot)
	if err != nil {
		return stats, err
	}

	stats.CpuTemp = cpuTemp
	stats.RamPerc = ramPerc
	stats.FreeStorage = freeStorage

	return stats, nil
}

// readCpuTemp converts the millidegree value the kernel reports.
func readCpuTemp(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read cpu temperature: %w", err)
	}

	milli, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse cpu temperature: %w", err)
	}

	return milli / 1000, nil
}

func readRamPercent(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("read meminfo: %w", err)
	}
	defer file.Close()

	var total, available float64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "MemTotal:":
			total, err = strconv.ParseFloat(fields[1], 64)
		case "MemAvailable:":
			available, err = strconv.ParseFloat(fields[1], 64)
		}
		if err != nil {
			return 0, fmt.Errorf("parse meminfo: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read meminfo: %w", err)
	}

	if total == 0 {
		return 0, fmt.Errorf("meminfo has no MemTotal")
	}

	return (total - available) * 100 / total, nil
}

func readFreeStorage(root string) (float64, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(root, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", root, err)
	}

	return float64(st.Bavail) * float64(st.Bsize) / BYTES_PER_GB, nil
}
