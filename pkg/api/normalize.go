package api

import "encoding/json"

// Metrics responses differ across control-plane versions: older node daemons
// report cpuPercent/memUsedBytes, newer ones cpuUsagePercent/memoryUsedBytes.
// All variants are mapped into the canonical VMMetrics here, once, so read
// sites never probe shapes themselves.

// normalizeMetrics maps a raw metrics document into VMMetrics.
func normalizeMetrics(raw map[string]json.RawMessage) VMMetrics {
	return VMMetrics{
		CPUPercent:       pickFloat(raw, "cpuUsagePercent", "cpuPercent", "cpu_usage_percent"),
		MemoryUsedBytes:  pickInt(raw, "memoryUsedBytes", "memUsedBytes", "memory_used_bytes"),
		MemoryTotalBytes: pickInt(raw, "memoryTotalBytes", "memTotalBytes", "memory_total_bytes"),
		DiskReadBps:      pickInt(raw, "diskReadBps", "diskReadBytesPerSec", "disk_read_bps"),
		DiskWriteBps:     pickInt(raw, "diskWriteBps", "diskWriteBytesPerSec", "disk_write_bps"),
	}
}

// pickFloat returns the first key that decodes as a float64.
func pickFloat(raw map[string]json.RawMessage, keys ...string) float64 {
	for _, key := range keys {
		if data, ok := raw[key]; ok {
			var v float64
			if json.Unmarshal(data, &v) == nil {
				return v
			}
		}
	}
	return 0
}

// pickInt returns the first key that decodes as an int64.
func pickInt(raw map[string]json.RawMessage, keys ...string) int64 {
	for _, key := range keys {
		if data, ok := raw[key]; ok {
			var v int64
			if json.Unmarshal(data, &v) == nil {
				return v
			}
		}
	}
	return 0
}
