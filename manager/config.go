package manager

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig is the TOML form of ManagerConfig.
type fileConfig struct {
	PathToStorage     string `toml:"storage"`
	CacheMaxPacks     int    `toml:"cache_max_packs"`
	DecodeBuffers     int    `toml:"decode_buffers"`
	DecodeBufferBytes int    `toml:"decode_buffer_bytes"`
	Workers           int    `toml:"workers"`
	SlowPackThreshold string `toml:"slow_pack_threshold"`
	UseMmap           bool   `toml:"mmap"`
}

// LoadConfig reads a ManagerConfig from a TOML file. Unknown keys are rejected,
// missing ones keep their defaults.
func LoadConfig(path string) (ManagerConfig, error) {

	var raw fileConfig

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ManagerConfig{}, fmt.Errorf("unable to read config %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, it := range undecoded {
			keys[i] = it.String()
		}
		return ManagerConfig{}, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}

	result := ManagerConfig{
		PathToStorage:     raw.PathToStorage,
		CacheMaxPacks:     raw.CacheMaxPacks,
		DecodeBuffers:     raw.DecodeBuffers,
		DecodeBufferBytes: raw.DecodeBufferBytes,
		Workers:           raw.Workers,
		UseMmap:           raw.UseMmap,
	}

	if raw.SlowPackThreshold != "" {
		result.SlowPackThreshold, err = time.ParseDuration(raw.SlowPackThreshold)
		if err != nil {
			return ManagerConfig{}, fmt.Errorf("slow_pack_threshold in %s: %w", path, err)
		}
	}

	return result, nil
}
