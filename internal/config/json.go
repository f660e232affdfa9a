package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Storage struct {
		DBPath string `json:"db_path"`
	} `json:"storage,omitempty"`

	Adapter struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
		AuthToken      string   `json:"auth_token"`
	} `json:"adapter,omitempty"`

	Sync struct {
		Interval         Duration `json:"interval"`
		BatchSize        int      `json:"batch_size"`
		BatchConcurrency int      `json:"batch_concurrency"`
		BackoffFloor     Duration `json:"backoff_floor"`
		BackoffCeiling   Duration `json:"backoff_ceiling"`
	} `json:"sync,omitempty"`

	Netmon struct {
		ProbeInterval Duration `json:"probe_interval"`
		Debounce      Duration `json:"debounce"`
	} `json:"netmon,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Storage: Storage{
			DBPath: jsonCfg.Storage.DBPath,
		},
		Adapter: Adapter{
			BaseURL:        jsonCfg.Adapter.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			AuthToken:      jsonCfg.Adapter.AuthToken,
		},
		Sync: Sync{
			Interval:         time.Duration(jsonCfg.Sync.Interval),
			BatchSize:        jsonCfg.Sync.BatchSize,
			BatchConcurrency: jsonCfg.Sync.BatchConcurrency,
			BackoffFloor:     time.Duration(jsonCfg.Sync.BackoffFloor),
			BackoffCeiling:   time.Duration(jsonCfg.Sync.BackoffCeiling),
		},
		Netmon: Netmon{
			ProbeInterval: time.Duration(jsonCfg.Netmon.ProbeInterval),
			Debounce:      time.Duration(jsonCfg.Netmon.Debounce),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as plain nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration value: %v", v)
	}
}
