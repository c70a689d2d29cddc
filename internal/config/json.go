package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONConfig mirrors [Config] with JSON-friendly field types. Durations are
// decoded from strings like "30s" via the [Duration] wrapper and mapped back
// to time.Duration when the file is merged.
type JSONConfig struct {
	Cache struct {
		TTL           Duration `json:"ttl"`
		MaxEntries    int      `json:"max_entries"`
		SweepInterval Duration `json:"sweep_interval"`
	} `json:"cache,omitempty"`

	Request struct {
		DedupWindow     Duration `json:"dedup_window"`
		BatchWindow     Duration `json:"batch_window"`
		MaxBatchSize    int      `json:"max_batch_size"`
		MaxQueueLength  int      `json:"max_queue_length"`
		CleanupInterval Duration `json:"cleanup_interval"`
	} `json:"request,omitempty"`

	Sync struct {
		AutoDrainInterval Duration `json:"auto_drain_interval"`
		RetryAttempts     int      `json:"retry_attempts"`
		RetryBackoff      Duration `json:"retry_backoff"`
		SyncedRetention   Duration `json:"synced_retention"`
	} `json:"sync,omitempty"`

	Prefetch struct {
		IdleDelay      Duration            `json:"idle_delay"`
		IdleTimeout    Duration            `json:"idle_timeout"`
		HoverDebounce  Duration            `json:"hover_debounce"`
		ViewportMargin int                 `json:"viewport_margin"`
		Routes         map[string][]string `json:"routes"`
	} `json:"prefetch,omitempty"`

	Remote struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		HashKey        string   `json:"hash_key"`
		AuthToken      string   `json:"auth_token"`
	} `json:"remote,omitempty"`

	Local struct {
		Backend string `json:"backend"`
		DSN     string `json:"dsn"`
	} `json:"local,omitempty"`

	Netmon struct {
		ProbeInterval Duration `json:"probe_interval"`
		FailThreshold int      `json:"fail_threshold"`
		StartOffline  bool     `json:"start_offline"`
		Manual        bool     `json:"manual"`
	} `json:"netmon,omitempty"`

	Metrics struct {
		Enabled bool `json:"enabled"`
	} `json:"metrics,omitempty"`
}

func parseJSON(jsonFilePath string) (*Config, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg JSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &Config{
		Cache: Cache{
			TTL:           time.Duration(jsonCfg.Cache.TTL),
			MaxEntries:    jsonCfg.Cache.MaxEntries,
			SweepInterval: time.Duration(jsonCfg.Cache.SweepInterval),
		},
		Request: Request{
			DedupWindow:     time.Duration(jsonCfg.Request.DedupWindow),
			BatchWindow:     time.Duration(jsonCfg.Request.BatchWindow),
			MaxBatchSize:    jsonCfg.Request.MaxBatchSize,
			MaxQueueLength:  jsonCfg.Request.MaxQueueLength,
			CleanupInterval: time.Duration(jsonCfg.Request.CleanupInterval),
		},
		Sync: Sync{
			AutoDrainInterval: time.Duration(jsonCfg.Sync.AutoDrainInterval),
			RetryAttempts:     jsonCfg.Sync.RetryAttempts,
			RetryBackoff:      time.Duration(jsonCfg.Sync.RetryBackoff),
			SyncedRetention:   time.Duration(jsonCfg.Sync.SyncedRetention),
		},
		Prefetch: Prefetch{
			IdleDelay:      time.Duration(jsonCfg.Prefetch.IdleDelay),
			IdleTimeout:    time.Duration(jsonCfg.Prefetch.IdleTimeout),
			HoverDebounce:  time.Duration(jsonCfg.Prefetch.HoverDebounce),
			ViewportMargin: jsonCfg.Prefetch.ViewportMargin,
			Routes:         jsonCfg.Prefetch.Routes,
		},
		Remote: Remote{
			HTTPAddress:    jsonCfg.Remote.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
			HashKey:        jsonCfg.Remote.HashKey,
			AuthToken:      jsonCfg.Remote.AuthToken,
		},
		Local: Local{
			Backend: jsonCfg.Local.Backend,
			DSN:     jsonCfg.Local.DSN,
		},
		Netmon: Netmon{
			ProbeInterval: time.Duration(jsonCfg.Netmon.ProbeInterval),
			FailThreshold: jsonCfg.Netmon.FailThreshold,
			StartOffline:  jsonCfg.Netmon.StartOffline,
			Manual:        jsonCfg.Netmon.Manual,
		},
		Metrics: Metrics{
			Enabled: jsonCfg.Metrics.Enabled,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
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
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
