package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the policy tables and tunables for a report run.
type Config struct {
	Address AddressConfig `toml:"address"`
	Device  DeviceConfig  `toml:"device"`
	Mapping MappingConfig `toml:"mapping"`
	Report  ReportConfig  `toml:"report"`
}

// AddressRewrite replaces any address containing Match with Replacement.
type AddressRewrite struct {
	Match       string `toml:"match"`
	Replacement string `toml:"replacement"`
}

type AddressConfig struct {
	// Parenthetical notes mentioning this token are kept.
	CityToken string            `toml:"city_token"`
	Postcodes map[string]string `toml:"postcodes"`
	Rewrites  []AddressRewrite  `toml:"rewrites"`
}

type DeviceConfig struct {
	AppPackage  string   `toml:"app_package"`
	StartWait   Duration `toml:"start_wait"`
	TabLabel    string   `toml:"tab_label"`
	AcceptLabel string   `toml:"accept_label"`
	TimeID      string   `toml:"time_id"`
	LocationID  string   `toml:"location_id"`
	UserID      string   `toml:"user_id"`
	PrevMonthID string   `toml:"prev_month_id"`
	SettleDelay Duration `toml:"settle_delay"`
	PickerDelay Duration `toml:"picker_delay"`
	AcceptDelay Duration `toml:"accept_delay"`
}

type MappingConfig struct {
	BaseURL           string   `toml:"base_url"`
	Headless          bool     `toml:"headless"`
	UserAgent         string   `toml:"user_agent"`
	ResultsTimeout    Duration `toml:"results_timeout"`
	ConsentTimeout    Duration `toml:"consent_timeout"`
	ExtraWait         Duration `toml:"extra_wait"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
}

type ReportConfig struct {
	TemplatePath string  `toml:"template_path"`
	OutputDir    string  `toml:"output_dir"`
	PageHeight   float64 `toml:"page_height"`
	Obra         string  `toml:"obra"`
	Vehicle      string  `toml:"vehicle"`
	Plate        string  `toml:"plate"`
	Owner        string  `toml:"owner"`
}

// Duration decodes TOML strings such as "12s" into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// Defaults returns a Config populated with built-in values.
func Defaults() *Config {
	return &Config{
		Address: AddressConfig{
			CityToken: "málaga",
			Postcodes: map[string]string{
				"29730": "Rincón",
				"29738": "Benagalbón",
				"29720": "La Cala",
			},
			Rewrites: []AddressRewrite{
				{
					Match:       "Carretera Cortijo El Acebuchal",
					Replacement: "Carretera Cortijo El Acebuchal, Rincón, 29730",
				},
				{
					Match:       "Calle Cortijo Los Morenos Altos",
					Replacement: "Cortijo los Morenos Altos, 12, Rincón, 29738",
				},
			},
		},
		Device: DeviceConfig{
			AppPackage:  "com.asisto.tcomparto",
			StartWait:   Duration{10 * time.Second},
			TabLabel:    "Planilla",
			AcceptLabel: "ACEPTAR",
			TimeID:      "com.asisto.tcomparto:id/tv_event_time",
			LocationID:  "com.asisto.tcomparto:id/tv_event_location",
			UserID:      "com.asisto.tcomparto:id/tv_event_user",
			PrevMonthID: "android:id/prev",
			SettleDelay: Duration{1 * time.Second},
			PickerDelay: Duration{500 * time.Millisecond},
			AcceptDelay: Duration{2 * time.Second},
		},
		Mapping: MappingConfig{
			BaseURL:           "https://www.google.com/maps/dir/",
			Headless:          true,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			ResultsTimeout:    Duration{25 * time.Second},
			ConsentTimeout:    Duration{12 * time.Second},
			ExtraWait:         Duration{5 * time.Second},
			RequestsPerSecond: 0.5,
		},
		Report: ReportConfig{
			TemplatePath: "files/input/km_document_model.pdf",
			OutputDir:    "files/output",
			PageHeight:   842,
		},
	}
}

// Load reads a TOML config file over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}

	return cfg, nil
}
