// Package conf loads and validates the settings that drive a relocation run.
//
// It follows the loader style used throughout this repository: a single
// Settings struct populated from defaults, an optional YAML file, and
// environment variable overrides via spf13/viper, then validated once.
package conf

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LogRotation names the rotation policy for per-run log files.
type LogRotation string

const (
	RotationDaily  LogRotation = "daily"
	RotationWeekly LogRotation = "weekly"
	RotationSize   LogRotation = "size"
)

// LogSettings configures the lumberjack-backed file logger (internal/logging).
type LogSettings struct {
	MaxSize  int64       `yaml:"maxsize"` // bytes; converted to MB for lumberjack
	Rotation LogRotation `yaml:"rotation"`
}

// PhaseXCorrConfig holds the asymmetric cross-correlation window policy for
// one phase type.
type PhaseXCorrConfig struct {
	StartOffset float64 `yaml:"start_offset"` // seconds relative to the pick, short-window start
	EndOffset   float64 `yaml:"end_offset"`   // seconds relative to the pick, short-window end
	MaxDelay    float64 `yaml:"max_delay"`    // seconds, long-window half-extension and lag search radius
	MinCoef     float64 `yaml:"min_coef"`     // minimum coefficient to accept a measurement
}

// SNRSettings configures the signal-to-noise gate applied in the waveform
// loader.
type SNRSettings struct {
	Enabled      bool    `yaml:"enabled"`
	MinSNR       float64 `yaml:"min_snr"`
	NoiseStart   float64 `yaml:"noise_start"`  // seconds relative to pick
	NoiseEnd     float64 `yaml:"noise_end"`     // seconds relative to pick
	SignalStart  float64 `yaml:"signal_start"`  // seconds relative to pick
	SignalEnd    float64 `yaml:"signal_end"`    // seconds relative to pick
}

// WaveformSettings configures fetch/filter/resample/cache behavior.
type WaveformSettings struct {
	TargetFrequency float64     `yaml:"target_frequency"` // Hz; 0 disables resampling
	FilterFreqMin   float64     `yaml:"filter_freq_min"`  // band-pass low corner, Hz
	FilterFreqMax   float64     `yaml:"filter_freq_max"`  // band-pass high corner, Hz
	FilterPasses    int         `yaml:"filter_passes"`
	UseDiskCache    bool        `yaml:"use_disk_cache"`
	DiskCacheDir    string      `yaml:"disk_cache_dir"` // relative to the run's working directory
	SNR             SNRSettings `yaml:"snr"`
}

// NeighborSettings configures spatial neighbor selection.
type NeighborSettings struct {
	NumEllipsoids    int     `yaml:"num_ellipsoids"`
	MaxEllipsoidSize float64 `yaml:"max_ellipsoid_size"` // km, outermost ellipsoid "a" axis
	MinNumNeigh      int     `yaml:"min_num_neigh"`
	MaxNumNeigh      int     `yaml:"max_num_neigh"`
	MinDTperEvt      int     `yaml:"min_dt_per_evt"`
	MaxDTperEvt      int     `yaml:"max_dt_per_evt"`
	MaxIEdist        float64 `yaml:"max_ie_dist"`   // km
	MinPhaseWeight   float64 `yaml:"min_phase_weight"`
	MinESdist        float64 `yaml:"min_es_dist"` // km
	MaxESdist        float64 `yaml:"max_es_dist"` // km
	MinEStoIEratio   float64 `yaml:"min_es_to_ie_ratio"`
}

// SynthSettings configures artificial-phase synthesis.
type SynthSettings struct {
	Enabled         bool    `yaml:"enabled"`
	NumCC           int     `yaml:"num_cc"`            // number of bracketing peers to keep
	MinCoef         float64 `yaml:"min_coef"`          // minimum average coefficient to accept
	MaxHalfWidth    float64 `yaml:"max_half_width"`    // seconds, clamp on window half-width around origin time
	MaxAcceptableMAD float64 `yaml:"max_acceptable_mad"` // seconds, weight-mapping curve parameter
}

// ToolSettings points at the external ph2dt/hypoDD binaries and their templates
//.
type ToolSettings struct {
	Ph2dtBinary    string `yaml:"ph2dt_binary"`
	Ph2dtTemplate  string `yaml:"ph2dt_template"`
	HypoDDBinary   string `yaml:"hypodd_binary"`
	HypoDDTemplate string `yaml:"hypodd_template"`
}

// Settings is the complete configuration for one relocation engine instance.
type Settings struct {
	Debug   bool   `yaml:"debug"`
	WorkDir string `yaml:"workdir"`
	Retain  bool   `yaml:"retain"` // keep the working directory after the run

	Log       LogSettings                 `yaml:"log"`
	Tools     ToolSettings                `yaml:"tools"`
	Waveform  WaveformSettings            `yaml:"waveform"`
	Neighbor  NeighborSettings            `yaml:"neighbor"`
	Synth     SynthSettings               `yaml:"synth"`
	XCorr     map[string]PhaseXCorrConfig `yaml:"xcorr"` // keyed by "P"/"S"

	StorePath string `yaml:"store_path"` // sqlite file for internal/store.RunRecord
}

var (
	current   *Settings
	currentMu sync.RWMutex
)

// Setting returns the process-wide settings, loading defaults if Load has
// not been called yet.
func Setting() *Settings {
	currentMu.RLock()
	if current != nil {
		defer currentMu.RUnlock()
		return current
	}
	currentMu.RUnlock()

	currentMu.Lock()
	defer currentMu.Unlock()
	if current == nil {
		current = Defaults()
	}
	return current
}

// SetSetting installs s as the process-wide settings (used by tests and by
// the CLI after loading).
func SetSetting(s *Settings) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = s
}

// Load reads defaults, then overlays an optional YAML file at path, then
// environment variables prefixed HDD_ (via viper), then validates the
// result. An empty path skips the file overlay.
func Load(path string) (*Settings, error) {
	s := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("HDD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvOverrides(v, s)

	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// bindEnvOverrides applies HDD_*-prefixed environment variables on top of
// the file-or-default settings.
func bindEnvOverrides(v *viper.Viper, s *Settings) {
	if val := v.GetString("WORKDIR"); val != "" {
		s.WorkDir = val
	}
	if v.IsSet("DEBUG") {
		s.Debug = v.GetBool("DEBUG")
	}
	if val := v.GetString("TOOLS_PH2DT_BINARY"); val != "" {
		s.Tools.Ph2dtBinary = val
	}
	if val := v.GetString("TOOLS_HYPODD_BINARY"); val != "" {
		s.Tools.HypoDDBinary = val
	}
	if val := v.GetString("STORE_PATH"); val != "" {
		s.StorePath = val
	}
}

// Validate checks that the settings are internally consistent and fatal
// configuration problems are caught before a run starts.
func Validate(s *Settings) error {
	if s.WorkDir == "" {
		return fmt.Errorf("conf: workdir must not be empty")
	}
	if s.Neighbor.MaxNumNeigh <= 0 {
		return fmt.Errorf("conf: neighbor.max_num_neigh must be positive")
	}
	if s.Neighbor.MinNumNeigh > s.Neighbor.MaxNumNeigh {
		return fmt.Errorf("conf: neighbor.min_num_neigh (%d) exceeds max_num_neigh (%d)", s.Neighbor.MinNumNeigh, s.Neighbor.MaxNumNeigh)
	}
	if s.Neighbor.NumEllipsoids <= 0 {
		return fmt.Errorf("conf: neighbor.num_ellipsoids must be positive")
	}
	for phase, cfg := range s.XCorr {
		if cfg.EndOffset <= cfg.StartOffset {
			return fmt.Errorf("conf: xcorr[%s].end_offset must exceed start_offset", phase)
		}
		if cfg.MaxDelay <= 0 {
			return fmt.Errorf("conf: xcorr[%s].max_delay must be positive", phase)
		}
	}
	if s.Tools.Ph2dtBinary == "" || s.Tools.HypoDDBinary == "" {
		return fmt.Errorf("conf: tools.ph2dt_binary and tools.hypodd_binary must be set")
	}
	return nil
}
