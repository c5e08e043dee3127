// Package config handles configuration for the reconstruction tools.
package config

import "fmt"

// Config holds all pipeline settings.
type Config struct {
	Output         OutputConfig         `yaml:"output"`
	Data           DataConfig           `yaml:"data"`
	Reconstruction ReconstructionConfig `yaml:"reconstruction"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// OutputConfig holds result placement settings.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	Bundle     bool   `yaml:"bundle"`      // also write a zip archive of the results
	WriteCloud bool   `yaml:"write_cloud"` // also export the prepared cloud as PLY
}

// DataConfig holds input data locations.
type DataConfig struct {
	ShellFile  string `yaml:"shell_file"` // building shell geometry JSON
	CloudFile  string `yaml:"cloud_file"` // explicit point cloud file; overrides cloud_dir
	CloudDir   string `yaml:"cloud_dir"`  // directory of per-tile point cloud files named by sheet code
	SystemCode int    `yaml:"system_code"`
}

// ReconstructionConfig holds the texturing parameters.
type ReconstructionConfig struct {
	LOD           int     `yaml:"lod"`
	Method        string  `yaml:"method"`
	ImageSize     int     `yaml:"image_size"`
	PointLimit    int     `yaml:"point_limit"`
	Buffer        float64 `yaml:"buffer"`
	MemoryLimitMB int64   `yaml:"memory_limit_mb"` // 0 means unlimited
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:    "out",
			Bundle: false,
		},
		Data: DataConfig{
			SystemCode: 9,
		},
		Reconstruction: ReconstructionConfig{
			LOD:        2,
			Method:     "smart",
			ImageSize:  512,
			PointLimit: 500000,
			Buffer:     1.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks settings that have a closed set of legal values.
func (c *Config) Validate() error {
	switch c.Reconstruction.Method {
	case "all", "nearest", "smart":
	default:
		return fmt.Errorf("unknown mapping method %q", c.Reconstruction.Method)
	}
	if c.Reconstruction.LOD != 1 && c.Reconstruction.LOD != 2 {
		return fmt.Errorf("unsupported lod %d", c.Reconstruction.LOD)
	}
	if c.Reconstruction.ImageSize < 2 {
		return fmt.Errorf("image size %d too small", c.Reconstruction.ImageSize)
	}
	if c.Reconstruction.Buffer <= 0 {
		return fmt.Errorf("crop buffer %g must be positive", c.Reconstruction.Buffer)
	}
	if c.Data.SystemCode < 0 || c.Data.SystemCode > 19 {
		return fmt.Errorf("plane coordinate system %d out of range 1-19", c.Data.SystemCode)
	}
	return nil
}
