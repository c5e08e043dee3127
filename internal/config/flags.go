package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagOut      = flag.String("out", "", "Output directory")
	flagBundle   = flag.Bool("bundle", false, "Also write a zip archive of the results")
	flagLOD      = flag.Int("lod", 0, "Level of detail (1 or 2)")
	flagMethod   = flag.String("method", "", "Point mapping method: all, nearest or smart")
	flagSize     = flag.Int("size", 0, "Texture image long side in pixels")
	flagLimit    = flag.Int("limit", 0, "Point count ceiling after downsampling, negative for no limit")
	flagBuffer   = flag.Float64("buffer", 0, "Horizontal crop buffer in meters")
	flagShell    = flag.String("shell", "", "Building shell geometry JSON file")
	flagCloud    = flag.String("cloud", "", "Point cloud file (overrides -clouddir)")
	flagCloudDir = flag.String("clouddir", "", "Directory of per-tile point cloud files")
	flagSystem   = flag.Int("system", 0, "Plane rectangular coordinate system number (1-19)")
	flagMemLimit = flag.Int64("memlimit", 0, "Memory budget in MB for matrix and texture buffers")
	flagPLY      = flag.Bool("writecloud", false, "Also export the prepared point cloud as PLY")
	flagDump     = flag.Bool("dumpconfig", false, "Write the effective configuration to the config path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config flag.
func ConfigPath() string {
	return *flagConfig
}

// DumpRequested reports whether -dumpconfig was given.
func DumpRequested() bool {
	return *flagDump
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagBundle {
		cfg.Output.Bundle = true
	}
	if *flagLOD > 0 {
		cfg.Reconstruction.LOD = *flagLOD
	}
	if *flagMethod != "" {
		cfg.Reconstruction.Method = *flagMethod
	}
	if *flagSize > 0 {
		cfg.Reconstruction.ImageSize = *flagSize
	}
	if *flagLimit != 0 {
		cfg.Reconstruction.PointLimit = *flagLimit
	}
	if *flagBuffer > 0 {
		cfg.Reconstruction.Buffer = *flagBuffer
	}
	if *flagShell != "" {
		cfg.Data.ShellFile = *flagShell
	}
	if *flagCloud != "" {
		cfg.Data.CloudFile = *flagCloud
	}
	if *flagCloudDir != "" {
		cfg.Data.CloudDir = *flagCloudDir
	}
	if *flagSystem > 0 {
		cfg.Data.SystemCode = *flagSystem
	}
	if *flagMemLimit > 0 {
		cfg.Reconstruction.MemoryLimitMB = *flagMemLimit
	}
	if *flagPLY {
		cfg.Output.WriteCloud = true
	}
}
