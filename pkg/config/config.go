// Package config provides configuration loading and management for shampoo.
// It handles loading scattering scenarios from YAML files and provides
// default values.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/wrekr/shampoo/pkg/hologram"
)

// Config represents a complete synthesis scenario loaded from YAML
type Config struct {
	// Sphere parameters
	Sphere struct {
		// X is the sphere center's in-plane x position in pixels
		X float64 `yaml:"x"`

		// Y is the sphere center's in-plane y position in pixels
		Y float64 `yaml:"y"`

		// Z is the sphere center's height above the imaging plane in pixels
		Z float64 `yaml:"z"`

		// Radius is the sphere radius in micrometers
		Radius float64 `yaml:"radius"`

		// RefractiveIndex is the real part of the sphere's refractive index
		RefractiveIndex float64 `yaml:"refractiveIndex"`

		// AbsorptionIndex is the imaginary part of the sphere's refractive index
		AbsorptionIndex float64 `yaml:"absorptionIndex"`
	} `yaml:"sphere"`

	// Medium and recording optics parameters
	Medium struct {
		// RefractiveIndex is the real part of the medium's refractive index
		RefractiveIndex float64 `yaml:"refractiveIndex"`

		// AbsorptionIndex is the imaginary part of the medium's refractive index
		AbsorptionIndex float64 `yaml:"absorptionIndex"`

		// Wavelength is the vacuum wavelength of the illumination in micrometers
		Wavelength float64 `yaml:"wavelength"`

		// PixelPitch is the physical size of a pixel in micrometers
		PixelPitch float64 `yaml:"pixelPitch"`
	} `yaml:"medium"`

	// Image parameters
	Image struct {
		// Width is the hologram width in pixels
		Width int `yaml:"width"`

		// Height is the hologram height in pixels
		Height int `yaml:"height"`
	} `yaml:"image"`

	// Synthesis parameters
	Synthesis struct {
		// Alpha scales the scattered field relative to the illumination wave
		Alpha float64 `yaml:"alpha"`

		// Delta is the axial offset in pixels added to the sphere's z
		Delta float64 `yaml:"delta"`

		// Workers is the number of goroutines evaluating field points
		Workers int `yaml:"workers"`

		// Verbose controls the level of progress output
		Verbose bool `yaml:"verbose"`
	} `yaml:"synthesis"`

	// Suppression parameters
	Suppression struct {
		// Enabled determines whether the centroid suppression filter is applied
		Enabled bool `yaml:"enabled"`

		// KernelRadius is the kernel radius handed to the suppression filter
		KernelRadius float64 `yaml:"kernelRadius"`
	} `yaml:"suppression"`
}

// DefaultConfig returns a configuration with default values: a 0.75 um
// polystyrene sphere in water, centered 100 pixels above a 201x201
// image recorded at 447 nm
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default sphere parameters
	cfg.Sphere.X = 100
	cfg.Sphere.Y = 100
	cfg.Sphere.Z = 100
	cfg.Sphere.Radius = 0.75
	cfg.Sphere.RefractiveIndex = 1.58
	cfg.Sphere.AbsorptionIndex = 0.0001

	// Set default medium parameters
	cfg.Medium.RefractiveIndex = 1.339
	cfg.Medium.AbsorptionIndex = 0.0
	cfg.Medium.Wavelength = 0.447
	cfg.Medium.PixelPitch = 0.135

	// Set default image parameters
	cfg.Image.Width = 201
	cfg.Image.Height = 201

	// Set default synthesis parameters
	cfg.Synthesis.Alpha = 1.0
	cfg.Synthesis.Delta = 0.0
	cfg.Synthesis.Workers = runtime.NumCPU() // Use all available cores by default
	cfg.Synthesis.Verbose = true

	// Set default suppression parameters
	cfg.Suppression.Enabled = false
	cfg.Suppression.KernelRadius = hologram.DefaultKernelRadius

	return cfg
}

// LoadConfig loads a scenario from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks the loaded scenario for values outside the physical
// domain before any synthesis work starts
func (cfg *Config) Validate() error {
	if cfg.Image.Width < 1 || cfg.Image.Height < 1 {
		return fmt.Errorf("config: image dimensions must be positive, got %dx%d", cfg.Image.Width, cfg.Image.Height)
	}
	if cfg.Medium.RefractiveIndex <= 0 {
		return fmt.Errorf("config: medium refractive index must be positive, got %g", cfg.Medium.RefractiveIndex)
	}
	if cfg.Medium.Wavelength <= 0 {
		return fmt.Errorf("config: wavelength must be positive, got %g", cfg.Medium.Wavelength)
	}
	if cfg.Medium.PixelPitch <= 0 {
		return fmt.Errorf("config: pixel pitch must be positive, got %g", cfg.Medium.PixelPitch)
	}
	if cfg.Sphere.Radius <= 0 {
		return fmt.Errorf("config: sphere radius must be positive, got %g", cfg.Sphere.Radius)
	}
	if math.IsNaN(cfg.Synthesis.Alpha) || math.IsInf(cfg.Synthesis.Alpha, 0) {
		return fmt.Errorf("config: alpha must be finite, got %g", cfg.Synthesis.Alpha)
	}
	if math.IsNaN(cfg.Synthesis.Delta) || math.IsInf(cfg.Synthesis.Delta, 0) {
		return fmt.Errorf("config: delta must be finite, got %g", cfg.Synthesis.Delta)
	}
	if cfg.Suppression.Enabled && cfg.Suppression.KernelRadius <= 0 {
		return fmt.Errorf("config: suppression kernel radius must be positive, got %g", cfg.Suppression.KernelRadius)
	}
	return nil
}

// ToSphere converts the sphere section to the synthesis type
func (cfg *Config) ToSphere() hologram.Sphere {
	return hologram.Sphere{
		X:      cfg.Sphere.X,
		Y:      cfg.Sphere.Y,
		Z:      cfg.Sphere.Z,
		Radius: cfg.Sphere.Radius,
		Index:  complex(cfg.Sphere.RefractiveIndex, cfg.Sphere.AbsorptionIndex),
	}
}

// ToMedium converts the medium section to the synthesis type
func (cfg *Config) ToMedium() hologram.Medium {
	return hologram.Medium{
		Index:      complex(cfg.Medium.RefractiveIndex, cfg.Medium.AbsorptionIndex),
		Wavelength: cfg.Medium.Wavelength,
		PixelPitch: cfg.Medium.PixelPitch,
	}
}

// ToParams converts the scenario to synthesis parameters
func (cfg *Config) ToParams() *hologram.Params {
	return &hologram.Params{
		Medium:  cfg.ToMedium(),
		Width:   cfg.Image.Width,
		Height:  cfg.Image.Height,
		Alpha:   cfg.Synthesis.Alpha,
		Delta:   cfg.Synthesis.Delta,
		Workers: cfg.Synthesis.Workers,
		Verbose: cfg.Synthesis.Verbose,
	}
}
