package config

// SystemConfig represents the tool's own configuration (/etc/systune/config.yaml
// or ~/.systune.yaml), as opposed to the profile definitions it manages.
type SystemConfig struct {
	// ProfileDirs are scanned in order; later directories shadow earlier
	// ones and all shadow the built-in profiles.
	ProfileDirs []string `yaml:"profile_dirs" mapstructure:"profile_dirs"`

	// StateFile is the durable active-profile record.
	StateFile string `yaml:"state_file" mapstructure:"state_file"`

	// SysfsRoot rebases all backend paths, for testing against a fake tree.
	// Empty means the real host filesystem.
	SysfsRoot string `yaml:"sysfs_root" mapstructure:"sysfs_root"`
}

// DefaultSystemConfig returns the stock paths used when no config file is
// present.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		ProfileDirs: []string{
			"/usr/lib/systune/profiles",
			"/etc/systune/profiles",
		},
		StateFile: "/var/lib/systune/active.json",
	}
}
