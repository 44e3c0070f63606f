package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/eventlink/pkg/constants"
	"github.com/agentstation/eventlink/pkg/errors"
)

// envPrefix namespaces environment variables, EVENTLINK_RULES_FILE etc.
const envPrefix = "EVENTLINK"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Run configuration
	RulesFile   string
	MetricsFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (EVENTLINK_*)
// 3. .env files
// 4. Config file (path, or .eventlink.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(path string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit path must exist; the search locations are optional.
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.WrapResource("read", "config", path, err)
		}
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		RulesFile:   v.GetString("rules_file"),
		MetricsFile: v.GetString("metrics_file"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// Only flags the user set override values from files and the environment.
func (c *Config) UpdateFromFlags(flags Flags) {
	if flags.Changed("verbose") {
		c.Verbose = flags.Verbose
	}
	if flags.Changed("quiet") {
		c.Quiet = flags.Quiet
	}
	if flags.Changed("no-color") {
		c.NoColor = flags.NoColor
	}
	if flags.Changed("format") {
		c.Format = flags.Format
	}
	if flags.Changed("log-level") {
		c.LogLevel = flags.LogLevel
	}
	if flags.Changed("rules") {
		c.RulesFile = flags.RulesFile
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// godotenv never overrides a variable that is already set, so the
	// first file to define a key wins: .env.local before .env.
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
