package cmd

import (
	"log"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talentfit/cv-ranker/internal/profile"
)

const (
	app = "cv-ranker"
)

type Config struct {
	// Profiles points to a YAML bundle of already-standardized profiles.
	// When set, raw job/resume inputs and the AI standardizer are not used.
	Profiles string `mapstructure:"profiles"`

	// Job and Resumes are raw text inputs for AI standardization.
	Job     string   `mapstructure:"job"`
	Resumes []string `mapstructure:"resumes"`

	// Preferences lists the recruiter's nice-to-have skills.
	Preferences []string `mapstructure:"preferences"`

	Weights         map[string]float64 `mapstructure:"weights"`
	Killer          map[string]any     `mapstructure:"killer"`
	KillerThreshold float64            `mapstructure:"killer-threshold"`

	Concurrency int    `mapstructure:"concurrency"`
	CacheFile   string `mapstructure:"cache-file"`

	Output *OutputConfig `mapstructure:"output"`
	AI     *AIConfig     `mapstructure:"ai"`
}

type OutputConfig struct {
	// Excel is the path of the xlsx report to write.
	Excel string `mapstructure:"excel"`
	// Bundle is the path where standardized profiles are saved for replay.
	Bundle string `mapstructure:"bundle"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxRetries     int    `mapstructure:"max-retries"`
	MaxLogLength   int    `mapstructure:"max-log-length"`
}

// KillerCriteria decodes the free-form killer section of the config file into
// typed criteria.
func (c *Config) KillerCriteria() (*profile.KillerCriteria, error) {
	if len(c.Killer) == 0 {
		return nil, nil
	}

	var criteria profile.KillerCriteria
	if err := mapstructure.Decode(c.Killer, &criteria); err != nil {
		return nil, err
	}
	return &criteria, nil
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-ranker ranks candidate resumes against a job description using semantic similarity and killer criteria",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for rank command now. If there is no config, we can skip initialization
	if rankCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
