package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/talentfit/cv-ranker/internal/ai"
	"github.com/talentfit/cv-ranker/internal/ai/gemini"
	"github.com/talentfit/cv-ranker/internal/embedding"
	"github.com/talentfit/cv-ranker/internal/logger"
	"github.com/talentfit/cv-ranker/internal/matching"
	"github.com/talentfit/cv-ranker/internal/profile"
	"github.com/talentfit/cv-ranker/internal/ranking"
	"github.com/talentfit/cv-ranker/internal/report"
	"github.com/talentfit/cv-ranker/internal/secrets"
	"github.com/talentfit/cv-ranker/internal/similarity"
)

const (
	PromptShowRanking = "Show ranking"
	PromptExportExcel = "Export Excel report"
	PromptDumpToFile  = "Dump ranking to file"
	PromptExit        = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowRanking, PromptExportExcel, PromptDumpToFile, PromptExit},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Run the cv-ranker main command",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().BoolP("auto-approve", "y", false, "print the ranking and write configured outputs without prompting")
	rankCmd.Flags().StringP("profiles", "p", "", "YAML file with already-standardized profiles. Default is unset.")

	viper.BindPFlag("profiles", rankCmd.Flags().Lookup("profiles"))
}

// rank is the main command for the cli.
func rank(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the cv-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	embedder, standardizer := prepareAI(ctx, config, logger)

	if embedder != nil && strings.TrimSpace(config.CacheFile) != "" {
		cache, err := embedding.NewCache(config.CacheFile, embedder, logger)
		if err != nil {
			logger.Fatal("opening embedding cache", zap.Error(err))
		}
		defer cache.Close()
		embedder = cache
		logger.Info("embedding cache enabled", zap.String("cache_file", config.CacheFile))
	}

	bundle, err := loadInputs(ctx, config, standardizer, logger)
	if err != nil {
		logger.Fatal("loading analysis inputs", zap.Error(err))
	}

	criteria := bundle.Killer
	if configCriteria, err := config.KillerCriteria(); err != nil {
		logger.Fatal("parsing killer criteria", zap.Error(err))
	} else if configCriteria != nil {
		criteria = configCriteria
	}

	weights := bundle.Weights
	if len(config.Weights) > 0 {
		weights = profile.Weights(config.Weights)
	}

	prefs := bundle.Preferences
	if len(config.Preferences) > 0 {
		prefs = &profile.Preferences{PreferredSkills: config.Preferences}
	}

	simScorer := similarity.NewScorer(embedder, logger)
	evaluator := matching.NewEvaluator(simScorer, config.KillerThreshold, logger)
	scorer := matching.NewScorer(simScorer, evaluator, logger)
	engine := ranking.NewEngine(scorer, config.Concurrency, logger)

	logger.Info("ranking candidates",
		zap.String("job", bundle.Job.Title),
		zap.Int("candidates", len(bundle.Candidates)),
		zap.Bool("killer_criteria", !criteria.Empty()),
	)

	result, err := engine.Rank(ctx, bundle.Job, prefs, bundle.Candidates, criteria, weights)
	if err != nil {
		logger.Fatal("ranking failed", zap.Error(err))
	}

	for _, failure := range result.Failures {
		logger.Warn("candidate skipped",
			zap.String("candidate", failure.Candidate),
			zap.String("reason", failure.Reason),
		)
	}

	printRanking(logger, result)

	if cmd.Flag("auto-approve").Value.String() == "true" {
		if config.Output != nil && config.Output.Excel != "" {
			if err := report.ExportExcel(config.Output.Excel, bundle.Job, result); err != nil {
				logger.Fatal("exporting report", zap.Error(err))
			}
			logger.Info("report written", zap.String("path", config.Output.Excel))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, bundle.Job, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, job *profile.JobProfile, result *ranking.Result) error {
	switch action {
	case PromptShowRanking:
		printRanking(logger, result)
		return nil
	case PromptExportExcel:
		path := "ranking.xlsx"
		if config.Output != nil && config.Output.Excel != "" {
			path = config.Output.Excel
		}
		if err := report.ExportExcel(path, job, result); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		logger.Info("report written", zap.String("path", path))
		return nil
	case PromptDumpToFile:
		filename, err := report.DumpToTmpFile(result)
		if err != nil {
			return fmt.Errorf("dump ranking to file: %w", err)
		}
		logger.Info("dumping ranking to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printRanking(logger *zap.Logger, result *ranking.Result) {
	for i, entry := range result.Entries {
		fields := []zap.Field{
			zap.Int("rank", i + 1),
			zap.String("candidate", entry.Candidate.Name),
			zap.Float64("final_score", entry.Score.FinalScore),
		}
		if entry.Score.Disqualified {
			fields = append(fields,
				zap.Bool("disqualified", true),
				zap.Strings("reasons", entry.Score.DisqualificationReasons),
			)
		}
		logger.Info("ranked candidate", fields...)
	}
}

// prepareAI builds the Gemini-backed embedder and standardizer. When AI is
// disabled the ranking still runs in lexical fallback mode, and raw inputs
// cannot be standardized.
func prepareAI(ctx context.Context, config *Config, logger *zap.Logger) (ai.Embedder, ai.Standardizer) {
	if config.AI == nil || !config.AI.Enabled {
		logger.Info("ai is disabled; using lexical similarity only")
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		logger.Fatal("unsupported ai provider", zap.String("provider", config.AI.Provider))
	}
	if config.AI.Gemini == nil {
		logger.Fatal("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.AI.Gemini.Model, config.AI.Gemini.EmbeddingModel, config.AI.Gemini.MaxRetries, logger)
	if err != nil {
		logger.Fatal("building gemini generator", zap.Error(err))
	}

	standardizer := gemini.NewStandardizer(generator, logger, config.AI.Gemini.MaxLogLength)

	return generator, standardizer
}

// loadInputs returns the analysis bundle, either from a pre-standardized
// profiles file or by standardizing raw job/resume text via the AI provider.
func loadInputs(ctx context.Context, config *Config, standardizer ai.Standardizer, logger *zap.Logger) (*profile.Bundle, error) {
	if path := strings.TrimSpace(config.Profiles); path != "" {
		logger.Info("loading standardized profiles", zap.String("path", path))
		return profile.LoadBundle(path)
	}

	if standardizer == nil {
		return nil, errors.New("raw inputs require ai to be enabled; otherwise provide a standardized profiles file")
	}
	if strings.TrimSpace(config.Job) == "" {
		return nil, errors.New("job description file is required under 'job'")
	}
	if len(config.Resumes) == 0 {
		return nil, errors.New("at least one resume file is required under 'resumes'")
	}

	jobText, err := os.ReadFile(config.Job)
	if err != nil {
		return nil, fmt.Errorf("reading job description: %w", err)
	}

	job, err := standardizer.StandardizeJob(ctx, string(jobText))
	if err != nil {
		return nil, fmt.Errorf("standardizing job description: %w", err)
	}
	logger.Info("standardized job description", zap.String("title", job.Title))

	bundle := &profile.Bundle{Job: job}
	for _, path := range config.Resumes {
		resumeText, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading resume %q: %w", path, err)
		}

		candidate, err := standardizer.StandardizeResume(ctx, string(resumeText))
		if err != nil {
			return nil, fmt.Errorf("standardizing resume %q: %w", path, err)
		}

		logger.Info("standardized resume",
			zap.String("path", path),
			zap.String("candidate", candidate.Name),
		)
		bundle.Candidates = append(bundle.Candidates, candidate)
	}

	if config.Output != nil && config.Output.Bundle != "" {
		if err := bundle.SaveBundle(config.Output.Bundle); err != nil {
			logger.Warn("saving standardized profiles failed", zap.Error(err))
		} else {
			logger.Info("standardized profiles saved", zap.String("path", config.Output.Bundle))
		}
	}

	return bundle, nil
}
