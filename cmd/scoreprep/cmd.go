package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/config"
	"github.com/wdm0006/scoreprep/pkg/io/table"
	"github.com/wdm0006/scoreprep/pkg/logger"
	"github.com/wdm0006/scoreprep/pkg/preprocess"
	"github.com/wdm0006/scoreprep/pkg/profile"
)

var version = "0.1.0-dev"

var (
	configPath string
	envFile    string
	logLevel   string

	trainPath    string
	testPath     string
	artifactPath string
	exportDir    string
	exportFormat string
	showProfile  bool

	inputPath    string
	outputPath   string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:           "scoreprep",
	Short:         "Preprocess student exam-score tables for regression",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Fit on a train table, transform train and test, save the preprocessor",
	Long: `The transform command fits the imputers, encoders and scalers on the train
table only, applies them to both tables, appends the target as the last column
and writes the fitted preprocessor to the artifact path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("artifact") {
			cfg.ArtifactPath = artifactPath
		}
		p, err := preprocess.New(cfg)
		if err != nil {
			return err
		}
		if showProfile {
			f, err := p.ReadTable(trainPath)
			if err != nil {
				return err
			}
			pc := profile.NewCollector(f.Schema(), 5)
			pc.ConsumeFrame(f)
			fmt.Fprint(cmd.ErrOrStderr(), pc.ReportText())
		}

		start := time.Now()
		res, err := p.Run(cmd.Context(), trainPath, testPath)
		if err != nil {
			return err
		}
		trainRows, width := res.Train.Dims()
		testRows, _ := res.Test.Dims()
		l := logger.Logger()
		l.Info().
			Str("run_id", res.RunID).
			Int("train_rows", trainRows).
			Int("test_rows", testRows).
			Int("columns", width).
			Str("artifact", res.ArtifactPath).
			Dur("elapsed", time.Since(start)).
			Msg("transform finished")

		if exportDir == "" {
			return nil
		}
		format := table.Format(exportFormat)
		for name, m := range map[string]*mat.Dense{"train": res.Train, "test": res.Test} {
			path := filepath.Join(exportDir, name+"."+exportFormat)
			if err := table.WriteMatrix(path, res.FeatureNames, m, format); err != nil {
				return fmt.Errorf("export %s matrix: %w", name, err)
			}
			logger.Infof("wrote %s", path)
		}
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Transform a table with a saved preprocessor",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputPath == "-" {
			// keep stdout for the table
			logger.SetOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("artifact") {
			cfg.ArtifactPath = artifactPath
		}
		p, err := preprocess.New(cfg)
		if err != nil {
			return err
		}
		ct, err := preprocess.LoadArtifact(cfg.ArtifactPath)
		if err != nil {
			return err
		}
		f, err := p.ReadTable(inputPath)
		if err != nil {
			return err
		}
		m, err := p.Apply(cmd.Context(), ct, f)
		if err != nil {
			return err
		}
		format := table.Format(outputFormat)
		if format == "" && outputPath == "-" {
			format = table.FormatCSV
		}
		if err := table.WriteMatrix(outputPath, ct.FeatureNames(), m, format); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		rows, cols := m.Dims()
		logger.Infof("applied %s to %d rows, %d columns", cfg.ArtifactPath, rows, cols)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "scoreprep", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (json, yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&artifactPath, "artifact", "a", config.DefaultArtifactPath, "preprocessor artifact path (.gz to compress)")

	transformCmd.Flags().StringVar(&trainPath, "train", "", "train table (csv, jsonl or parquet)")
	transformCmd.Flags().StringVar(&testPath, "test", "", "test table (csv, jsonl or parquet)")
	transformCmd.Flags().StringVarP(&exportDir, "export-dir", "o", "", "directory for the transformed train and test tables")
	transformCmd.Flags().StringVarP(&exportFormat, "format", "f", string(table.FormatCSV), "export format: csv, jsonl or parquet")
	transformCmd.Flags().BoolVar(&showProfile, "profile", false, "print a column profile of the train table to stderr")
	_ = transformCmd.MarkFlagRequired("train")
	_ = transformCmd.MarkFlagRequired("test")

	applyCmd.Flags().StringVarP(&inputPath, "input", "i", "", "table to transform")
	applyCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "output table, - for stdout")
	applyCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format, from the output extension when empty")
	_ = applyCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers defaults, the config file, the dotenv file and the
// environment, then applies the log level.
func loadConfig() (config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return config.Config{}, err
	}
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return config.Config{}, err
		}
	}
	cfg.ApplyEnv()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return config.Config{}, fmt.Errorf("log level: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error(err.Error())
		return err
	}
	return nil
}
