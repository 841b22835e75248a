package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eleven-am/orchestra"
	"github.com/eleven-am/orchestra/internal/xjson"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "orchestra",
	Short: "Run declarative node workflows",
	Long: `orchestra executes declarative workflows that chain independent node
programs together, resolving {{step.field}} references between steps and
applying declared assembly transformations.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run <workflow.json>",
	Short: "Execute a workflow file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("cannot read workflow file: %w", err)
		}

		report, runErr := manager.RunWorkflowJSON(context.Background(), data)
		if report != nil {
			out, err := xjson.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
		return runErr
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <workflow.json>",
	Short: "Statically check a workflow without executing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("cannot read workflow file: %w", err)
		}

		issues, err := manager.ValidateWorkflowJSON(data)
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "workflow is valid")
			return nil
		}

		for _, issue := range issues {
			fmt.Fprintln(cmd.OutOrStdout(), issue.String())
		}
		return fmt.Errorf("workflow has %d validation issue(s)", len(issues))
	},
}

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List discovered node schemas",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager()
		if err != nil {
			return err
		}

		for _, schema := range manager.ListSchemas() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-30s %s\n", schema.Name, schema.Description)
		}
		return nil
	},
}

func newManager() (*orchestra.Manager, error) {
	config := orchestra.DefaultConfig().
		WithNodesDir(viper.GetString("nodes_dir")).
		WithLogger(newLogger())

	if timeout := viper.GetDuration("step_timeout"); timeout > 0 {
		config.WithStepTimeout(timeout)
	}
	if viper.IsSet("seed") {
		config.WithSeed(viper.GetInt64("seed"))
	}

	return orchestra.New(config)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("orchestra")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.orchestra")
	}

	viper.SetEnvPrefix("ORCHESTRA")
	viper.AutomaticEnv()
	// AutomaticEnv does not register keys for IsSet; seed needs an explicit
	// binding so ORCHESTRA_SEED is honored
	_ = viper.BindEnv("seed")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./orchestra.yaml)")
	rootCmd.PersistentFlags().String("nodes-dir", "./nodes", "directory containing node definitions")
	rootCmd.PersistentFlags().Duration("step-timeout", 5*time.Minute, "default per-step timeout")
	rootCmd.PersistentFlags().Int64("seed", 0, "seed random selections for reproducible runs")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	_ = viper.BindPFlag("nodes_dir", rootCmd.PersistentFlags().Lookup("nodes-dir"))
	_ = viper.BindPFlag("step_timeout", rootCmd.PersistentFlags().Lookup("step-timeout"))
	_ = viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(runCmd, validateCmd, nodesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
