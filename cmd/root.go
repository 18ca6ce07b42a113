package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/practix/internal/config"
	"github.com/abhisek/practix/internal/logger"
)

var (
	v   = config.New()
	cfg *config.Config
	log *logger.Logger
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Use:   "practix",
	Short: "Daily math practice sets",
	Long:  "Practix composes a short daily set of math problems per learner, checks answers and tracks mastery, XP and streaks.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := cmd.Annotations[skipConfig]; ok {
			return nil
		}
		file, _ := cmd.Flags().GetString("config")
		c, err := config.Load(v, file)
		if err != nil {
			return err
		}
		l, err := logger.New(c.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg, log = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file")
	flags.String("db", "", "Database DSN or SQLite file (overrides PRACTIX_STORE_DSN)")
	flags.String("driver", "", "Database driver: sqlite or postgres")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("user", "local", "Learner ID for CLI commands (PRACTIX_USER)")

	bind(v, "store.dsn", rootCmd, "db")
	bind(v, "store.driver", rootCmd, "driver")
	bind(v, "log.level", rootCmd, "log-level")
	bind(v, "user", rootCmd, "user")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func bind(v *viper.Viper, key string, cmd *cobra.Command, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// currentUser is the learner the CLI acts for.
func currentUser() string {
	return v.GetString("user")
}
