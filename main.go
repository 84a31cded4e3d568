// Package main provides the entry point for the lipcue CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/lipcue/internal/g2p"
	"github.com/dgnsrekt/lipcue/internal/timing"
	"github.com/dgnsrekt/lipcue/internal/viseme"
	"github.com/dgnsrekt/lipcue/utils"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile      string
	outputPath      string
	copyToClipboard bool
	watchInput      bool

	// opts is filled from viper by validateOptions.
	opts options

	rootCmd = &cobra.Command{
		Use:   "lipcue [TIMINGS|-]",
		Short: "Turn word timings into lip-sync mouth cues",
		Long: paragraph(
			fmt.Sprintf("\nTurn word timings into %s for lip-sync animation.", keyword("Rhubarb mouth cues")),
		),
		Example: paragraph("lipcue speech.json\nedge-tts-timings | lipcue - -o cues.json\nlipcue --g2p dict --dict ~/cmudict.dict speech.json"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func noValidation(*cobra.Command, []string) error {
	return nil
}

func validateOptions(_ *cobra.Command) error {
	o, err := loadOptions()
	if err != nil {
		return err
	}
	opts = o
	return nil
}

// loadOptions reads and checks every setting from viper.
func loadOptions() (options, error) {
	var o options

	o.SoundFile = viper.GetString("output.sound_file")
	o.Pretty = viper.GetBool("output.pretty")

	format, err := timing.ParseFormat(viper.GetString("input.format"))
	if err != nil {
		return o, err
	}
	o.Format = format

	o.Model = viseme.TimingModel(viper.GetString("timing.model"))
	if _, err := viseme.NewDistributor(o.Model); err != nil {
		return o, err
	}

	o.Workers = viper.GetInt("synth.workers")
	if o.Workers < 1 || o.Workers > 256 {
		return o, fmt.Errorf("synth.workers must be between 1 and 256, got %d", o.Workers)
	}

	o.G2P = g2p.Config{
		Backend:     viper.GetString("g2p.backend"),
		Fallback:    viper.GetString("g2p.fallback"),
		DictPath:    viper.GetString("g2p.dict.path"),
		Command:     viper.GetString("g2p.command.binary"),
		CommandArgs: viper.GetStringSlice("g2p.command.args"),
		Timeout:     viper.GetDuration("g2p.command.timeout"),
		Rate:        viper.GetFloat64("g2p.command.rate"),
		Logger:      log.Default(),
	}
	if err := validateG2P(o.G2P); err != nil {
		return o, err
	}

	o.Cache, err = loadCacheOptions()
	if err != nil {
		return o, err
	}
	return o, nil
}

// validateG2P checks backend names and the files they need without loading
// anything.
func validateG2P(cfg g2p.Config) error {
	for _, name := range []string{cfg.Backend, cfg.Fallback} {
		if name == "" || isBackend(name) {
			continue
		}
		err := fmt.Errorf("%w: %q", g2p.ErrInvalidBackend, name)
		if s := g2p.Suggest(name); len(s) > 0 {
			err = fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, ", "))
		}
		return err
	}
	if cfg.Backend == "" {
		return fmt.Errorf("%w: g2p.backend is empty", g2p.ErrInvalidConfig)
	}

	usesDict := strings.EqualFold(cfg.Backend, g2p.BackendDict) || strings.EqualFold(cfg.Fallback, g2p.BackendDict)
	if usesDict {
		if cfg.DictPath == "" {
			return fmt.Errorf("%w: the dict backend needs --dict or g2p.dict.path", g2p.ErrInvalidConfig)
		}
		if _, err := os.Stat(utils.ExpandPath(cfg.DictPath)); err != nil {
			return fmt.Errorf("pronunciation dictionary: %w", err)
		}
	}
	if cfg.Rate < 0 {
		return fmt.Errorf("g2p.command.rate must not be negative, got %v", cfg.Rate)
	}
	return nil
}

func isBackend(name string) bool {
	for _, b := range g2p.Backends() {
		if strings.EqualFold(name, b) {
			return true
		}
	}
	return false
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	src := "-"
	if len(args) == 1 {
		src = args[0]
	} else if yes, err := stdinIsPipe(); err != nil {
		return err
	} else if !yes {
		return errors.New("missing word timings: pass a JSON file or pipe it on stdin")
	}

	if watchInput {
		if utils.IsStdin(src) {
			return errors.New("--watch needs a timings file, not stdin")
		}
		return watchFile(cmd.Context(), src, func() error {
			return runFile(cmd.Context(), src)
		})
	}
	return runFile(cmd.Context(), src)
}

// runFile converts one timings source and writes the result.
func runFile(ctx context.Context, src string) error {
	var (
		words []viseme.WordTiming
		err   error
	)
	if utils.IsStdin(src) {
		words, err = timing.Parse(os.Stdin, opts.Format)
	} else {
		words, err = timing.ParseFile(utils.ExpandPath(src), opts.Format)
	}
	if err != nil {
		return fmt.Errorf("unable to read word timings: %w", err)
	}

	o := opts
	if o.SoundFile == "" && viper.GetBool("output.guess_sound_file") {
		o.SoundFile = utils.SoundFileFor(src)
	}
	return render(ctx, o, words)
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	_ = closer()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringVarP(&outputPath, "output", "o", "", "write cues to this file instead of stdout")
	flags.String("sound-file", "", "value for metadata.soundFile")
	flags.Bool("compact", false, "write compact JSON")
	flags.String("g2p", g2p.BackendLetters, "phoneme backend (dict, command, letters)")
	flags.String("g2p-fallback", "", "backend to ask when the primary one fails")
	flags.String("dict", "", "CMUdict-format pronunciation dictionary")
	flags.String("timing", string(viseme.TimingEven), "phoneme timing model (even, weighted)")
	flags.IntP("workers", "j", 4, "concurrent phoneme lookups")
	flags.Bool("no-cache", false, "do not read or write the phoneme cache")
	flags.BoolVarP(&copyToClipboard, "clipboard", "c", false, "also copy the cues to the clipboard")
	rootCmd.Flags().String("input-format", string(timing.FormatSeconds), "timings format (seconds, ticks)")
	rootCmd.Flags().BoolVarP(&watchInput, "watch", "w", false, "regenerate whenever the timings file changes")

	// Config bindings
	_ = viper.BindPFlag("output.sound_file", flags.Lookup("sound-file"))
	_ = viper.BindPFlag("g2p.backend", flags.Lookup("g2p"))
	_ = viper.BindPFlag("g2p.fallback", flags.Lookup("g2p-fallback"))
	_ = viper.BindPFlag("g2p.dict.path", flags.Lookup("dict"))
	_ = viper.BindPFlag("timing.model", flags.Lookup("timing"))
	_ = viper.BindPFlag("synth.workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("input.format", rootCmd.Flags().Lookup("input-format"))

	viper.SetDefault("output.sound_file", "")
	viper.SetDefault("output.pretty", true)
	viper.SetDefault("output.guess_sound_file", false)
	viper.SetDefault("input.format", string(timing.FormatSeconds))
	viper.SetDefault("g2p.backend", g2p.BackendLetters)
	viper.SetDefault("g2p.fallback", "")
	viper.SetDefault("g2p.dict.path", "")
	viper.SetDefault("g2p.command.binary", "")
	viper.SetDefault("g2p.command.args", []string{})
	viper.SetDefault("g2p.command.timeout", g2p.DefaultCommandTimeout)
	viper.SetDefault("g2p.command.rate", 20)
	viper.SetDefault("timing.model", string(viseme.TimingEven))
	viper.SetDefault("synth.workers", 4)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.memory_size", "8MiB")
	viper.SetDefault("cache.disk_size", "64MiB")
	viper.SetDefault("cache.compression_level", 3)
	viper.SetDefault("cache.ttl_days", 30)

	cobra.OnInitialize(func() {
		if rootCmd.PersistentFlags().Changed("config") {
			viper.SetConfigFile(utils.ExpandPath(configFile))
			if err := viper.ReadInConfig(); err != nil {
				log.Warn("Could not read configuration file", "path", configFile, "err", err)
			}
		}
		if rootCmd.PersistentFlags().Changed("compact") {
			viper.Set("output.pretty", false)
		}
		if rootCmd.PersistentFlags().Changed("no-cache") {
			viper.Set("cache.enabled", false)
		}
	})

	rootCmd.AddCommand(textCmd, cacheCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "lipcue")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "lipcue")}, dirs...)
	}

	if c := os.Getenv("LIPCUE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("lipcue")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("lipcue")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	configFile = filepath.Join(dirs[0], "lipcue.yml")
}
