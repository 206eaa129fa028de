package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Report
	pathMode  string
	filter    string
	search    string
	titleMode string

	// Traversal
	timeout          time.Duration
	excludePatterns  []string
	respectGitignore bool
	interactiveMode  bool

	// Output
	copyToClipboard bool
	pdfFont         string

	// Logging
	debugMode bool
	logFile   string
	logLevel  string

	cfgFile string
)

// version is the application version, set via ldflags.
var version string = "dev"

var rootCmd = &cobra.Command{
	Use:   "filetree [target directory] [output path]",
	Short: "Inventory a directory tree into a depth-annotated spreadsheet.",
	Long: `filetree walks a directory recursively and writes one row per file and
directory, indented by depth, to a spreadsheet (or PDF/TSV by extension).
HTML files contribute their <title>; with --search, text files are scanned
for a regular expression and the matches are summarized per file.`,
	Version:      version,
	Args:         cobra.MaximumNArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := scanOptions(args)

		log, closer, err := newLogger(os.Stderr, viper.GetString("log_file"), opts.Debug)
		if err != nil {
			return err
		}
		defer closer.Close()
		if lvl := viper.GetString("log_level"); lvl != "" && !opts.Debug {
			parsed, err := parseLevel(lvl)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", lvl, err)
			}
			log.SetLevel(parsed)
		}

		log.Info("==============================")
		log.Info("Start")
		log.Info("==============================")
		if opts.Debug {
			log.Debug("-- debug mode --")
		}
		if used := viper.ConfigFileUsed(); used != "" {
			log.Debugf("config file: %s", used)
		}

		if viper.GetBool("interactive") {
			dir, err := pickDirectory(pickerStart(opts), false)
			if err != nil {
				return err
			}
			if dir == "" {
				log.Info("interactive selection aborted")
				return nil
			}
			opts.Dir = dir
		}

		exts, source, err := loadExtensionSets()
		if err != nil {
			return err
		}
		if source != "" {
			log.Debugf("inspectable extensions from %s", source)
		}

		cfg, err := NewScanConfig(opts, exts)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"target":  cfg.Root,
			"output":  cfg.Output,
			"path":    cfg.PathMode,
			"sep":     cfg.PathMode.Separator(),
			"filter":  opts.Filter,
			"search":  opts.Search,
			"timeout": cfg.Timeout,
		}).Debug("settings")

		table, summary, err := report(cmd.Context(), cfg, log)
		if err != nil {
			switch {
			case isTimeout(err):
				log.WithError(err).Errorf("operation exceeded %s, no report written", cfg.Timeout)
			case isFatalIO(err):
				log.WithError(err).Error("filesystem error, no report written")
			default:
				log.WithError(err).Error("scan failed, no report written")
			}
			return err
		}

		if cfg.Clipboard {
			tsv, err := tableTSV(table)
			if err != nil {
				return err
			}
			if err := clipboard.WriteAll(tsv); err != nil {
				log.WithError(err).Warn("could not copy table to clipboard")
			} else {
				log.Info("table copied to clipboard")
			}
		}

		printSummary(cfg, summary)
		return nil
	},
}

// run walks cfg.Root and turns the rows into a finalized table. Nothing is
// written here, so a failed walk leaves no output behind.
func run(ctx context.Context, cfg *ScanConfig, log *logrus.Logger) (*Table, Summary, error) {
	walker, err := NewWalker(cfg, log)
	if err != nil {
		return nil, Summary{}, err
	}

	start := time.Now()
	rows, err := walker.Walk(ctx)
	if err != nil {
		return nil, Summary{}, err
	}
	log.Debugf("walk finished: %d rows in %s", len(rows), time.Since(start).Round(time.Millisecond))

	table, err := buildTable(rows, cfg.Filter)
	if err != nil {
		return nil, Summary{}, err
	}
	log.Debugf("colLength: %d", table.Width)

	summary := walker.Summary()
	summary.Rows = len(table.Rows)
	return table, summary, nil
}

// report runs the scan and hands the table to the sink chosen by the output
// extension. The output file is only created after the walk succeeded.
func report(ctx context.Context, cfg *ScanConfig, log *logrus.Logger) (*Table, Summary, error) {
	table, summary, err := run(ctx, cfg, log)
	if err != nil {
		return nil, Summary{}, err
	}

	log.Infof("generate report: %d record", len(table.Rows))
	if err := sinkFor(cfg).Write(table, cfg.Output); err != nil {
		return nil, Summary{}, err
	}
	log.Info("write ok!")
	return table, summary, nil
}

// pickerStart is where the interactive picker begins: the configured or
// positional target when one was given, otherwise the working directory.
func pickerStart(opts ScanOptions) string {
	if opts.Dir == "" {
		return "."
	}
	return opts.Dir
}

func printSummary(cfg *ScanConfig, s Summary) {
	label := color.New(color.FgCyan)
	ok := color.New(color.FgGreen)
	fmt.Printf("%s %s\n", ok.Sprint("Report saved to"), cfg.Output)
	fmt.Printf("%s: %d  %s: %d  %s: %d  %s: %d  %s: %d\n",
		label.Sprint("rows"), s.Rows,
		label.Sprint("directories"), s.Dirs,
		label.Sprint("files"), s.Files,
		label.Sprint("inspected"), s.Inspected,
		label.Sprint("matched"), s.Matched,
	)
}

// scanOptions collects the resolved settings. Positional arguments win over
// configured values for the target and output.
func scanOptions(args []string) ScanOptions {
	opts := ScanOptions{
		Dir:              viper.GetString("dir"),
		Output:           viper.GetString("output"),
		Path:             viper.GetString("path"),
		Filter:           viper.GetString("filter"),
		Search:           viper.GetString("search"),
		Debug:            viper.GetBool("test"),
		Timeout:          viper.GetDuration("timeout"),
		TitleMode:        viper.GetString("title_mode"),
		Exclude:          viper.GetStringSlice("exclude"),
		RespectGitignore: viper.GetBool("gitignore"),
		Clipboard:        viper.GetBool("clipboard"),
		PDFFont:          viper.GetString("pdf_font"),
	}
	if len(args) > 0 {
		opts.Dir = args[0]
	}
	if len(args) > 1 {
		opts.Output = args[1]
	}
	return opts
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/filetree/config.toml)")

	// Report
	rootCmd.Flags().StringVarP(&pathMode, "path", "p", "url", "Path display: url, pc or pcfull")
	viper.BindPFlag("path", rootCmd.Flags().Lookup("path"))
	rootCmd.Flags().StringVarP(&filter, "filter", "f", "", `Extension filter, "|" separated (e.g. "html|htm")`)
	viper.BindPFlag("filter", rootCmd.Flags().Lookup("filter"))
	rootCmd.Flags().StringVarP(&search, "search", "s", "", "Regular expression searched in html, htm, txt, js and css files")
	viper.BindPFlag("search", rootCmd.Flags().Lookup("search"))
	rootCmd.Flags().StringVar(&titleMode, "title-mode", "marker", "Title extraction: marker or html")
	viper.BindPFlag("title_mode", rootCmd.Flags().Lookup("title-mode"))

	// Traversal
	rootCmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for each directory listing or file read (0 disables)")
	viper.BindPFlag("timeout", rootCmd.Flags().Lookup("timeout"))
	rootCmd.Flags().StringSliceVarP(&excludePatterns, "exclude", "e", nil, "Glob patterns to leave out (comma-separated, e.g. node_modules,**/*.min.js)")
	viper.BindPFlag("exclude", rootCmd.Flags().Lookup("exclude"))
	rootCmd.Flags().BoolVar(&respectGitignore, "gitignore", false, "Leave out entries ignored by the target's .gitignore")
	viper.BindPFlag("gitignore", rootCmd.Flags().Lookup("gitignore"))
	rootCmd.Flags().BoolVar(&interactiveMode, "interactive", false, "Choose the target directory with a fuzzy finder")
	viper.BindPFlag("interactive", rootCmd.Flags().Lookup("interactive"))

	// Output
	rootCmd.Flags().BoolVarP(&copyToClipboard, "clipboard", "c", false, "Also copy the table to the clipboard as TSV")
	viper.BindPFlag("clipboard", rootCmd.Flags().Lookup("clipboard"))
	rootCmd.Flags().StringVar(&pdfFont, "pdf-font", "", "TTF font used for PDF output")
	viper.BindPFlag("pdf_font", rootCmd.Flags().Lookup("pdf-font"))

	// Logging
	rootCmd.Flags().BoolVarP(&debugMode, "test", "T", false, "Debug mode (detailed logs)")
	viper.BindPFlag("test", rootCmd.Flags().Lookup("test"))
	rootCmd.Flags().StringVar(&logFile, "log-file", defaultLogFile, "Log file, appended to on every run (empty disables)")
	viper.BindPFlag("log_file", rootCmd.Flags().Lookup("log-file"))
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, verbose, debug or silly")
	viper.BindPFlag("log_level", rootCmd.Flags().Lookup("log-level"))

	viper.SetDefault("output", defaultOutput)
	viper.SetDefault("path", "url")
	viper.SetDefault("timeout", defaultTimeout)
	viper.SetDefault("title_mode", "marker")
	viper.SetDefault("log_file", defaultLogFile)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "filetree"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("FILETREE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // FILETREE_*

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
