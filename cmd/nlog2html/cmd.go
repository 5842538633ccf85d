package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/philipp01105/nloghtml/formatter"
	"github.com/philipp01105/nloghtml/handler"
)

// Version is reported by --version. It is set at build time with
// -ldflags "-X main.Version=...".
var Version string

const (
	configF       = "config"
	titleF        = "title"
	locationInfoF = "locationinfo"
	outputF       = "output"
	strictF       = "strict"

	envPrefix = "NLOG2HTML"

	configUsage       = "Configuration file (yaml, json or toml)."
	titleUsage        = "Title of the generated page."
	locationInfoUsage = "Add a File:Line column from the caller of each entry."
	outputUsage       = "File to write the page to. Defaults to stdout."
	strictUsage       = "Fail on the first line that cannot be decoded instead of skipping it."
)

// Config is the resolved configuration of one run. Flags take precedence
// over NLOG2HTML_* environment variables, which take precedence over the
// config file.
type Config struct {
	Title        string `mapstructure:"title"`
	LocationInfo bool   `mapstructure:"locationinfo"`
	Output       string `mapstructure:"output"`
	Strict       bool   `mapstructure:"strict"`
}

func addFlags(fs *pflag.FlagSet, cfgFile *string) {
	fs.StringVar(cfgFile, configF, "", configUsage)
	fs.String(titleF, formatter.DefaultHTMLTitle, titleUsage)
	fs.Bool(locationInfoF, false, locationInfoUsage)
	fs.StringP(outputF, "o", "", outputUsage)
	fs.Bool(strictF, false, strictUsage)
}

// NewCmd returns the nlog2html root command.
func NewCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "nlog2html [flags] [file...]",
		Short: "Render JSON log lines as an HTML log page.",
		Long: `nlog2html reads log entries written by the JSON formatter, one object
per line, from the given files or stdin ("-" or no arguments) and writes
a single HTML page with one table row per entry.`,
		Version:      Version,
		SilenceUsage: true,
	}
	addFlags(cmd.Flags(), &cfgFile)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags(), cfgFile)
		if err != nil {
			return err
		}
		return run(cmd, cfg, args)
	}

	return cmd
}

func loadConfig(fs *pflag.FlagSet, cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func newFormatter(cfg *Config) *formatter.HTMLFormatter {
	f := formatter.NewHTMLFormatter(formatter.HTMLConfig{})
	formatter.ApplyOptions(f, map[string]string{
		"title":        cfg.Title,
		"locationinfo": strconv.FormatBool(cfg.LocationInfo),
	})
	return f
}

func run(cmd *cobra.Command, cfg *Config, args []string) (err error) {
	out := cmd.OutOrStdout()
	if cfg.Output != "" && cfg.Output != "-" {
		file, createErr := os.Create(cfg.Output)
		if createErr != nil {
			return fmt.Errorf("create output: %w", createErr)
		}
		defer func() {
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
		}()
		out = file
	}

	w := bufio.NewWriter(out)
	conv := &converter{
		formatter: newFormatter(cfg),
		strict:    cfg.Strict,
		warn:      cmd.ErrOrStderr(),
	}

	if _, err := handler.WriteHeader(w, conv.formatter); err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, name := range args {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		if err := convertNamed(cmd.InOrStdin(), name, conv, w); err != nil {
			return err
		}
	}

	if _, err := handler.WriteFooter(w, conv.formatter); err != nil {
		return err
	}
	return w.Flush()
}

func convertNamed(stdin io.Reader, name string, conv *converter, w io.Writer) error {
	if name == "-" {
		return conv.convert("<stdin>", stdin, w)
	}
	file, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return conv.convert(name, file, w)
}
