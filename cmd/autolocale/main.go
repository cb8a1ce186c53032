// Command autolocale runs the localization pipeline over files: handy for
// checking what a page or API payload looks like in another language, and
// for warming a cache snapshot.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/autolocale"
	"github.com/ZaguanLabs/autolocale/cache"
	"github.com/ZaguanLabs/autolocale/pipeline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	lang     string
	source   string
	provider string
	verbose  bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "autolocale",
		Short: autolocale.Description,
		Long: `autolocale translates rendered HTML and JSON API payloads into a target
language using the same cache, dictionary and translation service as the
embedded library.

Configuration is read from AUTOLOCALE_* environment variables; flags override
them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&g.lang, "lang", "l", "", "Target language code (e.g. fr_RW, sw)")
	root.PersistentFlags().StringVar(&g.source, "source", "", "Source language code (default: AUTOLOCALE_SOURCE_LANG)")
	root.PersistentFlags().StringVar(&g.provider, "provider", "", "Translation provider: http, openai or mock")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log debug output")

	root.AddCommand(
		newTranslateCmd(&g),
		newClassifyCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

// loadConfig reads the environment and applies flag overrides.
func (g *globalFlags) loadConfig() (pipeline.Config, error) {
	cfg, err := pipeline.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if g.lang != "" {
		cfg.Language = g.lang
	}
	if g.source != "" {
		cfg.SourceLang = g.source
	}
	if g.provider != "" {
		cfg.Provider = g.provider
	}
	return cfg, cfg.Validate()
}

type translateFlags struct {
	output      string
	contentType string
	shape       string
	cacheFile   string
	jsonOutput  bool
	dryRun      bool
}

func newTranslateCmd(g *globalFlags) *cobra.Command {
	var f translateFlags

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate an HTML page or JSON payload",
		Long: `Translate an HTML page or JSON payload read from a file or stdin.

HTML text is translated outside script, style, code, pre, textarea and
data-no-translate elements, and <html lang dir> is set. JSON string values are
translated except protected fields (ids, emails, phones, URLs, media,
credentials).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, g, &f, args)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&f.contentType, "type", "t", "", "Content type: html or json (default: from file extension)")
	cmd.Flags().StringVar(&f.shape, "shape", "", "Resource shape for JSON field rules")
	cmd.Flags().StringVar(&f.cacheFile, "cache-file", "", "Load the cache from this snapshot and save it back afterwards")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print result and counts as JSON")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "List translatable strings without translating")
	return cmd
}

func runTranslate(cmd *cobra.Command, g *globalFlags, f *translateFlags, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	input, inputName, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	contentType := f.contentType
	if contentType == "" {
		contentType = detectType(inputName, input)
	}
	if contentType != "html" && contentType != "json" {
		return fmt.Errorf("unsupported content type %q (want html or json)", contentType)
	}

	if f.dryRun {
		return runDryRun(stdout, input, contentType, f.jsonOutput)
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Language == "" {
		return errors.New("--lang (or AUTOLOCALE_LANGUAGE) is required")
	}

	logger := newLogger(stderr, g.verbose)
	opts := []pipeline.Option{pipeline.WithLogger(logger)}

	var memory *cache.InMemoryCache
	if f.cacheFile != "" {
		memory = cache.NewInMemoryCache(cfg.CacheTTL)
		opts = append(opts, pipeline.WithCache(memory))
		if _, statErr := os.Stat(f.cacheFile); statErr == nil {
			res, err := cache.NewImporter(memory).ImportFromFile(f.cacheFile)
			if err != nil {
				return fmt.Errorf("loading cache: %w", err)
			}
			logger.WithField("entries", res.Imported).Debug("cache loaded")
		}
	}

	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	start := time.Now()
	client := p.Client()
	var result *autolocale.ProcessedContent
	if contentType == "json" && f.shape != "" {
		result, err = client.ProcessWith(cmd.Context(), shapedJSON(f.shape), input, cfg.Language)
	} else {
		result, err = client.Process(cmd.Context(), input, contentType, cfg.Language)
	}
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	if memory != nil {
		meta := map[string]string{"source_lang": cfg.SourceLang, "tool": autolocale.UserAgent()}
		if err := cache.NewExporter(memory).ExportToFile(f.cacheFile, meta); err != nil {
			return fmt.Errorf("saving cache: %w", err)
		}
	}

	out := stdout
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if f.jsonOutput {
		return writeJSON(out, jsonOutput{
			Content:         result.Content,
			TargetLang:      cfg.Language,
			TotalNodes:      result.TotalNodes,
			TranslatedCount: result.TranslatedCount,
			CachedCount:     result.CachedCount,
			ElapsedMs:       elapsed.Milliseconds(),
		})
	}

	fmt.Fprint(out, result.Content)
	logger.WithFields(logrus.Fields{
		"input":      inputName,
		"nodes":      result.TotalNodes,
		"translated": result.TranslatedCount,
		"cached":     result.CachedCount,
		"elapsed":    elapsed.Round(time.Millisecond),
	}).Info("done")
	return nil
}

func readInput(stdin io.Reader, args []string) (string, string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(args[0]) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(args[0]), nil
}

func detectType(name, content string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	}
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return "json"
	}
	return "html"
}

type jsonOutput struct {
	Content         string `json:"content"`
	TargetLang      string `json:"target_lang"`
	TotalNodes      int    `json:"total_nodes"`
	TranslatedCount int    `json:"translated_count"`
	CachedCount     int    `json:"cached_count"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", autolocale.Name, autolocale.FullVersion())
			if autolocale.BuildDate != "unknown" && autolocale.BuildDate != "" {
				fmt.Fprintf(out, "  built:   %s\n", autolocale.BuildDate)
			}
		},
	}
}
