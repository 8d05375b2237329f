package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/hesusruiz/mew/config"
	"github.com/hesusruiz/mew/mew"
	"github.com/hesusruiz/mew/pretty"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// watchInterval is how often the input is checked for changes
const watchInterval = 1 * time.Second

// Renderer converts source files to HTML files with a given configuration
type Renderer struct {
	cfg    *config.Config
	opts   []mew.Option
	log    *zap.SugaredLogger
	dryrun bool
}

// NewRenderer prepares the converter options from the configuration
func NewRenderer(cfg *config.Config, logger *zap.SugaredLogger, dryrun bool) (*Renderer, error) {
	opts, err := cfg.Options(logger)
	if err != nil {
		return nil, err
	}
	return &Renderer{cfg: cfg, opts: opts, log: logger, dryrun: dryrun}, nil
}

// RenderSource converts the raw bytes of one document into HTML.
// The front matter of the document, if any, overrides the configuration.
func (r *Renderer) RenderSource(raw []byte) (string, error) {
	src, err := config.Decode(raw, r.cfg.Encoding)
	if err != nil {
		return "", err
	}

	fm, body, err := config.SplitFrontMatter(src)
	if err != nil {
		return "", err
	}

	opts := append(append([]mew.Option{}, r.opts...), fm.Options()...)
	html, err := mew.Render(body, opts...)
	if err != nil {
		return "", err
	}

	if fm.PrettyOr(r.cfg.Pretty) {
		return pretty.Format(html, pretty.WithIndent(r.cfg.Indent))
	}
	return html, nil
}

// RenderFile converts inputFileName and writes the result to outputFileName
func (r *Renderer) RenderFile(inputFileName, outputFileName string) error {
	raw, err := os.ReadFile(inputFileName)
	if err != nil {
		return err
	}

	html, err := r.RenderSource(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", inputFileName, err)
	}

	// Do nothing if flag dryrun was specified
	if r.dryrun {
		r.log.Debugw("dry run, output not written", "input", inputFileName, "bytes", len(html))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(outputFileName), 0775); err != nil {
		return err
	}
	if err := os.WriteFile(outputFileName, []byte(html), 0664); err != nil {
		return err
	}

	r.log.Debugw("written", "input", inputFileName, "output", outputFileName)
	return nil
}

// RenderDir converts every regular, non-hidden file of inputDir into
// outputDir/<name>.html and returns the number of files written.
func (r *Renderer) RenderDir(inputDir, outputDir string) (int, error) {
	files, err := sourceFiles(inputDir)
	if err != nil {
		return 0, err
	}

	for _, f := range files {
		if err := r.RenderFile(f, htmlFileName(f, outputDir)); err != nil {
			return 0, err
		}
	}

	return len(files), nil
}

// sourceFiles lists the regular files of dir that are not hidden
func sourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// htmlFileName is the name of the output file for a source file: the same
// base name with the extension .html, in outputDir
func htmlFileName(inputFileName, outputDir string) string {
	base := filepath.Base(inputFileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+".html")
}

// lastModified returns the newest modification time of the input,
// looking at every source file if it is a directory
func lastModified(input string) (time.Time, error) {
	info, err := os.Stat(input)
	if err != nil {
		return time.Time{}, err
	}
	if !info.IsDir() {
		return info.ModTime(), nil
	}

	latest := info.ModTime()
	files, err := sourceFiles(input)
	if err != nil {
		return time.Time{}, err
	}
	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			return time.Time{}, err
		}
		if fi.ModTime().After(latest) {
			latest = fi.ModTime()
		}
	}
	return latest, nil
}

// processWatch checks periodically if the input has been modified, and if so
// it calls build. It returns when the context is done.
// Errors from build are logged, so a typo does not stop the watch.
func processWatch(ctx context.Context, input string, interval time.Duration, build func() error, sugar *zap.SugaredLogger) error {

	var oldTimestamp time.Time

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {

		// Get the modified timestamp of the input
		currentTimestamp, err := lastModified(input)
		if err != nil {
			return err
		}

		// If current modified timestamp is newer than the previous timestamp, process the input
		if oldTimestamp.Before(currentTimestamp) {
			oldTimestamp = currentTimestamp
			sugar.Infow("processing", "input", input)
			if err := build(); err != nil {
				sugar.Errorw("processing failed", "input", input, "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// newLogger sets up the logging system
func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var z *zap.Logger
	var err error

	if debug {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return z.Sugar(), nil
}

// process is the main entry point of the program
func process(c *cli.Context) error {

	sugar, err := newLogger(c.Bool("debug"))
	if err != nil {
		return err
	}
	defer sugar.Sync()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(c.String("config"), cwd, sugar)
	if err != nil {
		return err
	}
	if c.IsSet("pretty") {
		cfg.Pretty = c.Bool("pretty")
	}

	// Get the input, a file or a directory
	input := cfg.Entry
	if c.Args().Present() {
		input = c.Args().First()
	} else {
		fmt.Fprintf(c.App.Writer, "no input provided, using %q\n", input)
	}

	info, err := os.Stat(input)
	if err != nil {
		return err
	}

	dryrun := c.Bool("dryrun")
	r, err := NewRenderer(cfg, sugar, dryrun)
	if err != nil {
		return err
	}

	// Standard output mode renders a single file and does not write anything
	if c.Bool("stdout") {
		if info.IsDir() {
			return fmt.Errorf("--stdout needs an input file, %s is a directory", input)
		}
		raw, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		html, err := r.RenderSource(raw)
		if err != nil {
			return err
		}
		if c.Bool("color") || isTerminal(c.App.Writer) {
			return writeHighlighted(c.App.Writer, html, c.String("style"))
		}
		_, err = io.WriteString(c.App.Writer, html)
		return err
	}

	var build func() error
	if info.IsDir() {
		outputDir := cfg.Output
		if c.IsSet("output") {
			outputDir = c.String("output")
		}
		fmt.Fprintf(c.App.Writer, "processing directory %v into %v\n", input, outputDir)
		build = func() error {
			n, err := r.RenderDir(input, outputDir)
			if err != nil {
				return err
			}
			sugar.Infow("directory processed", "input", input, "files", n)
			return nil
		}
	} else {
		outputFileName := c.String("output")
		if len(outputFileName) == 0 {
			outputFileName = htmlFileName(input, cfg.Output)
		}
		if !dryrun {
			fmt.Fprintf(c.App.Writer, "processing %v and generating %v\n", input, outputFileName)
		} else {
			fmt.Fprintf(c.App.Writer, "dry run: processing %v without writing output\n", input)
		}
		build = func() error {
			return r.RenderFile(input, outputFileName)
		}
	}

	// This is useful for development.
	// If the user specified to watch, process the input every time it is modified
	if c.Bool("watch") {
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
		defer stop()
		return processWatch(ctx, input, watchInterval, build, sugar)
	}

	return build()
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "mew",
		Version:  "v0.1.0",
		Compiled: time.Now(),
		Authors: []*cli.Author{
			{
				Name:  "Jesus Ruiz",
				Email: "hesus.ruiz@gmail.com",
			},
		},
		Usage:     "convert mew documents to HTML",
		UsageText: "mew [options] [INPUT] (default input is the entry of the config file, or ./src)",
		Action:    process,
		ArgsUsage: "INPUT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "read the configuration from `FILE` (default is mew.yaml, mew.yml or mew.toml in the current or a parent directory)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write html to `PATH`, a file for a file input or a directory for a directory input",
			},
			&cli.BoolFlag{
				Name:    "pretty",
				Aliases: []string{"p"},
				Usage:   "indent the generated HTML",
			},
			&cli.BoolFlag{
				Name:    "dryrun",
				Aliases: []string{"n"},
				Usage:   "do not generate output files, just process the input",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "watch the input for changes",
			},
			&cli.BoolFlag{
				Name:  "stdout",
				Usage: "write the HTML of a single file to standard output",
			},
			&cli.BoolFlag{
				Name:  "color",
				Usage: "highlight the HTML written with --stdout even if it is not a terminal",
			},
			&cli.StringFlag{
				Name:  "style",
				Value: defaultStyle,
				Usage: "chroma `STYLE` used to highlight the HTML",
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
