package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phobologic/reactmod/internal/config"
	"github.com/phobologic/reactmod/internal/discover"
	"github.com/phobologic/reactmod/internal/lang"
	"github.com/phobologic/reactmod/internal/migrate"
	"github.com/phobologic/reactmod/internal/model"
	"github.com/phobologic/reactmod/internal/output"
	"github.com/phobologic/reactmod/internal/toon"
)

// rootFlags holds the flags that are not configuration settings.
type rootFlags struct {
	dry         bool
	print       bool
	diff        bool
	report      bool
	configFile  string
	verbose     bool
	showVersion bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "reactmod [flags] [path...]",
		Short: "Migrate React createClass components to ES classes",
		Long: `reactmod rewrites React.createClass declarations into ES class components
and renames the componentWillMount, componentWillReceiveProps and
componentWillUpdate hooks to their UNSAFE_ names.

Paths may be files or directories and default to the current directory.
Declarations that cannot be migrated safely are left untouched and reported.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.showVersion {
				_, _ = fmt.Fprintf(stdout, "reactmod %s\n", version)
				return nil
			}
			loader := config.NewLoader()
			if err := loader.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := loader.Load(f.configFile)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"."}
			}
			return runMigration(args, cfg, f, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringSliceP("transform", "t", migrate.Passes, "transforms to run: "+strings.Join(migrate.Passes, ", ")+" (env: REACTMOD_TRANSFORMS)")
	flags.BoolVarP(&f.dry, "dry", "d", false, "do not write files")
	flags.BoolVarP(&f.print, "print", "p", false, "print transformed files to stdout")
	flags.BoolVar(&f.diff, "diff", false, "print a diff of every changed file")
	flags.BoolVar(&f.report, "report", false, "print a TOON report of the run")
	flags.Bool("explicit-require", true, "only migrate files that import React (env: REACTMOD_EXPLICIT_REQUIRE)")
	flags.String("mixin-module-name", migrate.DefaultMixinModule, "module providing the pure-render mixin (env: REACTMOD_MIXIN_MODULE_NAME)")
	flags.Bool("flow", false, "annotate props with types inferred from propTypes (env: REACTMOD_FLOW)")
	flags.String("quote", config.QuoteSingle, "quote style for string literal types: single or double (env: REACTMOD_QUOTE)")
	flags.Bool("trailing-comma", true, "end multi-line type annotations with a comma (env: REACTMOD_TRAILING_COMMA)")
	flags.Int64("max-file-size", 0, "skip files larger than this many bytes, 0 for no limit (env: REACTMOD_MAX_FILE_SIZE)")
	flags.Int("workers", 0, "files transformed in parallel, 0 for one per CPU (env: REACTMOD_WORKERS)")
	flags.StringVar(&f.configFile, "config", "", "path to config file (default "+config.DefaultFile+" if present)")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&f.showVersion, "version", "V", false, "show version and exit")

	return cmd
}

// fileResult is the outcome of one file, collected in discovery order.
type fileResult struct {
	entry  discover.FileEntry
	before []byte
	res    *migrate.Result
	err    error
}

func runMigration(paths []string, cfg *config.Config, f rootFlags, stdout, stderr io.Writer) error {
	logger := output.NewLogger(stderr, f.verbose)

	files, err := discover.Targets(paths, nil)
	if err != nil {
		return err
	}
	files = filterBySize(files, cfg.MaxFileSize, logger)
	if len(files) == 0 {
		return errors.New("no transformable files found")
	}
	logger.Debug("discovered files", "count", len(files), "transforms", cfg.Transforms)

	results := transformConcurrent(files, cfg.Options(), cfg.Workers)

	report := &model.Report{Root: strings.Join(paths, ",")}
	summary := output.Summary{Files: len(files), Dry: f.dry}
	var writeErrs []error

	for i := range results {
		r := &results[i]
		fr := model.FileReport{Path: r.entry.Path, Language: r.entry.Language}
		if r.err != nil {
			logger.Error("transform failed", "file", r.entry.Path, "err", r.err)
			fr.Err = r.err.Error()
			summary.Failed++
			report.Files = append(report.Files, fr)
			continue
		}

		for _, d := range r.res.Skipped {
			logger.Warn(d.String())
		}
		for _, name := range r.res.Migrated {
			logger.Debug("migrated", "file", r.entry.Path, "component", output.StyleNoun.Render(name))
		}
		fr.Migrated = len(r.res.Migrated)
		fr.Skipped = len(r.res.Skipped)
		fr.Renamed = r.res.Renamed
		report.Files = append(report.Files, fr)
		report.Diagnostics = append(report.Diagnostics, r.res.Skipped...)
		summary.Migrated += fr.Migrated
		summary.Skipped += fr.Skipped
		summary.Renamed += fr.Renamed

		if !r.res.Changed() {
			continue
		}
		summary.Changed++

		if f.diff {
			_, _ = fmt.Fprint(stdout, output.RenderDiff(r.entry.Path, string(r.before), string(r.res.Output)))
		}
		if f.print {
			_, _ = stdout.Write(r.res.Output)
		}
		if f.dry {
			continue
		}
		if err := writeFile(r.entry.Path, r.res.Output); err != nil {
			logger.Error("write failed", "file", r.entry.Path, "err", err)
			writeErrs = append(writeErrs, err)
		}
	}

	if f.report {
		_, _ = fmt.Fprintln(stdout, toon.Encode(report))
	}
	_, _ = fmt.Fprintln(stderr, output.FormatSummary(summary))

	return errors.Join(writeErrs...)
}

// writeFile replaces path, keeping its permissions.
func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func filterBySize(files []discover.FileEntry, maxSize int64, logger *log.Logger) []discover.FileEntry {
	if maxSize <= 0 {
		return files
	}
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(f.Path)
		if err != nil {
			kept = append(kept, f) // reading it reports the error
			continue
		}
		if fi.Size() > maxSize {
			logger.Warn("file skipped", "file", f.Path, "size", fi.Size(), "limit", maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// transformConcurrent runs the engine over files with a pool of workers and
// returns the results in the order of files. Each worker owns one engine per
// language since an engine's parser cannot be shared.
func transformConcurrent(files []discover.FileEntry, opts migrate.Options, workers int) []fileResult {
	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	results := make([]fileResult, len(files))
	work := make(chan int, len(files))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			engines := make(map[string]*migrate.Engine)
			defer func() {
				for _, e := range engines {
					e.Close()
				}
			}()

			for idx := range work {
				entry := files[idx]
				results[idx].entry = entry

				e, ok := engines[entry.Language]
				if !ok {
					l := lang.Languages[entry.Language]
					if l == nil {
						results[idx].err = fmt.Errorf("unsupported language %q", entry.Language)
						continue
					}
					var err error
					e, err = migrate.New(l, opts)
					if err != nil {
						results[idx].err = err
						continue
					}
					engines[entry.Language] = e
				}

				source, err := os.ReadFile(entry.Path)
				if err != nil {
					results[idx].err = fmt.Errorf("reading %s: %w", entry.Path, err)
					continue
				}
				results[idx].before = source
				results[idx].res, results[idx].err = e.Transform(entry.Path, source)
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)
	wg.Wait()

	return results
}
