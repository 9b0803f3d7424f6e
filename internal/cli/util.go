package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skelly-dev/cnote/internal/config"
	"github.com/skelly-dev/cnote/internal/extract"
	"github.com/skelly-dev/cnote/internal/ignore"
	"github.com/skelly-dev/cnote/internal/lexer"
	"github.com/skelly-dev/cnote/internal/logging"
	"github.com/skelly-dev/cnote/internal/output"
	"github.com/skelly-dev/cnote/internal/registry"
	"github.com/skelly-dev/cnote/internal/scan"
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// runtimeEnv is the per-invocation state shared by commands.
type runtimeEnv struct {
	cfg      *config.Config
	dialects []lexer.Dialect
	logger   *zap.Logger
	workDir  string
	out      io.Writer
	errOut   io.Writer
	printer  *output.Printer
	stderr   *output.Printer
}

func loadEnv(cmd *cobra.Command) (*runtimeEnv, error) {
	workDir, err := resolveWorkingDirectory()
	if err != nil {
		return nil, err
	}

	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		configPath = filepath.Join(workDir, config.FileName)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	colorMode, err := OptionalStringFlag(cmd, "color")
	if err != nil {
		return nil, err
	}
	if colorMode != "" {
		cfg.Color = colorMode
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	dialects, err := cfg.Dialects()
	if err != nil {
		return nil, err
	}

	verbose, err := OptionalBoolFlag(cmd, "verbose")
	if err != nil {
		return nil, err
	}

	env := &runtimeEnv{cfg: cfg, dialects: dialects, workDir: workDir, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	env.logger, err = logging.New(cfg.LogLevel, verbose, env.errOut)
	if err != nil {
		return nil, err
	}

	outColor, err := output.UseColor(cfg.Color, env.out)
	if err != nil {
		return nil, err
	}
	errColor, err := output.UseColor(cfg.Color, env.errOut)
	if err != nil {
		return nil, err
	}
	env.printer = output.NewPrinter(env.out, outColor)
	env.stderr = output.NewPrinter(env.errOut, errColor)
	return env, nil
}

func (env *runtimeEnv) close() {
	_ = env.logger.Sync()
}

// indexRequest describes one scan driven from the command line.
type indexRequest struct {
	paths     []string
	filter    registry.Filter
	recursive bool
	progress  bool
}

func (env *runtimeEnv) index(req indexRequest) (*scan.Result, error) {
	paths := req.paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	matcher, err := env.matcher()
	if err != nil {
		return nil, err
	}

	opts := scan.Options{
		Recursive: req.recursive,
		Filter:    req.filter,
		Ignore:    matcher,
		Logger:    env.logger,
	}
	var progress *parseProgressReporter
	if req.progress {
		progress = newParseProgressReporter(env.errOut, "indexing")
		opts.Progress = progress.Update
	}

	res := scan.New(env.extractor(), opts).Run(paths)
	if progress != nil {
		progress.Done(res.Files)
	}
	return res, nil
}

// extractor reads file heads with the configured read limit and comment
// styles.
func (env *runtimeEnv) extractor() *extract.Extractor {
	return extract.New(nil,
		extract.WithReadLimit(env.cfg.ReadLimit),
		extract.WithDialects(env.dialects))
}

// matcher combines .cnoteignore in the working directory with the
// configured ignore rules.
func (env *runtimeEnv) matcher() (*ignore.Matcher, error) {
	rules, err := ignore.LoadRules(env.workDir)
	if err != nil {
		return nil, err
	}
	m := ignore.NewMatcher(append(rules, env.cfg.Ignore...))
	env.logger.Debug("loaded ignore rules", zap.Int("rules", m.Len()))
	return m, nil
}

// recursive resolves --recursive against the config default.
func (env *runtimeEnv) recursive(cmd *cobra.Command) (bool, error) {
	if !flagChanged(cmd, "recursive") {
		return env.cfg.Recursive, nil
	}
	return OptionalBoolFlag(cmd, "recursive")
}

// displayPath returns a PathFunc honoring --relative.
func (env *runtimeEnv) displayPath(cmd *cobra.Command) (output.PathFunc, error) {
	relative := true
	if cmd != nil && cmd.Flags().Lookup("relative") != nil {
		var err error
		if relative, err = cmd.Flags().GetBool("relative"); err != nil {
			return nil, fmt.Errorf("failed to read --relative flag: %w", err)
		}
	}
	if !relative {
		return nil, nil
	}
	return func(path string) string {
		rel, err := filepath.Rel(env.workDir, path)
		if err != nil {
			return path
		}
		return rel
	}, nil
}
