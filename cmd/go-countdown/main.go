package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tartampluch/go-countdown/internal/calendar"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/details"
	"github.com/tartampluch/go-countdown/internal/encyclopedia"
	"github.com/tartampluch/go-countdown/internal/engine"
	"github.com/tartampluch/go-countdown/internal/greetings"
	"github.com/tartampluch/go-countdown/internal/logging"
	"github.com/tartampluch/go-countdown/internal/region"
	"github.com/tartampluch/go-countdown/internal/server"
	"github.com/tartampluch/go-countdown/internal/supervisor"
	"github.com/tartampluch/go-countdown/internal/upstream"
	"github.com/tartampluch/go-countdown/internal/videosearch"
	"golang.org/x/time/rate"
)

// main is the application entry point.
// It delegates execution to runMain so deferred calls (like closing the log
// file) run before the process terminates; os.Exit() does not run defers.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	configPath := flag.String(config.FlagConfig, "", config.FlagDescConfig)
	flag.Parse()

	if *showVersion {
		printVersion(os.Stdout)
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Configuration
	// -------------------------------------------------------------------------
	// .env only seeds the environment; real variables win.
	dotEnvErr := godotenv.Load(config.DotEnvFile)

	settings, usedPath, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.ErrConfigLoad, err)
		return config.ExitCodeError
	}
	if *debugMode {
		settings.Logging.Level = "debug"
	}

	// -------------------------------------------------------------------------
	// 3. Logging Initialization
	// -------------------------------------------------------------------------
	logger, logCloser := setupLogging(settings.Logging, *debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	if dotEnvErr != nil && !errors.Is(dotEnvErr, os.ErrNotExist) {
		slog.Warn(config.MsgDotEnvMissing, config.LogKeyComponent, config.CompConfig, config.LogKeyError, dotEnvErr)
	}
	slog.Info(config.MsgConfigLoaded,
		config.LogKeyComponent, config.CompConfig,
		config.LogKeyConfig, usedPath,
		config.LogKeyAddr, settings.Server.Addr(),
	)

	// -------------------------------------------------------------------------
	// 4. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 5. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, settings, logger); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the dependencies and blocks on the supervisor tree until ctx is cancelled.
func run(ctx context.Context, settings *config.Settings, logger *slog.Logger) error {
	var sources []region.Source
	if settings.Regions.File != "" {
		sources = append(sources, region.FileSource{Path: settings.Regions.File})
	}
	sources = append(sources, region.EmbeddedSource{}, region.BuiltinSource{})

	catalog, err := region.Load(ctx, sources...)
	if err != nil {
		return err
	}

	clock := engine.RealClock()
	countdown := engine.New(catalog, clock)
	translator := greetings.New()

	// Dependency Injection.
	wiki := encyclopedia.New(
		upstream.NewHTTPFetcher(config.CompEncyclopedia, settings.Encyclopedia.Timeout,
			rate.NewLimiter(rate.Limit(settings.Encyclopedia.RatePerSecond), settings.Encyclopedia.Burst)),
		settings.Encyclopedia.RESTBase,
		settings.Encyclopedia.ActionBase,
	)
	search := videosearch.New(
		upstream.NewHTTPFetcher(config.CompVideoSearch, settings.Search.Timeout, nil),
		videosearch.DefaultCredentials(settings.Search.APIKey),
		settings.Search.BaseURL,
	)

	feed := calendar.NewFeed(server.LanguageSelector(translator))
	refresher := &calendar.Refresher{
		Generator:  &calendar.Generator{Regions: catalog.All(), AlarmTrigger: settings.Calendar.AlarmTrigger},
		Feed:       feed,
		Translator: translator,
		Clock:      clock,
		Interval:   settings.Calendar.Refresh,
	}

	srv := server.New(server.Options{
		Settings:  settings.Server,
		Regions:   catalog.All(),
		Countdown: countdown,
		Details: &details.Service{
			Regions:      catalog,
			Encyclopedia: wiki,
			Timeout:      config.EnrichTimeout,
		},
		Search:         search,
		Calendar:       feed,
		Translator:     translator,
		StreamInterval: config.TickInterval,
	})

	tree := supervisor.NewTree(logger)
	tree.AddAPI(&supervisor.HTTPService{Server: srv})
	tree.AddBackground(refresher)

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", config.ErrSupervisor, err)
	}
	return nil
}

// printVersion outputs the build information to w.
func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyDate, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs the default logger. Logs always go to stdout and, when
// configured, to a file truncated at startup.
func setupLogging(s config.LoggingSettings, debugMode bool) (*slog.Logger, io.Closer) {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if s.File != "" {
		f, err := openLogFile(s.File)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, s.File, err)
		}
	}

	logger := logging.Setup(logging.Options{
		Level:  s.Level,
		Format: s.Format,
		Caller: debugMode,
		Output: io.MultiWriter(writers...),
	})

	if logFile == nil {
		return logger, nil
	}
	return logger, logFile
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	// O_TRUNC resets logs on restart to prevent indefinite growth.
	return os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
}
