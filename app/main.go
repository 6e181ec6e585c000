package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/nite/app/server"
	"github.com/umputun/nite/app/store"
)

var opts struct {
	DB        string `short:"d" long:"db" env:"NITE_DB" default:"nite.db" description:"database URL (sqlite file, postgres://... or memory)"`
	CacheSize int    `long:"cache-size" env:"NITE_CACHE_SIZE" default:"16" description:"max cached keys, 0 disables the cache"`
	Page      string `short:"p" long:"page" env:"NITE_PAGE" description:"page markup file, embedded page if not set"`

	Server struct {
		Address         string        `long:"address" env:"ADDRESS" default:":8080" description:"server listen address"`
		ReadTimeout     time.Duration `long:"read-timeout" env:"READ_TIMEOUT" default:"5s" description:"read timeout"`
		WriteTimeout    time.Duration `long:"write-timeout" env:"WRITE_TIMEOUT" default:"30s" description:"write timeout"`
		IdleTimeout     time.Duration `long:"idle-timeout" env:"IDLE_TIMEOUT" default:"60s" description:"idle timeout"`
		ShutdownTimeout time.Duration `long:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" default:"5s" description:"graceful shutdown timeout"`
		BaseURL         string        `long:"base-url" env:"BASE_URL" description:"base URL path for reverse proxy (e.g., /nite)"`
	} `group:"server" namespace:"server" env-namespace:"NITE_SERVER"`

	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `long:"version" description:"show version and exit"`
}

var revision = "unknown"

func main() {
	fmt.Printf("nite %s\n", revision)

	p := flags.NewParser(&opts, flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			p.WriteHelp(os.Stderr)
			os.Exit(2)
		}
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	if opts.Version {
		os.Exit(0)
	}

	setupLogs(opts.Debug)

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	signals(cancel)

	if err := run(ctx); err != nil {
		log.Printf("[ERROR] failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	baseURL, err := validateBaseURL(opts.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	var markup []byte
	if opts.Page != "" {
		if markup, err = os.ReadFile(opts.Page); err != nil {
			return fmt.Errorf("failed to read page markup: %w", err)
		}
	}

	kvStore, err := openStore(opts.DB, opts.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer kvStore.Close()

	srv, err := server.New(kvStore, serverConfig(baseURL, markup))
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	log.Printf("[INFO] starting nite server on %s", opts.Server.Address)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// serverConfig maps the server options group to server.Config.
func serverConfig(baseURL string, markup []byte) server.Config {
	return server.Config{
		Address:         opts.Server.Address,
		ReadTimeout:     opts.Server.ReadTimeout,
		WriteTimeout:    opts.Server.WriteTimeout,
		IdleTimeout:     opts.Server.IdleTimeout,
		ShutdownTimeout: opts.Server.ShutdownTimeout,
		Version:         revision,
		BaseURL:         baseURL,
		Markup:          markup,
	}
}

// openStore makes the preference store for dbURL, "memory" keeps everything in process.
// cacheSize > 0 puts a loading cache in front of it.
func openStore(dbURL string, cacheSize int) (store.Interface, error) {
	var st store.Interface
	if dbURL == "memory" {
		log.Printf("[WARN] using in-memory store, preference won't survive restart")
		st = store.NewMemory()
	} else {
		dbStore, err := store.New(dbURL)
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by caller
		}
		st = dbStore
	}

	if cacheSize <= 0 {
		return st, nil
	}
	cached, err := store.NewCached(st, cacheSize)
	if err != nil {
		_ = st.Close()
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	return cached, nil
}

// validateBaseURL normalizes base URL, it must start with a slash and has no trailing one.
func validateBaseURL(u string) (string, error) {
	u = strings.TrimRight(u, "/")
	if u == "" {
		return "", nil
	}
	if !strings.HasPrefix(u, "/") {
		return "", fmt.Errorf("base URL %q must start with /", u)
	}
	return u, nil
}

func setupLogs(debug bool) io.Writer {
	log.Setup(log.Msec)
	if debug {
		log.Setup(log.Debug, log.CallerFunc, log.CallerPkg, log.CallerFile)
	}
	return os.Stdout
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			switch sig {
			case syscall.SIGQUIT:
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
			case syscall.SIGTERM, syscall.SIGINT:
				cancel()
			}
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
}
