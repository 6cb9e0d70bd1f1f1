package main

import (
	"encoding/json"
	"flag"
	"io"
	"os"
	"time"

	usefetch "github.com/use-fetch/use-fetch"
	"github.com/use-fetch/use-fetch/cache"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	urlFlag            string
	methodFlag         string
	bodyFlag           string
	retriesFlag        int
	timeoutFlag        time.Duration
	noCacheFlag        bool
	policyFileFlag     string
	dbFilenameFlag     string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&urlFlag, "url", "", "URL to fetch")
	flag.StringVar(&methodFlag, "method", "GET", "HTTP method to use")
	flag.StringVar(&bodyFlag, "body", "", "Request body to send")
	flag.IntVar(&retriesFlag, "retries", usefetch.DefaultMaxRetries, "Retries after the first attempt")
	flag.DurationVar(&timeoutFlag, "timeout", usefetch.DefaultTimeout, "Per-attempt timeout")
	flag.BoolVar(&noCacheFlag, "no-cache", false, "Skip cache lookup and write")
	flag.StringVar(&policyFileFlag, "policy", "", "Policy YAML file (flags override file values)")
	flag.StringVar(&dbFilenameFlag, "db", "", "Store DB file name (use 'memory' for in-memory db, empty for map store)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stderr)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stderr
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stderr})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	if urlFlag == "" {
		flag.Usage()
		os.Exit(1)
	}

	policy := usefetch.DefaultPolicy()
	if policyFileFlag != "" {
		filePolicy, err := usefetch.PolicyFromFile(policyFileFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not read policy file")
		}
		policy = filePolicy
	}
	// flags set on the command line win over the policy file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "retries":
			policy.MaxRetries = retriesFlag
		case "timeout":
			policy.Timeout = timeoutFlag
		case "no-cache":
			policy.DisableCache = noCacheFlag
		}
	})

	// set up the store, defaulting to a plain map store
	var store cache.Store
	switch dbFilenameFlag {
	case "":
		store = cache.NewMemStore()
	case "memory":
		store = cache.NewSQLiteStore("file::memory:?cache=shared")
	default:
		store = cache.NewSQLiteStore(dbFilenameFlag)
	}

	controller := usefetch.New(usefetch.Config{
		Cache:  store,
		Logger: &log.Logger,
	})

	var body []byte
	if bodyFlag != "" {
		body = []byte(bodyFlag)
	}
	controller.Start(usefetch.Request{
		URL: urlFlag,
		Options: usefetch.Options{
			Method: methodFlag,
			Body:   body,
		},
		Policy: policy,
	})
	<-controller.Done()

	snap := controller.Snapshot()
	if snap.Err != nil {
		log.Fatal().Str("kind", string(snap.Err.Kind)).Msg(snap.Err.Message)
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap.Data); err != nil {
		log.Fatal().Err(err).Msg("Could not encode response data")
	}
}
