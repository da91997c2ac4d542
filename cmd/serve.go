package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PolarWolf314/dotenvpull/internal/configs"
	logger "github.com/PolarWolf314/dotenvpull/internal/logging"
	"github.com/PolarWolf314/dotenvpull/internal/server"
	"github.com/PolarWolf314/dotenvpull/internal/store"
	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	serveAddr        string
	serveStore       string
	serveDataDir     string
	serveMongoURI    string
	serveMongoDB     string
	serveShareTTL    time.Duration
	serveConfigFile  string
	serveEnvFile     string
	servePrintConfig bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", configs.DefaultServerAddr, "listen address (env "+configs.EnvServerURL+")")
	serveCmd.Flags().StringVar(&serveStore, "store", string(store.TypeFile), "storage backend: memory, file or mongo (env "+configs.EnvStore+")")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", configs.DefaultDataDir, "directory of the file store (env "+configs.EnvDataDir+")")
	serveCmd.Flags().StringVar(&serveMongoURI, "mongo-uri", "", "MongoDB connection string (env "+configs.EnvDatabaseURL+")")
	serveCmd.Flags().StringVar(&serveMongoDB, "mongo-db", "", "MongoDB database name (env "+configs.EnvDatabaseName+")")
	serveCmd.Flags().DurationVar(&serveShareTTL, "share-ttl", 0, "expire unfetched shares after this long, 0 keeps them (env "+configs.EnvShareTTL+")")
	serveCmd.Flags().StringVar(&serveConfigFile, "config-file", "", "TOML file with server settings")
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", "", ".env file loaded into the environment before reading settings")
	serveCmd.Flags().BoolVar(&servePrintConfig, "print-config", false, "print the resolved settings as TOML and exit")
}

// resetServeCommandState resets the serve command's global state for testing.
func resetServeCommandState() {
	serveAddr = configs.DefaultServerAddr
	serveStore = string(store.TypeFile)
	serveDataDir = configs.DefaultDataDir
	serveMongoURI = ""
	serveMongoDB = ""
	serveShareTTL = 0
	serveConfigFile = ""
	serveEnvFile = ""
	servePrintConfig = false
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dotenvpull server",
	Long: `Serves the dotenvpull HTTP API. The server only ever holds ciphertext.

Settings are read in increasing precedence from defaults, the --config-file
TOML file, the environment (optionally seeded from --env-file) and flags.
Setting DATABASE_URL selects the mongo store unless DOTENVPULL_STORE says
otherwise.

Examples:
  dotenvpull serve
  dotenvpull serve --addr :8080 --store memory
  DATABASE_URL=mongodb://localhost:27017 DATABASE_NAME=dotenvpull dotenvpull serve
  dotenvpull serve --config-file server.toml --print-config`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting serve command")

	cfg, err := resolveServerConfig(cmd.Flags())
	if err != nil {
		Logger.Errorf("%v", err)
		return reported(err)
	}

	if servePrintConfig {
		return cfg.WriteTOML(cmd.OutOrStdout())
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	Logger.Debugf("Opening %s store", cfg.StoreType)
	st, err := store.NewStore(ctx, cfg.StoreConfig())
	if err != nil {
		Logger.Errorf("Failed to open the %s store: %v", cfg.StoreType, err)
		return reported(err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			Logger.Warnf("Failed to close the store: %v", err)
		}
	}()

	srvLog := logger.Logger{
		Verbose: true,
		Debug:   debug,
		Out:     os.Stderr,
		Err:     os.Stderr,
	}
	srvLog.Infof("Serving %s with the %s store", ui.Path.Sprint("http://"+cfg.Addr), cfg.StoreType)
	if store.Type(cfg.StoreType) == store.TypeMemory {
		srvLog.WarnfAlways("The memory store keeps records only until the server stops")
	}

	if err := server.New(st, srvLog).ListenAndServe(ctx, cfg); err != nil {
		Logger.Errorf("Server stopped: %v", err)
		return reported(err)
	}
	return nil
}

// resolveServerConfig layers defaults, the config file, the environment and
// the flags that were set explicitly.
func resolveServerConfig(flags *pflag.FlagSet) (configs.ServerConfig, error) {
	cfg := configs.DefaultServerConfig()

	if serveConfigFile != "" {
		Logger.Debugf("Reading server settings from %s", serveConfigFile)
		if err := cfg.ApplyFile(serveConfigFile); err != nil {
			return cfg, err
		}
	}

	if serveEnvFile != "" {
		Logger.Debugf("Loading environment from %s", serveEnvFile)
		if err := configs.LoadEnvFile(serveEnvFile); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = serveAddr
		case "store":
			cfg.StoreType = serveStore
		case "data-dir":
			cfg.DataDir = serveDataDir
		case "mongo-uri":
			cfg.MongoURI = serveMongoURI
		case "mongo-db":
			cfg.MongoDatabase = serveMongoDB
		case "share-ttl":
			cfg.ShareTTL = serveShareTTL
		}
	})

	return cfg, cfg.Validate()
}
