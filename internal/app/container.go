// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/infra/config"
	"github.com/runoshun/habit/internal/infra/gitstore"
	"github.com/runoshun/habit/internal/infra/idgen"
	"github.com/runoshun/habit/internal/infra/jsonstore"
	"github.com/runoshun/habit/internal/infra/locker"
	"github.com/runoshun/habit/internal/infra/logging"
	"github.com/runoshun/habit/internal/infra/sqlitestore"
	"github.com/runoshun/habit/internal/usecase"
)

// EnvHome overrides the data directory when --data-dir is not given.
const EnvHome = "HABIT_HOME"

// Config holds the application paths.
type Config struct {
	DataDir string // Path to the habit data directory
}

// ResolveDataDir picks the data directory: the flag value, then $HABIT_HOME,
// then $XDG_DATA_HOME/habit, then ~/.local/share/habit.
func ResolveDataDir(flagValue string) (string, error) {
	if flagValue != "" {
		return filepath.Abs(flagValue)
	}
	if home := os.Getenv(EnvHome); home != "" {
		return filepath.Abs(home)
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return domain.DefaultDataDir(dataHome), nil
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store         domain.Store
	Locker        domain.TaskLocker
	IDs           domain.IDGenerator
	Clock         domain.Clock
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	Logger        domain.Logger

	// Pointer fields
	AppConfig *domain.Config
	Location  *time.Location
	Slog      *slog.Logger // Process-level logger (stderr)

	closers []io.Closer

	// Configuration
	Config Config
}

// New creates a new Container for the given data directory.
func New(dataDir string) (*Container, error) {
	cfg := Config{DataDir: dataDir}

	configLoader := config.NewLoader(dataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	loc, err := appConfig.Rollover.Location()
	if err != nil {
		return nil, err
	}

	level, err := logging.LookupLevel(appConfig.Log.Level)
	if err != nil {
		return nil, err
	}
	slogger := logging.NewProcessLogger(os.Stderr, level)

	store, err := OpenStore(appConfig.Store.Backend, dataDir, appConfig.Store.Namespace)
	if err != nil {
		return nil, err
	}

	fileLogger := logging.New(dataDir, level, logging.WithMirror(slogger))

	c := &Container{
		Store:         store,
		Locker:        NewLocker(appConfig.Store.Backend, dataDir),
		IDs:           idgen.UUID{},
		Clock:         domain.RealClock{},
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(dataDir),
		Logger:        fileLogger,
		AppConfig:     appConfig,
		Location:      loc,
		Slog:          slogger,
		Config:        cfg,
	}
	c.closers = append(c.closers, fileLogger)
	if closer, ok := store.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, store domain.Store, clock domain.Clock, appConfig *domain.Config) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	return &Container{
		Store:     store,
		Locker:    locker.NewKeyedMutex(),
		IDs:       idgen.UUID{},
		Clock:     clock,
		AppConfig: appConfig,
		Location:  time.UTC,
		Slog:      logging.NewProcessLogger(io.Discard, slog.LevelError),
		Config:    cfg,
	}
}

// OpenStore opens the storage backend by name.
func OpenStore(backend, dataDir, namespace string) (domain.Store, error) {
	switch backend {
	case domain.StoreJSON, "":
		return jsonstore.New(domain.TasksStorePath(dataDir)), nil
	case domain.StoreSQLite:
		store, err := sqlitestore.Open(context.Background(), domain.SQLiteStorePath(dataDir))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case domain.StoreGit:
		store, err := gitstore.Open(domain.GitStorePath(dataDir), namespace)
		if err != nil {
			return nil, fmt.Errorf("open git store: %w", err)
		}
		return store, nil
	default:
		return nil, domain.ValidateStoreBackend(backend)
	}
}

// NewLocker returns the task locker matching the backend. The JSON store is
// shared between processes through one file, so it locks with flock.
func NewLocker(backend, dataDir string) domain.TaskLocker {
	if backend == domain.StoreJSON || backend == "" {
		return locker.NewFileLocker(domain.LocksDir(dataDir))
	}
	return locker.NewKeyedMutex()
}

// Close releases the store and log files.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i].Close())
	}
	return errors.Join(errs...)
}

// Strategy returns the configured rollover strategy.
func (c *Container) Strategy() domain.RolloverStrategy {
	return c.AppConfig.Rollover.Strategy
}

// UseCase factory methods

// InitRepoUseCase returns a new InitRepo use case.
func (c *Container) InitRepoUseCase() *usecase.InitRepo {
	return usecase.NewInitRepo(c.Store)
}

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Store, c.Clock, c.Location, c.Logger)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Store, c.Store, c.Clock, c.Location)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Store, c.Store, c.Clock, c.Location)
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() *usecase.EditTask {
	return usecase.NewEditTask(c.Store, c.Locker, c.Clock, c.Logger)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Store, c.Locker, c.Logger)
}

// CompleteTaskUseCase returns a new CompleteTask use case.
func (c *Container) CompleteTaskUseCase() *usecase.CompleteTask {
	return usecase.NewCompleteTask(c.Store, c.Store, c.Locker, c.IDs, c.Strategy(), c.Clock, c.Location, c.Logger)
}

// ReactivateTaskUseCase returns a new ReactivateTask use case.
func (c *Container) ReactivateTaskUseCase() *usecase.ReactivateTask {
	return usecase.NewReactivateTask(c.Store, c.Locker, c.Clock, c.Logger)
}

// ProcessRolloverUseCase returns a new ProcessRollover use case.
func (c *Container) ProcessRolloverUseCase() *usecase.ProcessRollover {
	return usecase.NewProcessRollover(c.Store, c.Store, c.Locker, c.Strategy(), c.AppConfig.Rollover.Workers, c.Clock, c.Location, c.Logger)
}

// ShowStatisticsUseCase returns a new ShowStatistics use case.
func (c *Container) ShowStatisticsUseCase() *usecase.ShowStatistics {
	return usecase.NewShowStatistics(c.Store, c.Store, c.Clock, c.Location)
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.Store, c.Config.DataDir)
}

// MigrateStoreUseCase returns a new MigrateStore use case from the current
// store to dest.
func (c *Container) MigrateStoreUseCase(dest domain.Store) *usecase.MigrateStore {
	return usecase.NewMigrateStore(c.Store, dest, c.Logger)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.AppConfig)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
