package domain

import (
	"fmt"
	"path/filepath"
)

// TaskLogPath returns the path to the task log file.
func TaskLogPath(dataDir string, taskID int) string {
	return filepath.Join(dataDir, "logs", fmt.Sprintf("task-%d.log", taskID))
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "habit.log")
}

// TasksStorePath returns the path to the tasks.json file.
func TasksStorePath(dataDir string) string {
	return filepath.Join(dataDir, "tasks.json")
}

// SQLiteStorePath returns the path to the SQLite database.
func SQLiteStorePath(dataDir string) string {
	return filepath.Join(dataDir, "habit.db")
}

// GitStorePath returns the path to the repository used by the git backend.
func GitStorePath(dataDir string) string {
	return filepath.Join(dataDir, "repo")
}

// LocksDir returns the directory holding per-task lock files.
func LocksDir(dataDir string) string {
	return filepath.Join(dataDir, "locks")
}

// RepoConfigPath returns the data directory config path.
func RepoConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFileName)
}
