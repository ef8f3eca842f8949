// Package healthcheck verifies that the configured environment can run the
// rewriters: the engine works, the name lists are readable and the journal
// location is usable.
package healthcheck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/cprep/internal/config"
	"github.com/l3aro/cprep/pkg/journal"
	"github.com/l3aro/cprep/pkg/namelist"
	"github.com/l3aro/cprep/pkg/syntax"
)

// Status values reported per item.
const (
	StatusReady    = "ready"
	StatusDisabled = "disabled"
	StatusError    = "error"
)

// ItemStatus represents the health of one checked item.
type ItemStatus struct {
	Name   string
	Path   string
	Detail string
	Status string
	Error  string
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	SavedPath  string
	SavedScope string // "global" or "project"
	Engine     ItemStatus
	Functions  ItemStatus
	States     ItemStatus
	Journal    ItemStatus
}

// Items returns the checked items in display order.
func (r *HealthCheckResult) Items() []ItemStatus {
	return []ItemStatus{r.Engine, r.Functions, r.States, r.Journal}
}

// HasError reports whether any item failed.
func (r *HealthCheckResult) HasError() bool {
	for _, item := range r.Items() {
		if item.Status == StatusError {
			return true
		}
	}
	return false
}

// Check performs a health check against the given config.
// savedPath is the config file in use, empty when only defaults apply.
func Check(cfg *config.Config, savedPath string) (*HealthCheckResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &HealthCheckResult{
		SavedPath:  savedPath,
		SavedScope: scopeFromPath(savedPath),
		Engine:     checkEngine(cfg.Engine),
		Functions:  checkNameList("functions list", cfg.FunctionsList, namelist.FunctionsFile),
		States:     checkNameList("states list", cfg.StatesList, namelist.StatesFile),
		Journal:    checkJournal(cfg),
	}, nil
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		globalDir := filepath.Join(home, ".cprep")
		if strings.HasPrefix(path, globalDir) {
			return "global"
		}
	}

	return "project"
}

// probe is parsed to confirm the C grammar loads.
const probe = "int probe(void) { return 0; }\n"

func checkEngine(name string) ItemStatus {
	status := ItemStatus{Name: "engine", Detail: name}

	engine, err := syntax.ParseEngine(name)
	if err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	if engine != syntax.EngineAST {
		status.Status = StatusReady
		return status
	}

	tree, err := syntax.Parse([]byte(probe))
	if err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	defer tree.Close()

	if len(tree.FunctionDefinitions("probe")) != 1 {
		status.Status = StatusError
		status.Error = "C grammar did not find the probe function"
		return status
	}
	status.Status = StatusReady
	return status
}

// checkNameList loads a name list from its configured path, or the
// companion file next to the executable.
func checkNameList(label, configured, companion string) ItemStatus {
	status := ItemStatus{Name: label, Path: configured}

	if status.Path == "" {
		p, err := namelist.DefaultPath(companion)
		if err != nil {
			status.Status = StatusError
			status.Error = err.Error()
			return status
		}
		status.Path = p
	}

	names, err := namelist.Load(status.Path)
	if err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	status.Status = StatusReady
	status.Detail = fmt.Sprintf("%d names", len(names))
	return status
}

// checkJournal opens the journal when backups are enabled. A missing
// journal file is fine; an unreadable one is not.
func checkJournal(cfg *config.Config) ItemStatus {
	status := ItemStatus{Name: "journal", Path: cfg.JournalPath}

	if !cfg.Backup {
		status.Status = StatusDisabled
		return status
	}

	j, err := journal.Open(cfg.JournalPath, journal.WithLimit(cfg.JournalLimit))
	if err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}

	dir := filepath.Dir(cfg.JournalPath)
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		status.Status = StatusError
		status.Error = fmt.Sprintf("%s is not a directory", dir)
		return status
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}

	status.Status = StatusReady
	status.Detail = fmt.Sprintf("%d entries, limit %d", j.Len(), cfg.JournalLimit)
	return status
}
