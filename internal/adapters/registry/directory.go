package registry

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eleven-am/orchestra/internal/domain"
	"github.com/eleven-am/orchestra/internal/xjson"
)

// LoadDirectory scans dir for <node>/config.json descriptors and registers
// every valid one. A directory without a descriptor, or with a broken one,
// is logged and skipped rather than failing discovery; a descriptor whose
// name field is empty inherits the directory name.
func LoadDirectory(adapter *Adapter, dir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "schema-registry", "nodes_dir", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.NewDefinitionError("cannot read nodes directory "+dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		configPath := filepath.Join(dir, entry.Name(), "config.json")
		data, err := os.ReadFile(configPath)
		if err != nil {
			logger.Warn("node directory has no readable descriptor",
				"node_name", entry.Name(),
				"error", err.Error(),
			)
			continue
		}

		var schema domain.NodeSchema
		if err := xjson.Unmarshal(data, &schema); err != nil {
			logger.Warn("node descriptor is not valid JSON",
				"node_name", entry.Name(),
				"error", err.Error(),
			)
			continue
		}

		if schema.Name == "" {
			schema.Name = entry.Name()
		}

		if err := adapter.Register(&schema); err != nil {
			logger.Warn("node descriptor rejected",
				"node_name", schema.Name,
				"error", err.Error(),
			)
			continue
		}
		loaded++
	}

	logger.Debug("node discovery completed", "loaded", loaded)
	return nil
}
