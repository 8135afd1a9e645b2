package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/folio/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with an example config",
	RunE:  initAction,
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(configPath, []byte(exampleConfig))
	if err != nil {
		return err
	}

	if !wrote {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Printf("Initialized %s.\n", configDir)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# folio configuration

feed:
  handle: "@moetezafif"
  # url: "https://medium.com/feed/@moetezafif"
  mode: direct            # direct, relay or json
  # relay_url: "https://api.allorigins.win/raw"
  # json_api_url: "https://api.rss2json.com/v1/api.json"
  timeout: 30s

cache:
  backend: sqlite         # sqlite, file, redis or memory
  # path: cache.db       # default is inside the config directory; relative
  #                      # paths set here resolve against the working directory
  # redis:
  #   addr: "localhost:6379"
  #   password_env: FOLIO_REDIS_PASSWORD
  #   db: 0

server:
  addr: ":8080"
  allowed_origins:
    - "http://localhost:5173"

blog:
  path: public/article.json

log:
  level: info             # debug, info, warn or error
  format: text            # text or json
`
