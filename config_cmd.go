package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/lipcue/utils"
)

const defaultConfig = `# Output
output:
  # value written to metadata.soundFile
  sound_file: ""
  # guess sound_file from the timings file name (speech.json -> speech.wav)
  guess_sound_file: false
  # indent the JSON output
  pretty: true

# Input timings: "seconds" ({"text","start","duration"}) or
# "ticks" (edge-tts WordBoundary: {"text","offset","duration"} in 100ns units)
input:
  format: "seconds"

# Grapheme-to-phoneme backends: dict, command or letters
g2p:
  backend: "letters"
  # asked when the primary backend fails or does not know a word
  fallback: ""
  dict:
    # CMUdict-format pronunciation dictionary
    path: ""
  command:
    # external phonemizer reading a word on stdin and printing ARPAbet
    binary: ""
    args: []
    timeout: "5s"
    # max process spawns per second
    rate: 20

# Phoneme timing inside a word: "even" or "weighted" (vowels held longer)
timing:
  model: "even"

synth:
  # concurrent phoneme lookups
  workers: 4

# Phoneme lookup cache
cache:
  enabled: true
  # dir: "~/.cache/lipcue"
  memory_size: "8MiB"
  disk_size: "64MiB"
  # zstd level, 0 disables compression
  compression_level: 3
  ttl_days: 30
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the lipcue config file",
	Long:    paragraph(fmt.Sprintf("\n%s the lipcue config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("lipcue config\nlipcue config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	// A broken config file must stay editable.
	PersistentPreRunE: noValidation,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("lipcue", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

// ensureConfigFile writes the commented default configuration when no
// config file exists yet.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		return errors.New("could not determine where to write the configuration file")
	}
	configFile = utils.ExpandPath(configFile)

	if ext := filepath.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	_, err := os.Stat(configFile)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("unable to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return fmt.Errorf("unable create directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	log.Info("Created default configuration", "path", configFile)
	return nil
}
