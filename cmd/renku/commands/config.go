package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fivetwenty-io/renku-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration keys, shared by the config file, RENKU_* environment
// variables and the bound global flags.
const (
	KeyAPI               = "api"
	KeyUIServer          = "ui_server"
	KeyToken             = "token"
	KeyOutput            = "output"
	KeyLocation          = "location"
	KeyNATSURL           = "nats_url"
	KeyAlertSubject      = "alert_subject"
	KeyRequestsPerSecond = "requests_per_second"
)

// Config represents the CLI configuration.
type Config struct {
	API               string  `json:"api,omitempty"                 yaml:"api,omitempty"`
	UIServer          string  `json:"ui_server,omitempty"           yaml:"ui_server,omitempty"`
	Token             string  `json:"token,omitempty"               yaml:"token,omitempty"`
	Output            string  `json:"output,omitempty"              yaml:"output,omitempty"`
	Location          string  `json:"location,omitempty"            yaml:"location,omitempty"`
	NATSURL           string  `json:"nats_url,omitempty"            yaml:"nats_url,omitempty"`
	AlertSubject      string  `json:"alert_subject,omitempty"       yaml:"alert_subject,omitempty"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the Renku CLI configuration stored in ~/.renku/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with the token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Token != "" {
				config.Token = constants.MaskedSecret
			}

			return render(cmd, config, renderConfigTable)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Known keys: api, ui_server, token, output,
location, nats_url, alert_subject, requests_per_second.`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		API:               viper.GetString(KeyAPI),
		UIServer:          viper.GetString(KeyUIServer),
		Token:             viper.GetString(KeyToken),
		Output:            viper.GetString(KeyOutput),
		Location:          viper.GetString(KeyLocation),
		NATSURL:           viper.GetString(KeyNATSURL),
		AlertSubject:      viper.GetString(KeyAlertSubject),
		RequestsPerSecond: viper.GetFloat64(KeyRequestsPerSecond),
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case KeyAPI:
		config.API = value
	case KeyUIServer:
		config.UIServer = value
	case KeyToken:
		config.Token = value
	case KeyOutput:
		if !validOutputFormat(value) {
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, value)
		}

		config.Output = value
	case KeyLocation:
		config.Location = value
	case KeyNATSURL:
		config.NATSURL = value
	case KeyAlertSubject:
		config.AlertSubject = value
	case KeyRequestsPerSecond:
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil || rps < 0 {
			return fmt.Errorf("invalid %s %q: must be a non-negative number", key, value)
		}

		config.RequestsPerSecond = rps
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	viper.Set(key, value)

	return nil
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".renku", "config.yml"), nil
}

func saveConfig(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// table is the default and is left out of the file.
	persisted := *config
	if persisted.Output == constants.FormatTable {
		persisted.Output = ""
	}

	data, err := yaml.Marshal(&persisted)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func renderConfigTable(w io.Writer, config *Config) error {
	table := tablewriter.NewWriter(w)
	table.Header("Key", "Value")

	_ = table.Append(KeyAPI, valueOrNA(config.API))
	_ = table.Append(KeyUIServer, valueOrNA(config.UIServer))
	_ = table.Append(KeyToken, valueOrNA(config.Token))
	_ = table.Append(KeyOutput, valueOrNA(config.Output))
	_ = table.Append(KeyLocation, valueOrNA(config.Location))
	_ = table.Append(KeyNATSURL, valueOrNA(config.NATSURL))
	_ = table.Append(KeyAlertSubject, valueOrNA(config.AlertSubject))

	rps := constants.NotAvailable
	if config.RequestsPerSecond > 0 {
		rps = strconv.FormatFloat(config.RequestsPerSecond, 'f', -1, 64)
	}

	_ = table.Append(KeyRequestsPerSecond, rps)

	return table.Render()
}
