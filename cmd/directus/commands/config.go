package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/directus/internal/constants"
)

// Config represents the CLI configuration.
type Config struct {
	URL               string `json:"url,omitempty"        yaml:"url,omitempty"`
	Prefix            string `json:"prefix,omitempty"     yaml:"prefix,omitempty"`
	Storage           string `json:"storage,omitempty"    yaml:"storage,omitempty"`
	RedisAddr         string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	NATSURL           string `json:"nats_url,omitempty"   yaml:"nats_url,omitempty"`
	Token             string `json:"token,omitempty"      yaml:"token,omitempty"`
	Output            string `json:"output"               yaml:"output"`
	SkipSSLValidation bool   `json:"skip_ssl_validation"  yaml:"skip_ssl_validation"`
	OnlyIPv4          bool   `json:"only_ipv4"            yaml:"only_ipv4"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the Directus CLI configuration stored in ~/.directus/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration, including flag and environment overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = maskToken(config.Token)

			out := cmd.OutOrStdout()

			switch viper.GetString("output") {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(out)

				return encoder.Encode(config)
			default:
				return displayConfigTable(out, config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Keys: url, prefix, storage, redis_addr, nats_url, token, output,
skip_ssl_validation, only_ipv4`,
		Args: cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		URL:               viper.GetString("url"),
		Prefix:            viper.GetString("prefix"),
		Storage:           viper.GetString("storage"),
		RedisAddr:         viper.GetString("redis_addr"),
		NATSURL:           viper.GetString("nats_url"),
		Token:             viper.GetString("token"),
		Output:            viper.GetString("output"),
		SkipSSLValidation: viper.GetBool("skip_ssl_validation"),
		OnlyIPv4:          viper.GetBool("only_ipv4"),
	}
}

// setConfigValue sets key on config. An empty value clears it.
func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "url":
		config.URL = value
	case "prefix":
		config.Prefix = value
	case "storage":
		config.Storage = value
	case "redis_addr":
		config.RedisAddr = value
	case "nats_url":
		config.NATSURL = value
	case "token":
		config.Token = value
	case "output":
		config.Output = value
	case "skip_ssl_validation":
		config.SkipSSLValidation = parseBool(value)
	case "only_ipv4":
		config.OnlyIPv4 = parseBool(value)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func parseBool(value string) bool {
	parsed, err := strconv.ParseBool(value)

	return err == nil && parsed
}

// configDir returns the CLI directory, creating it when missing.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, constants.CLIConfigDir)

	err = os.MkdirAll(dir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}

		configFile = filepath.Join(dir, constants.CLIConfigFile)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append([]string{"URL", valueOrNA(config.URL)})
	_ = table.Append([]string{"Prefix", valueOrNA(config.Prefix)})
	_ = table.Append([]string{"Storage", valueOrNA(config.Storage)})

	if config.RedisAddr != "" {
		_ = table.Append([]string{"Redis Address", config.RedisAddr})
	}

	if config.NATSURL != "" {
		_ = table.Append([]string{"NATS URL", config.NATSURL})
	}

	_ = table.Append([]string{"Token", valueOrNA(config.Token)})
	_ = table.Append([]string{"Output", valueOrNA(config.Output)})
	_ = table.Append([]string{"Skip SSL Validation", strconv.FormatBool(config.SkipSSLValidation)})
	_ = table.Append([]string{"Only IPv4", strconv.FormatBool(config.OnlyIPv4)})

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

// maskToken keeps the first TokenPreviewLength characters of a token.
func maskToken(token string) string {
	if token == "" {
		return ""
	}

	if len(token) <= constants.TokenPreviewLength {
		return constants.MaskedSecret
	}

	return token[:constants.TokenPreviewLength] + constants.MaskedSecret
}
