// Package cli implements the furnilytics command tree.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	furnilytics "github.com/Furnilytics/Furnilytics-lib"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	cfgPath string
	baseURL string
	apiKey  string
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "furnilytics",
		Short:         "CLI for the Furnilytics dataset catalog API",
		Long:          `furnilytics queries the Furnilytics dataset catalog: service health, the dataset listing, per-dataset metadata and observation rows.`,
		Version:       furnilytics.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&opts.cfgPath, "config", "", "config file path (default $HOME/.furnilytics.yaml)")
	fs.StringVar(&opts.baseURL, "base-url", "", "API base URL (env FURNILYTICS_BASE_URL)")
	fs.StringVar(&opts.apiKey, "api-key", "", "API key, only needed for pro datasets (env FURNILYTICS_API_KEY)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default 20s)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and retries to stderr")

	cmd.AddCommand(newHealthCmd(opts))
	cmd.AddCommand(newDatasetsCmd(opts))
	cmd.AddCommand(newMetadataCmd(opts))
	cmd.AddCommand(newMetaCmd(opts))
	cmd.AddCommand(newDataCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the furnilytics command tree against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

// newClient builds the API client for a subcommand. Precedence per setting:
// command line flag, then environment, then config file, then the library
// default.
func newClient(opts *rootOptions) (*furnilytics.Client, error) {
	cfg, err := loadConfigIfExists(opts.cfgPath)
	if err != nil {
		return nil, err
	}

	var clientOpts []furnilytics.Option

	if opts.baseURL != "" {
		clientOpts = append(clientOpts, furnilytics.WithBaseURL(opts.baseURL))
	} else if os.Getenv(furnilytics.EnvBaseURL) == "" && cfg != nil && cfg.BaseURL != "" {
		clientOpts = append(clientOpts, furnilytics.WithBaseURL(cfg.BaseURL))
	}

	if opts.apiKey != "" {
		clientOpts = append(clientOpts, furnilytics.WithAPIKey(opts.apiKey))
	} else if os.Getenv(furnilytics.EnvAPIKey) == "" && cfg != nil && cfg.APIKey != "" {
		clientOpts = append(clientOpts, furnilytics.WithAPIKey(cfg.APIKey))
	}

	if opts.timeout > 0 {
		clientOpts = append(clientOpts, furnilytics.WithTimeout(opts.timeout))
	} else if cfg != nil && cfg.TimeoutSeconds > 0 {
		clientOpts = append(clientOpts, furnilytics.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}

	if cfg != nil && cfg.MaxRetries != nil {
		clientOpts = append(clientOpts, furnilytics.WithMaxRetries(*cfg.MaxRetries))
	}

	if opts.verbose {
		clientOpts = append(clientOpts, furnilytics.WithSimpleLogger())
	}

	return furnilytics.New(clientOpts...)
}
