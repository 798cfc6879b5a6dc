package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/adbudget-cli/internal/config"
	"github.com/KaramelBytes/adbudget-cli/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set adbudget configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "skip_rows: %d\n", c.SkipRows)
		fmt.Fprintf(out, "total_marker: %q\n", c.TotalMarker)
		fmt.Fprintf(out, "account_row: %q\n", c.AccountRow)
		fmt.Fprintf(out, "placeholder: %q\n", c.Placeholder)
		fmt.Fprintf(out, "near_average_band: %g\n", c.NearAverageBand)
		fmt.Fprintf(out, "decrease_factor: %g\n", c.DecreaseFactor)
		fmt.Fprintf(out, "slight_increase_factor: %g\n", c.SlightIncreaseFactor)
		fmt.Fprintf(out, "increase_factor: %g\n", c.IncreaseFactor)
		fmt.Fprintf(out, "extended: %t\n", c.Extended)
		fmt.Fprintf(out, "glyphs: %t\n", c.Glyphs)
		fmt.Fprintf(out, "runs_dir: %s\n", c.RunsDir)
		fmt.Fprintf(out, "serve_addr: %s\n", c.ServeAddr)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		if len(c.CORSOrigins) > 0 {
			fmt.Fprintf(out, "cors_origins: %s\n", strings.Join(c.CORSOrigins, ","))
		}
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Start from the stored file so --debug, --log-level and env overrides stay out of it.
		c, err := cfgpkg.LoadPersisted(cfgFile)
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "skip_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for skip_rows: %v", val)
		}
		c.SkipRows = i
	case "total_marker":
		c.TotalMarker = val
	case "account_row":
		c.AccountRow = val
	case "placeholder":
		c.Placeholder = val
	case "near_average_band":
		f, err := parseFactor(key, val)
		if err != nil {
			return err
		}
		c.NearAverageBand = f
	case "decrease_factor":
		f, err := parseFactor(key, val)
		if err != nil {
			return err
		}
		c.DecreaseFactor = f
	case "slight_increase_factor":
		f, err := parseFactor(key, val)
		if err != nil {
			return err
		}
		c.SlightIncreaseFactor = f
	case "increase_factor":
		f, err := parseFactor(key, val)
		if err != nil {
			return err
		}
		c.IncreaseFactor = f
	case "extended", "glyphs":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		if key == "extended" {
			c.Extended = b
		} else {
			c.Glyphs = b
		}
	case "runs_dir":
		c.RunsDir = val
	case "serve_addr":
		c.ServeAddr = val
	case "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for max_upload_mb: %v", val)
		}
		c.MaxUploadMB = i
	case "cors_origins":
		var origins []string
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	case "log_level", "log_format":
		level, format := c.LogLevel, c.LogFormat
		if key == "log_level" {
			level = val
		} else {
			format = val
		}
		if _, err := logging.New(io.Discard, level, format); err != nil {
			return err
		}
		c.LogLevel, c.LogFormat = level, format
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func parseFactor(key, val string) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid non-negative float for %s: %v", key, val)
	}
	return f, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
