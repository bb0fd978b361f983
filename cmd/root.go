package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/liamg/bannerscan/config"
	"github.com/liamg/bannerscan/logging"
	"github.com/liamg/bannerscan/metrics"
	"github.com/liamg/bannerscan/report"
	"github.com/liamg/bannerscan/scan"
	"github.com/liamg/bannerscan/version"
)

// config key -> flag name
var flagKeys = map[string]string{
	"connect_timeout": "connect-timeout",
	"grab_timeout":    "grab-timeout",
	"workers":         "workers",
	"probe_payload":   "payload",
	"banner_size":     "banner-size",
	"annotate_host":   "annotate-host",
	"services_file":   "services-file",
	"output":          "output",
	"format":          "format",
	"metrics_file":    "metrics-file",
	"log_file":        "log-file",
	"log_format":      "log-format",
	"verbose":         "verbose",
}

func newRootCmd() *cobra.Command {

	var cfgFile string
	var versionRequested bool

	rootCmd := &cobra.Command{
		Use:   "bannerscan <host> <start-port> <end-port>",
		Short: "bannerscan is a TCP port and banner scanner",
		Long: `Probes an inclusive range of TCP ports on one host, names the services that
accept connections and grabs an identifying banner from each of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if versionRequested {
				return nil
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {

			if versionRequested {
				v := version.Version
				if v == "" {
					v = "development version"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "bannerscan %s\n", v)
				return nil
			}

			v, err := config.New(cfgFile)
			if err != nil {
				return err
			}

			for key, flag := range flagKeys {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return fmt.Errorf("failed to bind flag --%s: %w", flag, err)
				}
			}

			startPort, err := parsePort(args[1])
			if err != nil {
				return err
			}
			endPort, err := parsePort(args[2])
			if err != nil {
				return err
			}

			v.Set("host", args[0])
			v.Set("start_port", startPort)
			v.Set("end_port", endPort)

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			return run(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Config file (yaml, json or toml)")
	flags.BoolVarP(&versionRequested, "version", "", false, "Output version information and exit")
	flags.DurationP("connect-timeout", "t", scan.DefaultConnectTimeout, "Time allowed for each port to accept a connection")
	flags.Duration("grab-timeout", scan.DefaultGrabTimeout, "Time allowed to connect for, and separately to exchange, a banner")
	flags.IntP("workers", "w", scan.DefaultWorkers, "Ports to probe at once. 1 scans strictly in order")
	flags.StringP("payload", "p", `WhoAreYou\r\n`, "Probe payload sent to open ports. Escapes such as \\r\\n are interpreted")
	flags.Int("banner-size", scan.DefaultBannerSize, "Maximum number of banner bytes to read")
	flags.BoolP("annotate-host", "a", false, "Report the target's MAC address, vendor and reverse DNS name")
	flags.String("services-file", "", "services(5) database to name ports from (default /etc/services, then the IANA table)")
	flags.StringP("output", "o", config.DefaultOutput, "Report file, or - to print a table")
	flags.StringP("format", "f", "", "Report format: xlsx, csv, json or table (default from the output extension)")
	flags.String("metrics-file", "", "Write Prometheus metrics for the run to this file")
	flags.String("log-file", logging.DefaultFile, "Log file, or stdout/stderr")
	flags.String("log-format", string(logging.FormatText), "Log format: text or json")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")

	return rootCmd
}

func run(ctx context.Context, out io.Writer, cfg config.Config) error {

	closer, err := logging.Configure(log.StandardLogger(), logging.Config{
		File:    cfg.LogFile,
		Format:  logging.Format(cfg.LogFormat),
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	opts := scan.DefaultOptions()
	opts.ConnectTimeout = cfg.ConnectTimeout
	opts.GrabTimeout = cfg.GrabTimeout
	opts.Workers = cfg.Workers
	opts.Payload = cfg.Payload()
	opts.BannerSize = cfg.BannerSize
	opts.AnnotateHost = cfg.AnnotateHost
	opts.Logger = log.StandardLogger()

	if cfg.ServicesFile != "" {
		services, err := scan.LoadServiceRegistry(cfg.ServicesFile)
		if err != nil {
			return fmt.Errorf("failed to load services file: %w", err)
		}
		opts.Services = services.WithFallback(scan.IANAServices{})
	}

	var collector *metrics.Collector
	if cfg.MetricsFile != "" {
		collector = metrics.New()
		opts.Recorder = collector
	}

	startTime := time.Now()
	fmt.Fprintf(out, "\nStarting scan of %s ports %d-%d at %s\n\n", cfg.Host, cfg.StartPort, cfg.EndPort, startTime.Format(time.RFC1123))

	result, err := scan.New(opts).Run(ctx, cfg.Host, scan.PortRange{Start: cfg.StartPort, End: cfg.EndPort})
	if err != nil {
		log.WithError(err).Error("Error during port scanning")
		return err
	}

	format := report.Format(cfg.OutputFormat())
	if format == report.FormatTable {
		if err := (report.TableWriter{}).Write(out, result); err != nil {
			return err
		}
	} else {
		if err := report.WriteFile(cfg.Output, format, result); err != nil {
			log.WithError(err).Error("Error writing port scan results")
			return err
		}
		log.Infof("Port scan results saved to %s", cfg.Output)
		fmt.Fprintf(out, "%s\nResults saved to %s\n", result.Summary(), cfg.Output)
	}

	if collector != nil {
		if err := collector.WriteFile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	fmt.Fprintf(out, "Scan complete in %s.\n", time.Since(startTime).String())
	return nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("Invalid port number: '%s'", s)
	}
	return port, nil
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
