package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/charlesvestal/move-anything-nam/pkg/build"
)

// Options is the parsed command line: which one-off command to run (if any)
// and the overrides to apply on top of the YAML config.
type Options struct {
	ConfigPath   string
	ModuleDir    string
	InputDevice  int
	OutputDevice int
	Record       bool
	OutputFile   string
	ControlAddr  string
	Verbose      bool
	Headless     bool
	Command      string
	RunLive      bool
}

// ParseArgs parses os.Args into Options.
func ParseArgs() (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{
		InputDevice:  -1,
		OutputDevice: -1,
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Run a NAM guitar amp model as a live audio effect",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.RunLive = true
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available models and cabinets",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "devices"
		},
	}
	rootCmd.AddCommand(devicesCmd)

	rootCmd.PersistentFlags().StringVarP(&options.ConfigPath, "config", "f", "",
		"Path to YAML config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&options.ModuleDir, "module-dir", "m", "",
		"Directory containing models/ and cabs/ subdirectories")
	rootCmd.PersistentFlags().IntVarP(&options.InputDevice, "device", "d", -1,
		"Input device ID. Use 'devices' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&options.OutputDevice, "output-device", "D", -1,
		"Output device ID (-1 for system default)")
	rootCmd.PersistentFlags().BoolVarP(&options.Record, "record", "r", false,
		"Record processed output to a WAV file")
	rootCmd.PersistentFlags().StringVarP(&options.OutputFile, "output", "o", "",
		"Recording file name. Default is nam-MM-DD-YYYY-HHMMSS.wav")
	rootCmd.PersistentFlags().StringVarP(&options.ControlAddr, "control", "c", "",
		"Serve the WebSocket control endpoint on this address (e.g. :8765)")
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().BoolVar(&options.Headless, "headless", false,
		"Run without the terminal browser")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}
