// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgeo-scada/bacnet-objects/bacnet"
)

var (
	cfgFile        string
	deviceInstance uint32
	maxAPDU        uint16
	outputFmt      string
	verbose        bool

	device *bacnet.Device
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "edgeo-bacnet-objects",
	Short: "Inspect and exercise BACnet Octet String Value objects",
	Long: `edgeo-bacnet-objects loads a BACnet device and its Octet String Value
objects from a configuration file and serves property reads and writes
against them, the way a BACnet server would.

The device lives in memory: writes last for the duration of the command
(or of the interactive session) and are not written back to the file.

Configuration (default $HOME/.edgeo-bacnet-objects.yaml):

  device:
    instance: 1234
    name: plant-controller
    max_apdu_length: 1024
    objects:
      - instance: 1
        name: serial-rx
        description: Last frame received on the RS-485 port
        present_value: hex:0102abcd
        status_flags:
          fault: true
      - instance: 2
        name: serial-tx
        present_value: text:AT+OK
        out_of_service_writes: true

Examples:
  # List the configured objects
  edgeo-bacnet-objects list

  # Read a present value
  edgeo-bacnet-objects read -O octetstring-value:1 -P present-value

  # Rename an object
  edgeo-bacnet-objects write -O osv:1 -P object-name -V "uart-rx"

  # Show the ReadProperty-ACK sent for a property
  edgeo-bacnet-objects encode -O osv:1 -P pv`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logger
		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))

		if cmd == versionCmd {
			return nil
		}

		cfg, err := loadDeviceConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("device") {
			cfg.Instance = deviceInstance
		}
		if cmd.Flags().Changed("max-apdu") {
			cfg.MaxAPDULength = maxAPDU
		}

		device, err = buildDevice(cfg)
		if err != nil {
			return fmt.Errorf("build device: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.edgeo-bacnet-objects.yaml)")
	rootCmd.PersistentFlags().Uint32VarP(&deviceInstance, "device", "d", defaultDeviceInstance, "Device instance number")
	rootCmd.PersistentFlags().Uint16Var(&maxAPDU, "max-apdu", bacnet.MaxUnsegmentedAPDU, "Max APDU length accepted by the device")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format (table, json, csv, yaml, raw)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Bind flags to viper
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".edgeo-bacnet-objects")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BACNET")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	outputFmt = viper.GetString("output")
	verbose = viper.GetBool("verbose")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("edgeo-bacnet-objects version 1.0.0")
	},
}
