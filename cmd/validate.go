package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evfleet/ocppcore/core/charging"
	"github.com/evfleet/ocppcore/core/model"
)

var validateEvseID int

var validateCmd = &cobra.Command{
	Use:   "validate <profile.json>",
	Short: "Validate a charging profile against the configured station",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().IntVar(&validateEvseID, "evse", 0, "target EVSE id (0 for station-wide)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	var profile model.ChargingProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("parse profile: %w", err)
	}

	state, err := loadOfflineState(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = state.close() }()

	result := charging.Validator{}.Validate(&profile, validateEvseID, state.registry, state.profiles)
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}
