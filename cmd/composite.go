package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evfleet/ocppcore/core/charging"
	"github.com/evfleet/ocppcore/core/model"
	"github.com/evfleet/ocppcore/infra/logger"
)

var (
	compositeEvseID   int
	compositeDuration int
	compositeUnit     string
)

var compositeCmd = &cobra.Command{
	Use:   "composite",
	Short: "Compute the composite schedule from the persisted profiles",
	RunE:  runComposite,
}

func init() {
	compositeCmd.Flags().IntVar(&compositeEvseID, "evse", 0, "target EVSE id (0 for station-wide)")
	compositeCmd.Flags().IntVar(&compositeDuration, "duration", 86400, "schedule window in seconds")
	compositeCmd.Flags().StringVar(&compositeUnit, "unit", "A", "charging rate unit (A or W)")
	rootCmd.AddCommand(compositeCmd)
}

func runComposite(cmd *cobra.Command, args []string) error {
	if compositeUnit != "A" && compositeUnit != "W" {
		return fmt.Errorf("unknown charging rate unit %s", compositeUnit)
	}
	state, err := loadOfflineState(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = state.close() }()

	engine := charging.NewEngine(state.profiles, state.registry, nil, logger.New("composite"), nil)
	schedule, err := engine.GetCompositeSchedule(cmd.Context(), compositeEvseID, compositeDuration, model.ChargingRateUnit(compositeUnit))
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
