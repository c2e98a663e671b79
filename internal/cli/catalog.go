package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moldplan/moldplan/internal/infra/catalog"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogValidateCmd.Flags().String("machines", "", "Path to a JSON array of machines (required)")
	catalogValidateCmd.Flags().String("molds", "", "Path to a JSON array of molds (required)")
	catalogValidateCmd.MarkFlagRequired("machines")
	catalogValidateCmd.MarkFlagRequired("molds")
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate fleet catalog files",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report molds that no machine in the fleet could ever mount",
	RunE:  runCatalogValidate,
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	machinesPath, _ := cmd.Flags().GetString("machines")
	moldsPath, _ := cmd.Flags().GetString("molds")

	fleet, err := catalog.LoadFleet(machinesPath, moldsPath)
	if err != nil {
		return err
	}

	issues := fleet.Validate()
	if len(issues) == 0 {
		fmt.Fprintf(os.Stdout, "OK: %d machines, %d molds (machines=%s molds=%s)\n",
			len(fleet.Machines), len(fleet.Molds), fleet.MachinesDigest, fleet.MoldsDigest)
		return nil
	}

	for _, issue := range issues {
		fmt.Fprintf(os.Stdout, "mold %s: %s\n", issue.MoldID, issue.Reason)
	}
	return fmt.Errorf("%d mold(s) cannot be mounted on any machine in this fleet", len(issues))
}
