// Command storescp accepts associations and writes incoming C-STORE
// datasets to a directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dicomcore/netdicom"
	"github.com/dicomcore/netdicom/dimse"
	"github.com/dicomcore/netdicom/uidinfo"
	"github.com/spf13/cobra"
)

var (
	aeTitle string
	outDir  string
)

var rootCmd = &cobra.Command{
	Use:   "storescp <port>",
	Short: "Run a DICOM storage SCP",
	Long: `storescp listens on the given port, accepts associations proposing
any of the standard storage SOP classes, and writes each received dataset
to --out-dir as <SOPInstanceUID>.dcm.

Examples:
  storescp 11112
  storescp --out-dir ./received 11112`,
	Args: cobra.ExactArgs(1),
	RunE: runStorescp,
}

func init() {
	rootCmd.Flags().StringVar(&aeTitle, "aet", "STORESCP", "AE title to answer as")
	rootCmd.Flags().StringVar(&outDir, "out-dir", ".", "directory to write received datasets to")
}

func runStorescp(cmd *cobra.Command, args []string) error {
	addr := fmt.Sprintf(":%s", args[0])
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("storescp: %w", err)
	}

	ae := netdicom.NewApplicationEntity(aeTitle, uidinfo.StorageSOPClasses, nil)
	params := netdicom.ServiceProviderParams{
		AETitle: aeTitle,
		OnCStore: func(transferSyntaxUID, sopClassUID, sopInstanceUID string, data []byte) dimse.Status {
			path := filepath.Join(outDir, sopInstanceUID+".dcm")
			if err := os.WriteFile(path, data, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "storescp: failed to write %s: %v\n", path, err)
				return dimse.Status{Status: dimse.StatusCode(0xa700)}
			}
			fmt.Printf("received %s (%s)\n", path, sopClassUID)
			return dimse.Success
		},
	}
	fmt.Printf("storescp: listening on %s as %s, writing to %s\n", addr, aeTitle, outDir)
	if err := ae.Serve(addr, params); err != nil {
		return fmt.Errorf("storescp: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
