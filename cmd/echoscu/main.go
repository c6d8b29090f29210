// Command echoscu verifies connectivity to a DICOM peer with a C-ECHO.
package main

import (
	"fmt"
	"os"

	"github.com/dicomcore/netdicom"
	"github.com/dicomcore/netdicom/uidinfo"
	"github.com/spf13/cobra"
)

var (
	callingAETitle string
	calledAETitle  string
)

var rootCmd = &cobra.Command{
	Use:   "echoscu <peer> <port>",
	Short: "Verify a DICOM peer is reachable with a C-ECHO",
	Long: `echoscu associates with a DICOM peer, issues a single C-ECHO-RQ, and
reports the result.

Examples:
  echoscu localhost 11112
  echoscu --aet MYSCU --aec REMOTESCP pacs.example.org 104`,
	Args: cobra.ExactArgs(2),
	RunE: runEchoscu,
}

func init() {
	rootCmd.Flags().StringVar(&callingAETitle, "aet", "ECHOSCU", "calling AE title")
	rootCmd.Flags().StringVar(&calledAETitle, "aec", "ANY-SCP", "called AE title")
}

func runEchoscu(cmd *cobra.Command, args []string) error {
	peer := fmt.Sprintf("%s:%s", args[0], args[1])

	ae := netdicom.NewApplicationEntity(callingAETitle, []string{uidinfo.VerificationSOPClass}, nil)
	su, err := ae.Associate(calledAETitle, peer)
	if err != nil {
		return fmt.Errorf("echoscu: %w", err)
	}
	defer su.Release()

	if err := su.CEcho(); err != nil {
		return fmt.Errorf("echoscu: %w", err)
	}
	fmt.Println("C-ECHO succeeded")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
