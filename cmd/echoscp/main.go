// Command echoscp accepts associations and answers C-ECHO requests.
package main

import (
	"fmt"
	"os"

	"github.com/dicomcore/netdicom"
	"github.com/dicomcore/netdicom/dimse"
	"github.com/spf13/cobra"
)

var aeTitle string

var rootCmd = &cobra.Command{
	Use:   "echoscp <port>",
	Short: "Run a DICOM verification SCP",
	Long: `echoscp listens on the given port and answers every C-ECHO-RQ it
receives with Success, until interrupted.

Examples:
  echoscp 11112
  echoscp --aet MYSCP 11112`,
	Args: cobra.ExactArgs(1),
	RunE: runEchoscp,
}

func init() {
	rootCmd.Flags().StringVar(&aeTitle, "aet", "ECHOSCP", "AE title to answer as")
}

func runEchoscp(cmd *cobra.Command, args []string) error {
	addr := fmt.Sprintf(":%s", args[0])
	ae := netdicom.NewApplicationEntity(aeTitle, nil, nil)
	params := netdicom.ServiceProviderParams{
		AETitle: aeTitle,
		OnCEcho: func() dimse.Status {
			fmt.Println("received C-ECHO")
			return dimse.Success
		},
	}
	fmt.Printf("echoscp: listening on %s as %s\n", addr, aeTitle)
	if err := ae.Serve(addr, params); err != nil {
		return fmt.Errorf("echoscp: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
