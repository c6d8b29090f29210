// Command storescu sends DICOM files to a peer via C-STORE.
package main

import (
	"fmt"
	"os"

	"github.com/dicomcore/netdicom"
	"github.com/spf13/cobra"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

var callingAETitle, calledAETitle string

var rootCmd = &cobra.Command{
	Use:   "storescu <peer> <port> <file>...",
	Short: "Send DICOM files to a peer via C-STORE",
	Long: `storescu associates with a DICOM peer, proposes a presentation
context per distinct SOP class found in the given files, and sends each
file as a separate C-STORE-RQ.

Examples:
  storescu localhost 11112 image1.dcm image2.dcm
  storescu --aet MYSCU --aec STORESCP pacs.example.org 104 *.dcm`,
	Args: cobra.MinimumNArgs(3),
	RunE: runStorescu,
}

func init() {
	rootCmd.Flags().StringVar(&callingAETitle, "aet", "STORESCU", "calling AE title")
	rootCmd.Flags().StringVar(&calledAETitle, "aec", "ANY-SCP", "called AE title")
}

func runStorescu(cmd *cobra.Command, args []string) error {
	peer := fmt.Sprintf("%s:%s", args[0], args[1])
	files := args[2:]

	datasets := make([]*dicom.Dataset, 0, len(files))
	sopClasses := map[string]bool{}
	for _, path := range files {
		ds, err := dicom.ParseFile(path, nil)
		if err != nil {
			return fmt.Errorf("storescu: %s: %w", path, err)
		}
		sopClassUID, err := sopClassUIDOf(&ds)
		if err != nil {
			return fmt.Errorf("storescu: %s: %w", path, err)
		}
		sopClasses[sopClassUID] = true
		datasets = append(datasets, &ds)
	}

	proposed := make([]string, 0, len(sopClasses))
	for uid := range sopClasses {
		proposed = append(proposed, uid)
	}

	ae := netdicom.NewApplicationEntity(callingAETitle, proposed, nil)
	su, err := ae.Associate(calledAETitle, peer)
	if err != nil {
		return fmt.Errorf("storescu: %w", err)
	}
	defer su.Release()

	for i, ds := range datasets {
		sopClassUID, err := sopClassUIDOf(ds)
		if err != nil {
			return err
		}
		sopInstanceUID, err := sopInstanceUIDOf(ds)
		if err != nil {
			return fmt.Errorf("storescu: %s: %w", files[i], err)
		}
		if err := su.CStore(sopClassUID, sopInstanceUID, ds); err != nil {
			return fmt.Errorf("storescu: %s: %w", files[i], err)
		}
		fmt.Printf("stored %s (%s)\n", files[i], sopInstanceUID)
	}
	return nil
}

func sopClassUIDOf(ds *dicom.Dataset) (string, error) {
	elem, err := ds.FindElementByTag(tag.SOPClassUID)
	if err != nil {
		return "", fmt.Errorf("no SOPClassUID: %w", err)
	}
	return stringValueOf(elem)
}

func sopInstanceUIDOf(ds *dicom.Dataset) (string, error) {
	elem, err := ds.FindElementByTag(tag.SOPInstanceUID)
	if err != nil {
		return "", fmt.Errorf("no SOPInstanceUID: %w", err)
	}
	return stringValueOf(elem)
}

func stringValueOf(elem *dicom.Element) (string, error) {
	values, ok := elem.Value.GetValue().([]string)
	if !ok || len(values) == 0 {
		return "", fmt.Errorf("%s has no string value", elem.Tag.String())
	}
	return values[0], nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
