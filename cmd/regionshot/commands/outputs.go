package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/bryanchriswhite/regionshot/internal/display"
	"github.com/bryanchriswhite/regionshot/internal/monitor"
	"github.com/spf13/cobra"
)

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "List connected monitors",
	Long: `List the monitors regionshot would capture, in enumeration order, with
their logical geometry and the bounding area that covers all of them.`,
	Example: `  # List monitors in table format (default)
  regionshot outputs

  # List monitors in JSON format
  regionshot outputs --format json`,
	Args: cobra.NoArgs,
	RunE: runOutputs,
}

var outputsFormat string

func init() {
	rootCmd.AddCommand(outputsCmd)

	outputsCmd.Flags().StringVarP(&outputsFormat, "format", "f", "table", "output format (table or json)")
}

// outputRow is one monitor as printed by the outputs command
type outputRow struct {
	ID     monitor.OutputID `json:"id"`
	Name   string           `json:"name"`
	X      int              `json:"x"`
	Y      int              `json:"y"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
}

type outputsReport struct {
	Monitors []outputRow `json:"monitors"`
	Area     outputRow   `json:"area"`
}

func runOutputs(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogging(configMgr.Get())

	disp, err := display.Open()
	if err != nil {
		return err
	}
	defer disp.Close()

	reg, err := monitor.Load(disp)
	if err != nil {
		return err
	}

	report := buildOutputsReport(reg)

	switch outputsFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "table":
		return printOutputsTable(os.Stdout, report)
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", outputsFormat)
	}
}

func buildOutputsReport(reg *monitor.Registry) outputsReport {
	var report outputsReport
	for _, m := range reg.Monitors() {
		report.Monitors = append(report.Monitors, outputRow{
			ID:     m.ID,
			Name:   m.Name,
			X:      m.Rect.X,
			Y:      m.Rect.Y,
			Width:  m.Rect.Width,
			Height: m.Rect.Height,
		})
	}
	area := reg.Area()
	report.Area = outputRow{Name: "area", X: area.X, Y: area.Y, Width: area.Width, Height: area.Height}
	return report
}

func printOutputsTable(out io.Writer, report outputsReport) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tNAME\tGEOMETRY")
	fmt.Fprintln(w, "--\t----\t--------")

	for _, m := range report.Monitors {
		fmt.Fprintf(w, "%d\t%s\t%dx%d+%d+%d\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y)
	}
	a := report.Area
	fmt.Fprintf(w, "\t%s\t%dx%d+%d+%d\n", a.Name, a.Width, a.Height, a.X, a.Y)

	return w.Flush()
}
