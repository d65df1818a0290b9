package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
	"github.com/olekukonko/tablewriter"
)

// WriteSummaryTable prints one row per candidate with the final averages.
func WriteSummaryTable(w io.Writer, finals []scoring.FinalCandidate) {
	header := []string{"Key", "Name", "Organization", "Judges"}
	for _, id := range scoring.CriterionIDs() {
		header = append(header, string(id))
	}
	header = append(header, "Total")

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)

	for _, f := range finals {
		row := []string{string(f.Key), f.Name, f.Organization, strconv.Itoa(f.JudgeCount)}
		for _, id := range scoring.CriterionIDs() {
			row = append(row, strconv.FormatFloat(f.Averages[id], 'f', -1, 64))
		}
		row = append(row, fmt.Sprintf("%.1f", f.Total))
		table.Append(row)
	}
	table.Render()
}
