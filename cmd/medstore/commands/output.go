package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/medstore/medstore/pkg/stores"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMedications writes records as a table, or as a JSON array with --json.
func printMedications(w io.Writer, meds []*stores.Medication) error {
	if jsonOutput {
		if meds == nil {
			meds = []*stores.Medication{}
		}
		return printJSON(w, meds)
	}

	if len(meds) == 0 {
		_, err := fmt.Fprintln(w, "No medications found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPERSON\tAGE\tCONDITION\tMEDICINE\tDOSAGE\tFREQUENCY\tSTART\tEND")
	for _, m := range meds {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.PersonName, m.Age, m.Condition, m.MedicineName,
			m.Dosage, m.Frequency, m.StartDate, m.EndDate)
	}
	return tw.Flush()
}

// printMedication writes one record, or a not-found line when m is nil.
func printMedication(w io.Writer, id int64, m *stores.Medication) error {
	if jsonOutput {
		return printJSON(w, m)
	}
	if m == nil {
		_, err := fmt.Fprintf(w, "Medication %d not found\n", id)
		return err
	}
	return printMedications(w, []*stores.Medication{m})
}
