package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	apperrors "hostbook/pkg/errors"
	"hostbook/pkg/model"
)

func writeHeader(w io.Writer, title string) {
	rule := strings.Repeat("=", 40)
	fmt.Fprintf(w, "%s\n%s\n%s\n", rule, strings.ToUpper(title), rule)
}

func writeReservations(w io.Writer, reservations []model.Reservation, withHost bool) error {
	if len(reservations) == 0 {
		_, err := fmt.Fprintln(w, "No reservations found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if withHost {
		fmt.Fprintln(tw, "ID\tHOST\tSTART\tEND\tGUEST\tTOTAL")
	} else {
		fmt.Fprintln(tw, "ID\tSTART\tEND\tGUEST\tTOTAL")
	}
	for _, r := range reservations {
		if withHost {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t$%s\n",
				r.ID, r.HostID, model.FormatDate(r.StartDate), model.FormatDate(r.EndDate), r.GuestID, r.Total.StringFixed(2))
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t$%s\n",
			r.ID, model.FormatDate(r.StartDate), model.FormatDate(r.EndDate), r.GuestID, r.Total.StringFixed(2))
	}
	return tw.Flush()
}

func writeSummary(w io.Writer, r model.Reservation, total decimal.Decimal) {
	writeHeader(w, "Summary")
	fmt.Fprintf(w, "Start: %s\n", model.FormatDate(r.StartDate))
	fmt.Fprintf(w, "End: %s\n", model.FormatDate(r.EndDate))
	fmt.Fprintf(w, "Total: $%s\n", total.StringFixed(2))
}

// confirm reads one line from in. Only y or Y accepts; EOF declines.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

// Describe renders err for a terminal user.
func Describe(err error) string {
	if !apperrors.IsAppError(err) {
		return err.Error()
	}
	appErr := apperrors.AsAppError(err)
	if detail, ok := appErr.Details["error"].(string); ok && detail != "" {
		return appErr.Message + ": " + detail
	}
	return appErr.Message
}
