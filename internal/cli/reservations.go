package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hostbook/internal/bookings/service"
	"hostbook/pkg/model"
)

type runFunc func(ctx context.Context, cmd *cobra.Command, svc service.ReservationService) error

// withService opens the engine for the duration of one command.
func withService(factory ServiceFactory, run runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := factory(cmd)
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}
		return run(cmd.Context(), cmd, svc)
	}
}

func NewReservationsCmd(factory ServiceFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reservations",
		Aliases: []string{"res"},
		Short:   "View and change host calendars",
	}
	cmd.AddCommand(newListCmd(factory))
	cmd.AddCommand(newMakeCmd(factory))
	cmd.AddCommand(newEditCmd(factory))
	cmd.AddCommand(newCancelCmd(factory))
	cmd.AddCommand(newByGuestCmd(factory))
	cmd.AddCommand(newByLocationCmd(factory))
	return cmd
}

func newListCmd(factory ServiceFactory) *cobra.Command {
	var hostRef string
	c := &cobra.Command{
		Use:   "list",
		Short: "List a host's reservations",
		RunE: withService(factory, func(ctx context.Context, cmd *cobra.Command, svc service.ReservationService) error {
			host, err := svc.ResolveHost(ctx, hostRef)
			if err != nil {
				return err
			}
			reservations, err := svc.ViewByHost(ctx, host.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeHeader(out, fmt.Sprintf("%s: %s, %s", host.LastName, host.City, host.State))
			return writeReservations(out, reservations, false)
		}),
	}
	c.Flags().StringVar(&hostRef, "host", "", "host id or email")
	_ = c.MarkFlagRequired("host")
	return c
}

func newMakeCmd(factory ServiceFactory) *cobra.Command {
	var hostRef, guestRef, start, end string
	var yes bool
	c := &cobra.Command{
		Use:   "make",
		Short: "Book a stay with a host",
		RunE: withService(factory, func(ctx context.Context, cmd *cobra.Command, svc service.ReservationService) error {
			startDate, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			endDate, err := parseDateFlag("end", end)
			if err != nil {
				return err
			}

			host, err := svc.ResolveHost(ctx, hostRef)
			if err != nil {
				return err
			}
			guest, err := svc.ResolveGuest(ctx, guestRef)
			if err != nil {
				return err
			}

			candidate := model.Reservation{
				StartDate: startDate,
				EndDate:   endDate,
				GuestID:   guest.ID,
				HostID:    host.ID,
			}
			total, err := svc.Quote(ctx, &candidate, host)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeSummary(out, candidate, total)
			if ok, err := confirmed(cmd, yes); err != nil || !ok {
				if err == nil {
					fmt.Fprintln(out, "Reservation not saved.")
				}
				return err
			}

			if err := svc.MakeReservation(ctx, &candidate, host); err != nil {
				return err
			}
			fmt.Fprintf(out, "Reservation %d created. Total: $%s\n", candidate.ID, candidate.Total.StringFixed(2))
			return nil
		}),
	}
	c.Flags().StringVar(&hostRef, "host", "", "host id or email")
	c.Flags().StringVar(&guestRef, "guest", "", "guest id or email")
	c.Flags().StringVar(&start, "start", "", "first night, YYYY-MM-DD")
	c.Flags().StringVar(&end, "end", "", "checkout date, YYYY-MM-DD")
	c.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	for _, name := range []string{"host", "guest", "start", "end"} {
		_ = c.MarkFlagRequired(name)
	}
	return c
}

func newEditCmd(factory ServiceFactory) *cobra.Command {
	var hostRef, start, end string
	var id int
	var yes bool
	c := &cobra.Command{
		Use:   "edit",
		Short: "Change the dates of a reservation",
		RunE: withService(factory, func(ctx context.Context, cmd *cobra.Command, svc service.ReservationService) error {
			host, err := svc.ResolveHost(ctx, hostRef)
			if err != nil {
				return err
			}
			existing, err := svc.GetReservation(ctx, host.ID, id)
			if err != nil {
				return err
			}

			candidate := *existing
			if start != "" {
				if candidate.StartDate, err = parseDateFlag("start", start); err != nil {
					return err
				}
			}
			if end != "" {
				if candidate.EndDate, err = parseDateFlag("end", end); err != nil {
					return err
				}
			}

			total, err := svc.Quote(ctx, &candidate, host)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Editing reservation %d\n", candidate.ID)
			writeSummary(out, candidate, total)
			if ok, err := confirmed(cmd, yes); err != nil || !ok {
				if err == nil {
					fmt.Fprintln(out, "Reservation not changed.")
				}
				return err
			}

			if err := svc.EditReservation(ctx, &candidate, host); err != nil {
				return err
			}
			fmt.Fprintf(out, "Reservation %d updated. Total: $%s\n", candidate.ID, candidate.Total.StringFixed(2))
			return nil
		}),
	}
	c.Flags().StringVar(&hostRef, "host", "", "host id or email")
	c.Flags().IntVar(&id, "id", 0, "reservation id")
	c.Flags().StringVar(&start, "start", "", "new first night, YYYY-MM-DD")
	c.Flags().StringVar(&end, "end", "", "new checkout date, YYYY-MM-DD")
	c.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	_ = c.MarkFlagRequired("host")
	_ = c.MarkFlagRequired("id")
	return c
}

func newCancelCmd(factory ServiceFactory) *cobra.Command {
	var hostRef string
	var id int
	var yes bool
	c := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a future reservation",
		RunE: withService(factory, func(ctx context.Context, cmd *cobra.Command, svc service.ReservationService) error {
			host, err := svc.ResolveHost(ctx, hostRef)
			if err != nil {
				return err
			}
			existing, err := svc.GetReservation(ctx, host.ID, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, existing.String())
			if ok, err := confirmed(cmd, yes); err != nil || !ok {
				if err == nil {
					fmt.Fprintln(out, "Reservation not cancelled.")
				}
				return err
			}

			if err := svc.CancelReservation(ctx, id, host.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Reservation %d cancelled.\n", id)
			return nil
		}),
	}
	c.Flags().StringVar(&hostRef, "host", "", "host id or email")
	c.Flags().IntVar(&id, "id", 0, "reservation id")
	c.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	_ = c.MarkFlagRequired("host")
	_ = c.MarkFlagRequired("id")
	return c
}

func newByGuestCmd(factory ServiceFactory) *cobra.Command {
	var guestRef string
	c := &cobra.Command{
		Use:   "by-guest",
		Short: "List a guest's reservations across all hosts",
		RunE: withService(factory, func(ctx context.Context, cmd *cobra.Command, svc service.ReservationService) error {
			guest, err := svc.ResolveGuest(ctx, guestRef)
			if err != nil {
				return err
			}
			reservations, err := svc.ViewByGuest(ctx, guest.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeHeader(out, fmt.Sprintf("%s %s", guest.FirstName, guest.LastName))
			return writeReservations(out, reservations, true)
		}),
	}
	c.Flags().StringVar(&guestRef, "guest", "", "guest id or email")
	_ = c.MarkFlagRequired("guest")
	return c
}

func newByLocationCmd(factory ServiceFactory) *cobra.Command {
	var state, city, postalCode string
	c := &cobra.Command{
		Use:   "by-location",
		Short: "List reservations at hosts matching a location",
		RunE: withService(factory, func(ctx context.Context, cmd *cobra.Command, svc service.ReservationService) error {
			reservations, err := svc.ViewByLocation(ctx, state, city, postalCode)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			parts := make([]string, 0, 3)
			for _, p := range []string{city, state, postalCode} {
				if p != "" {
					parts = append(parts, p)
				}
			}
			writeHeader(out, strings.Join(parts, ", "))
			return writeReservations(out, reservations, true)
		}),
	}
	c.Flags().StringVar(&state, "state", "", "two-letter state code")
	c.Flags().StringVar(&city, "city", "", "city")
	c.Flags().StringVar(&postalCode, "postal-code", "", "postal code")
	c.MarkFlagsOneRequired("state", "city", "postal-code")
	return c
}

func newNextIDCmd(factory ServiceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "next-id",
		Short: "Print the id the next reservation will get",
		RunE: withService(factory, func(ctx context.Context, cmd *cobra.Command, svc service.ReservationService) error {
			id, err := svc.NextID(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}),
	}
}

func confirmed(cmd *cobra.Command, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	return confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Is this okay? [y/n]: ")
}

func parseDateFlag(name, value string) (t time.Time, err error) {
	t, err = model.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return t, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return t, nil
}
