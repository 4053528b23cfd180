package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/crewplan/modules/planning/presentation/controllers/dtos"
	"github.com/iota-uz/crewplan/modules/planning/services"
)

type bookingsOptions struct {
	crew         string
	vehicles     string
	start        string
	end          string
	appointments bool
	unfilled     bool
}

func (o bookingsOptions) period() (time.Time, time.Time, error) {
	start, err := time.Parse(dtos.DateLayout, o.start)
	if err != nil {
		return time.Time{}, time.Time{}, withCode(exitValidation, fmt.Errorf("--start: %w", err))
	}
	end, err := time.Parse(dtos.DateLayout, o.end)
	if err != nil {
		return time.Time{}, time.Time{}, withCode(exitValidation, fmt.Errorf("--end: %w", err))
	}
	return start, end, nil
}

func newBookingsCmd(opts *rootOptions) *cobra.Command {
	var bo bookingsOptions

	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Resolve bookings for crew, vehicles or unfilled positions",
		Example: "  crewplanctl bookings --crew 1,2 --start 2024-01-01 --end 2024-01-07\n" +
			"  crewplanctl bookings --unfilled --start 2024-01-01 --end 2024-01-31",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := bo.period()
			if err != nil {
				return err
			}
			svc := service[services.BookingService](opts)

			var res services.Result
			switch {
			case bo.unfilled:
				res, err = svc.Unfilled(cmd.Context(), services.UnfilledQuery{Start: start, End: end})
			case bo.vehicles != "":
				ids, perr := dtos.ParseIDs(bo.vehicles)
				if perr != nil {
					return withCode(exitValidation, fmt.Errorf("--vehicles: %w", perr))
				}
				res, err = svc.VehicleBookings(cmd.Context(), services.Query{SubjectIDs: ids, Start: start, End: end})
			default:
				ids, perr := dtos.ParseIDs(bo.crew)
				if perr != nil {
					return withCode(exitValidation, fmt.Errorf("--crew: %w", perr))
				}
				res, err = svc.ResolveBookings(cmd.Context(), services.Query{
					SubjectIDs:          ids,
					Start:               start,
					End:                 end,
					IncludeAppointments: bo.appointments,
				})
			}
			if err != nil {
				return classify(err)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&bo.crew, "crew", "", "Comma-separated crew ids")
	cmd.Flags().StringVar(&bo.vehicles, "vehicles", "", "Comma-separated vehicle ids")
	cmd.Flags().StringVar(&bo.start, "start", "", "First day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&bo.end, "end", "", "Last day, YYYY-MM-DD (required)")
	cmd.Flags().BoolVar(&bo.appointments, "appointments", true, "Include crew appointments")
	cmd.Flags().BoolVar(&bo.unfilled, "unfilled", false, "List unfilled positions of confirmed projects instead")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	cmd.MarkFlagsMutuallyExclusive("crew", "vehicles", "unfilled")
	return cmd
}
