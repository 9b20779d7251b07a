package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRoot(factory ServiceFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "hostbook",
		Short:         "Manage host reservation calendars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(NewReservationsCmd(factory))
	root.AddCommand(newNextIDCmd(factory))
	root.AddCommand(NewEventsCmd())

	return root
}
