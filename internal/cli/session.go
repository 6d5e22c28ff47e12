package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/procurement-dashboard/internal/core"
	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

var (
	loginEmail    string
	loginPassword string
	loginRole     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a dashboard session",
	Long: `Start a dashboard session. Any non-empty email and password are accepted;
the role (admin or officer) decides which views are available.

The session is saved in .pdb_session.yaml under the pdb home directory and
stays active until 'pdb logout'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Sessions == nil {
			return fmt.Errorf("session manager not initialized")
		}
		session, err := Sessions.Login(loginEmail, loginPassword, models.Role(loginRole))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", session.Email, session.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the dashboard session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Sessions == nil {
			return fmt.Errorf("session manager not initialized")
		}
		if err := Sessions.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := requireSession()
		if errors.Is(err, core.ErrNotLoggedIn) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s), logged in %s\n",
			session.Email, session.Role, session.LoggedInAt.Format("2006-01-02 15:04 UTC"))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password")
	loginCmd.Flags().StringVar(&loginRole, "role", string(models.RoleOfficer), "Role: admin or officer")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
