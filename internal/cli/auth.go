package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to YouTube Analytics",
	Long: `Run the two-phase authorization flow: open the printed consent URL
in a browser, grant access, then paste the code Google shows back here.

The resulting credential is stored under the token directory and reused by
later runs until revoked.`,
	RunE: runAuth,
}

func runAuth(cmd *cobra.Command, args []string) error {
	container, err := buildContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	userID := globalFlags.userID
	if container.Auth.Authorized(userID) {
		fmt.Println("Already authorized. Delete the token file to re-authorize.")
		return nil
	}

	url := container.Auth.BeginAuth(userID)
	fmt.Println("=== YouTube API Authorization ===")
	fmt.Println("Go to the following link in your browser:")
	fmt.Println(url)
	fmt.Println()
	fmt.Println("After authorization, enter the code here:")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return fmt.Errorf("unable to read authorization code: %w", err)
	}

	if _, err := container.Auth.CompleteAuth(cmd.Context(), userID, code); err != nil {
		return err
	}

	fmt.Println("\n✅ Authorization successful! Token saved.")
	return nil
}
