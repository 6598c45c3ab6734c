package commands

import (
	"github.com/ishikisiko/match-telemetry/models"
	"github.com/ishikisiko/match-telemetry/services"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user, typically the owner of generated data",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		nickname, _ := cmd.Flags().GetString("nickname")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")

		user, err := services.NewAuthService(a.store.Users).CreateUser(commandContext(cmd), services.CreateUserInput{
			Nickname: nickname,
			Email:    email,
			Password: password,
			Role:     models.UserRole(role),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), user)
	},
}

func init() {
	userCreateCmd.Flags().String("nickname", "", "Unique nickname")
	userCreateCmd.Flags().String("email", "", "Unique email")
	userCreateCmd.Flags().String("password", "", "Password, at least 8 characters")
	userCreateCmd.Flags().String("role", string(models.RolePlayer), "Role: admin or player")
	_ = userCreateCmd.MarkFlagRequired("nickname")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
}
