package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civeni/civeni-api/cmd/app"
	"github.com/civeni/civeni-api/internal/api/handler/v1/request"
	"github.com/civeni/civeni-api/internal/domain"
	"github.com/civeni/civeni-api/internal/repository"
	"github.com/civeni/civeni-api/internal/repository/dao"
	"github.com/civeni/civeni-api/internal/service"
)

// createAdminCmd bootstraps the first admin, since the HTTP route that
// creates admins is itself behind admin auth.
func createAdminCmd() *cobra.Command {
	var req request.CreateAdminRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ConfirmPassword = req.Password
			if err := req.Validate(); err != nil {
				return err
			}

			_, postgresDB, err := app.Setup(configPath)
			if err != nil {
				return err
			}

			svc := service.NewAdminService(repository.NewAdminRepository(dao.NewAdminDAO(postgresDB)))
			admin, err := svc.Signup(cmd.Context(), domain.AdminUser{
				Email:    req.Email,
				Password: req.Password,
				Name:     req.Name,
			})
			if err != nil {
				return fmt.Errorf("svc.Signup -> %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created admin %d <%s>\n", admin.ID, admin.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password")
	cmd.Flags().StringVar(&req.Name, "name", "", "admin display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
