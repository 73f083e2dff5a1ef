package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"citycompass/config"
	"citycompass/repository"
	"citycompass/services"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the bootstrap departments and sample issues",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store repository.Store) error {
			return services.Seed(ctx, store)
		})
	},
}

var departmentCmd = &cobra.Command{
	Use:     "department",
	Aliases: []string{"dept"},
	Short:   "Manage department accounts",
}

var departmentRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new (unverified) department",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f := cmd.Flags()
		var reg services.Registration
		reg.Name, _ = f.GetString("name")
		reg.Email, _ = f.GetString("email")
		reg.Code, _ = f.GetString("code")
		reg.Password, _ = f.GetString("password")
		reg.Category, _ = f.GetString("category")
		reg.Address, _ = f.GetString("address")
		reg.Phone, _ = f.GetString("phone")

		return withStore(cmd.Context(), func(ctx context.Context, store repository.Store) error {
			dept, err := services.NewCredentialStore(store.Departments()).Register(ctx, reg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s); run `citycompass department verify %s` to enable login\n",
				dept.Code, dept.Name, dept.Code)
			return nil
		})
	},
}

var departmentVerifyCmd = &cobra.Command{
	Use:   "verify <department-id>",
	Short: "Allow a department to log in (or revoke with --revoke)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		revoke, _ := cmd.Flags().GetBool("revoke")
		return withStore(cmd.Context(), func(ctx context.Context, store repository.Store) error {
			if err := services.NewCredentialStore(store.Departments()).SetVerified(ctx, args[0], !revoke); err != nil {
				return err
			}
			state := "verified"
			if revoke {
				state = "revoked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], state)
			return nil
		})
	},
}

var departmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List departments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store repository.Store) error {
			depts, err := services.NewCredentialStore(store.Departments()).List(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DEPARTMENT ID\tNAME\tCATEGORY\tEMAIL\tVERIFIED")
			for _, d := range depts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", d.Code, d.Name, d.Category, d.Email, d.IsVerified)
			}
			return w.Flush()
		})
	},
}

func init() {
	f := departmentRegisterCmd.Flags()
	f.String("name", "", "Display name")
	f.String("email", "", "Login email")
	f.String("code", "", "Department ID used to log in (e.g. PRK004)")
	f.String("password", "", "Initial password (min 8 characters)")
	f.String("category", "", "Issue category the department handles")
	f.String("address", "", "Postal address")
	f.String("phone", "", "Contact phone")
	for _, name := range []string{"name", "email", "code", "password", "category", "address", "phone"} {
		_ = departmentRegisterCmd.MarkFlagRequired(name)
	}

	departmentVerifyCmd.Flags().Bool("revoke", false, "Revoke verification instead")

	departmentCmd.AddCommand(departmentRegisterCmd, departmentVerifyCmd, departmentListCmd)
	rootCmd.AddCommand(seedCmd, departmentCmd)
}

func withStore(ctx context.Context, fn func(ctx context.Context, store repository.Store) error) error {
	store, err := config.OpenStore(ctx, config.Load())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}
