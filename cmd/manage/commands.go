package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"buildhub/internal/app"
	"buildhub/internal/model"
	"buildhub/internal/service"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(true, func(c *app.Container) error {
			fmt.Println("✓ Database schema is up to date")
			return nil
		})
	},
}

var rulesFile string

var seedRulesCmd = &cobra.Command{
	Use:   "seed-rules",
	Short: "Create or update moderation rules from a YAML file",
	Long: `Reads a YAML document with a top-level "rules" list. Rules are matched by
name: existing rules are updated, new ones created. Nothing is written if any
rule in the file is invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(rulesFile)
		if err != nil {
			return fmt.Errorf("open rules file: %w", err)
		}
		defer f.Close()

		return withContainer(false, func(c *app.Container) error {
			result, err := c.Services.ModerationRule.SeedFromYAML(f)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Moderation rules seeded: %d created, %d updated\n", result.Created, result.Updated)
			return nil
		})
	},
}

var rescoreCmd = &cobra.Command{
	Use:   "rescore-comments",
	Short: "Re-run automatic moderation over the pending comment queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(false, func(c *app.Container) error {
			result, err := c.Services.Comment.Rescore(systemActor)
			if err != nil {
				return err
			}

			fmt.Printf("✓ %d pending comments processed\n", result.Processed)
			statuses := make([]string, 0, len(result.Changed))
			for status := range result.Changed {
				statuses = append(statuses, status)
			}
			sort.Strings(statuses)
			for _, status := range statuses {
				fmt.Printf("  moved to %s: %d\n", status, result.Changed[status])
			}
			return nil
		})
	},
}

var sendNewsletterCmd = &cobra.Command{
	Use:   "send-newsletter [newsletter-id]",
	Short: "Send a drafted newsletter to every confirmed subscriber",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(false, func(c *app.Container) error {
			n, err := c.Services.Newsletter.Send(context.Background(), systemActor, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("✓ Newsletter %q sent to %d subscribers\n", n.Subject, n.RecipientCount)
			return nil
		})
	},
}

var (
	adminEmail    string
	adminUsername string
	adminName     string
	adminPassword string
	adminRole     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a staff or admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminPassword == "" {
			adminPassword = os.Getenv("ADMIN_PASSWORD")
		}
		if adminRole != model.RoleAdmin && adminRole != model.RoleStaff {
			return fmt.Errorf("role must be %s or %s", model.RoleAdmin, model.RoleStaff)
		}
		if len(adminPassword) < 8 {
			return fmt.Errorf("password must be at least 8 characters (use --password or ADMIN_PASSWORD)")
		}

		return withContainer(false, func(c *app.Container) error {
			user, err := c.Services.Auth.CreateUser(service.RegisterRequest{
				Email:    adminEmail,
				Username: adminUsername,
				FullName: adminName,
				Password: adminPassword,
			}, adminRole)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Created %s %s (%s)\n", user.Role, user.Username, user.ID)
			return nil
		})
	},
}

func init() {
	seedRulesCmd.Flags().StringVarP(&rulesFile, "file", "f", "configs/moderation_rules.yaml", "YAML file with moderation rules")

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "email address")
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "username")
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "full name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password (defaults to $ADMIN_PASSWORD)")
	createAdminCmd.Flags().StringVar(&adminRole, "role", model.RoleAdmin, "admin or staff")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(migrateCmd, seedRulesCmd, rescoreCmd, sendNewsletterCmd, createAdminCmd)
}
