package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/madaghaxx/Noctua/internal/bootstrap"
	"github.com/madaghaxx/Noctua/internal/cache"
	"github.com/madaghaxx/Noctua/internal/cascade"
	"github.com/madaghaxx/Noctua/internal/config"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"
	"github.com/madaghaxx/Noctua/internal/service"

	"github.com/spf13/cobra"
)

// cliOperator is the admin ID used for cascades started from the CLI. No
// user row has ID 0, so the self-delete guard never trips.
const cliOperator uint = 0

type rootOptions struct {
	note string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "Noctua moderation tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		idCommand("ban <user_id>", "Ban a user", func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error {
			u, err := m.BanUser(ctx, id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "User %s (ID: %d) is now %s\n", u.Username, u.ID, u.Status)
			return err
		}),
		idCommand("unban <user_id>", "Unban a user", func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error {
			u, err := m.UnbanUser(ctx, id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "User %s (ID: %d) is now %s\n", u.Username, u.ID, u.Status)
			return err
		}),
		idCommand("promote <user_id>", "Grant the ADMIN role", func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error {
			if err := m.SetRole(ctx, id, models.RoleAdmin); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "User %d promoted to admin\n", id)
			return err
		}),
		idCommand("demote <user_id>", "Revoke the ADMIN role", func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error {
			if err := m.SetRole(ctx, id, models.RoleUser); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "User %d demoted to user\n", id)
			return err
		}),
		idCommand("delete-user <user_id>", "Delete a user and everything they own", func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error {
			sum, err := m.DeleteUser(ctx, cliOperator, id)
			if err != nil {
				return err
			}
			return printJSON(out, sum)
		}),
		idCommand("delete-post <post_id>", "Delete a post with its likes, comments and media", func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error {
			sum, err := m.DeletePost(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(out, sum)
		}),
		idCommand("hide-post <post_id>", "Hide a post from listings", func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error {
			if err := m.HidePost(ctx, id); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "Post %d hidden\n", id)
			return err
		}),
		idCommand("unhide-post <post_id>", "Restore a hidden post", func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error {
			if err := m.UnhidePost(ctx, id); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "Post %d visible\n", id)
			return err
		}),
		withNote(opts, idCommand("resolve <report_id>", "Resolve a pending report", func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error {
			r, err := m.ResolveReport(ctx, id, opts.note)
			if err != nil {
				return err
			}
			return printJSON(out, r)
		})),
		withNote(opts, idCommand("dismiss <report_id>", "Dismiss a pending report", func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error {
			r, err := m.DismissReport(ctx, id, opts.note)
			if err != nil {
				return err
			}
			return printJSON(out, r)
		})),
		newReportsCommand(),
		newAnalyticsCommand(),
	)

	return cmd
}

type action func(ctx context.Context, m *service.ModerationService, id uint, out io.Writer) error

// idCommand builds a command that takes one numeric ID argument.
func idCommand(use, short string, run action) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withModeration(cmd.Context(), func(m *service.ModerationService) error {
				return run(cmd.Context(), m, id, cmd.OutOrStdout())
			})
		},
	}
}

func withNote(opts *rootOptions, cmd *cobra.Command) *cobra.Command {
	cmd.Flags().StringVar(&opts.note, "note", "", "admin note stored on the report")
	return cmd
}

func newReportsCommand() *cobra.Command {
	var (
		status string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withModeration(cmd.Context(), func(m *service.ModerationService) error {
				reports, err := m.ListReports(cmd.Context(), models.ReportStatus(strings.ToUpper(status)), service.Page{Limit: limit})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reports)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "PENDING", "PENDING, RESOLVED, DISMISSED or empty for all")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of reports")
	return cmd
}

func newAnalyticsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Print platform counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withModeration(cmd.Context(), func(m *service.ModerationService) error {
				a, err := m.Analytics(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), a)
			})
		},
	}
}

// withModeration opens the runtime, builds the moderation service and closes
// everything once fn returns. Redis is used when reachable so the status
// cache is invalidated for running servers.
func withModeration(ctx context.Context, fn func(*service.ModerationService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	store := repository.NewStore(rt.DB)
	return fn(service.NewModerationService(store, cascade.NewDeleter(store), cache.New(rt.Redis)))
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
