package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bistroboard/internal/app"
	"bistroboard/internal/config"
	"bistroboard/internal/db"
	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/migrate"
	"bistroboard/internal/outcome"
	"bistroboard/internal/repo"
	"bistroboard/internal/server"
	"bistroboard/internal/usecase"
	"bistroboard/internal/worker"
)

var rootCmd = &cobra.Command{
	Use:   "bb",
	Short: "Bistroboard CLI",
	Long: `Bistroboard runs the operator side of a restaurant dashboard.
Core concepts:
- Workspace: the .bistroboard directory holding the database; per-restaurant config lives in the DB and can be imported from YAML.
- Restaurant: owns catalog items, reports, actions, tickets, reviews, and settings.
- Reports: weekly performance reports flow generating -> generated -> sending -> sent (failed is recoverable by regenerating or resending).
- Actions: recommended follow-ups flow planned -> done/discarded; discarding needs a reason.
- Images: catalog image jobs flow generating -> ready_for_approval -> approved -> applied_to_catalog, with reject/retry/archive exits.
- Tickets: customer conversations flow open -> in_progress -> resolved -> closed.
- Reviews: each review takes at most one reply, by an operator or the auto-reply templates.
- Event log: diary of every state change, view with 'bb log tail'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("BISTROBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier")
	rootCmd.PersistentFlags().String("restaurant", "", "restaurant id (defaults to the only restaurant in the workspace)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
	_ = viper.BindPFlag("restaurant", rootCmd.PersistentFlags().Lookup("restaurant"))
}

func registerCommands() {
	rootCmd.AddCommand(restaurantCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(imageCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(actionCmd())
	rootCmd.AddCommand(ticketCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(perfCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(apikeyCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
}

// --- environment plumbing ---

type cliEnv struct {
	Repo         repo.Repo
	Service      usecase.Service
	Config       *config.Config
	RestaurantID string
}

func withEnv(ctx context.Context, fn func(context.Context, cliEnv) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	r := repo.Repo{DB: conn}
	restaurantID, cfg, err := app.ResolveRestaurantAndConfig(ctx, viper.GetString("restaurant"), "", r)
	if err != nil {
		return err
	}
	svc := usecase.New(r, events.Writer{DB: conn, Now: time.Now}, cfg)
	return fn(ctx, cliEnv{Repo: r, Service: svc, Config: cfg, RestaurantID: restaurantID})
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func actorID() string { return viper.GetString("actor-id") }

// unwrap turns a use-case result into its value or a printable error.
func unwrap[T any](res outcome.Result[T]) (T, error) {
	if res.Success() {
		return res.Value(), nil
	}
	var zero T
	kind, code, field, message := outcome.EnvelopeError(res.Err())
	switch {
	case code != "":
		return zero, fmt.Errorf("%s (%s)", message, code)
	case field != "":
		return zero, fmt.Errorf("%s: %s", field, message)
	case kind == outcome.KindUnknown:
		return zero, res.Err()
	default:
		return zero, errors.New(message)
	}
}

func printResult[T any](res outcome.Result[T]) error {
	v, err := unwrap(res)
	if err != nil {
		return err
	}
	return printJSONOrTable(v)
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// --- restaurant ---

func restaurantCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "restaurant", Short: "Manage restaurants"}
	cmd.AddCommand(restaurantCreateCmd())
	cmd.AddCommand(restaurantShowCmd())
	cmd.AddCommand(restaurantListCmd())
	return cmd
}

func restaurantCreateCmd() *cobra.Command {
	var id, name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a restaurant with default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				restaurantID, _, err := app.ResolveRestaurantAndConfig(ctx, id, name, r)
				if err != nil {
					return err
				}
				rt, err := r.GetRestaurant(ctx, restaurantID)
				if err != nil {
					return err
				}
				return printJSONOrTable(rt)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "restaurant id")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func restaurantShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active restaurant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.GetRestaurant(ctx, env.RestaurantID))
			})
		},
	}
	return cmd
}

func restaurantListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List restaurants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				items, err := r.ListRestaurants(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Reviews Auto-Reply", "Tickets Auto-Reply"})
				for _, rt := range items {
					tw.AppendRow(table.Row{rt.ID, rt.Name, rt.AutoReply.ReviewsEnabled, rt.AutoReply.TicketsEnabled})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

// --- config ---

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect restaurant config",
		Long:  "Config is the per-restaurant rulebook stored in the DB: alert thresholds, report delivery, image generator endpoint, and auto-reply templates. Import from bistroboard.yml if desired.",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configImportCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printJSONOrTable(env.Config)
			})
		},
	}
	return cmd
}

func configImportCmd() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import restaurant config from YAML into the DB",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return err
			}
			cfg, err := config.FromYAML(data)
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				restaurantID := cfg.Restaurant.ID
				if restaurantID == "" {
					restaurantID = env.RestaurantID
				}
				if err := env.Repo.UpsertRestaurantConfig(ctx, restaurantID, cfg); err != nil {
					return err
				}
				return printJSONOrTable(cfg)
			})
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to YAML config")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate stored config",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return env.Config.Validate()
			})
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	return cmd
}

// --- settings ---

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "Restaurant settings"}
	cmd.AddCommand(settingsToggleCmd())
	cmd.AddCommand(settingsAutoReplyCmd())
	return cmd
}

func settingsToggleCmd() *cobra.Command {
	var scope string
	var enabled bool
	cmd := &cobra.Command{
		Use:   "toggle-auto-reply",
		Short: "Enable or disable auto-reply for reviews or tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.ToggleAutoReply(ctx, env.RestaurantID, scope, enabled, actorID()))
			})
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "reviews or tickets")
	cmd.Flags().BoolVar(&enabled, "enabled", false, "desired state")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func settingsAutoReplyCmd() *cobra.Command {
	var reviewsEnabled, ticketsEnabled bool
	var mode, templateText string
	cmd := &cobra.Command{
		Use:   "set-auto-reply",
		Short: "Replace the auto-reply settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.UpdateAutoReplySettings(ctx, env.RestaurantID, domain.AutoReplySettings{
					ReviewsEnabled: reviewsEnabled,
					TicketsEnabled: ticketsEnabled,
					Mode:           domain.ReplyMode(mode),
					TemplateText:   templateText,
				}, actorID()))
			})
		},
	}
	cmd.Flags().BoolVar(&reviewsEnabled, "reviews", false, "auto-reply to reviews")
	cmd.Flags().BoolVar(&ticketsEnabled, "tickets", false, "auto-reply to tickets")
	cmd.Flags().StringVar(&mode, "mode", "template", "template or ai")
	cmd.Flags().StringVar(&templateText, "template", "", "template text (required for template mode)")
	return cmd
}

// --- catalog ---

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "catalog", Short: "Manage catalog items"}
	cmd.AddCommand(catalogAddCmd())
	cmd.AddCommand(catalogListCmd())
	return cmd
}

func catalogAddCmd() *cobra.Command {
	var id, name string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a catalog item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				if id == "" {
					id = uuid.NewString()
				}
				item := domain.CatalogItem{
					ID:           id,
					RestaurantID: env.RestaurantID,
					Name:         name,
					UpdatedAt:    time.Now().UTC().Format(time.RFC3339),
				}
				if err := env.Repo.UpsertCatalogItem(ctx, item); err != nil {
					return err
				}
				return printJSONOrTable(item)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "item id (random UUID if omitted)")
	cmd.Flags().StringVar(&name, "name", "", "item name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func catalogListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				items, err := env.Repo.ListCatalogItems(ctx, env.RestaurantID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Image"})
				for _, it := range items {
					tw.AppendRow(table.Row{it.ID, it.Name, deref(it.ImageURL)})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

// --- images ---

func imageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage catalog image jobs",
		Long:  "Image jobs produce candidates for catalog photos. Asynchronous modes (improve_existing, from_description) wait for the generator; from_image and direct_upload are ready immediately. Candidates need an explicit approve before apply.",
	}
	cmd.AddCommand(imageGenerateCmd())
	cmd.AddCommand(imageListCmd())
	cmd.AddCommand(imageGetCmd())
	cmd.AddCommand(imageActionCmd("approve", "Approve the candidate image", func(ctx context.Context, env cliEnv, id string) outcome.Result[domain.ImageJob] {
		return env.Service.ApproveImage(ctx, id, actorID())
	}))
	cmd.AddCommand(imageRejectCmd())
	cmd.AddCommand(imageActionCmd("apply", "Apply the approved image to the catalog", func(ctx context.Context, env cliEnv, id string) outcome.Result[domain.ImageJob] {
		return env.Service.ApplyImageToCatalog(ctx, id, actorID())
	}))
	cmd.AddCommand(imageActionCmd("retry", "Retry a failed generation", func(ctx context.Context, env cliEnv, id string) outcome.Result[domain.ImageJob] {
		return env.Service.RetryImage(ctx, id, actorID())
	}))
	cmd.AddCommand(imageActionCmd("archive", "Archive a finished job", func(ctx context.Context, env cliEnv, id string) outcome.Result[domain.ImageJob] {
		return env.Service.ArchiveImage(ctx, id, actorID())
	}))
	return cmd
}

func imageGenerateCmd() *cobra.Command {
	var itemID, mode, prompt, sourceURL string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Start an image job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.GenerateImage(ctx, usecase.GenerateImageInput{
					RestaurantID:  env.RestaurantID,
					CatalogItemID: itemID,
					Mode:          domain.ImageMode(mode),
					Prompt:        prompt,
					SourceURL:     sourceURL,
					ActorID:       actorID(),
				}))
			})
		},
	}
	cmd.Flags().StringVar(&itemID, "item", "", "catalog item id")
	cmd.Flags().StringVar(&mode, "mode", "", "improve_existing, from_description, from_image or direct_upload")
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt (required for from_description)")
	cmd.Flags().StringVar(&sourceURL, "source-url", "", "source image URL (required for from_image and direct_upload)")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("mode")
	return cmd
}

func imageListCmd() *cobra.Command {
	var f domain.ImageJobFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List image jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				jobs, err := unwrap(env.Service.ListImageJobs(ctx, env.RestaurantID, f))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(jobs)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Item", "Mode", "Status", "Attempts", "Candidate"})
				for _, j := range jobs {
					tw.AppendRow(table.Row{j.ID, j.CatalogItemID, j.Mode, j.Status, j.Attempts, deref(j.CandidateURL)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar((*string)(&f.Status), "status", "", "status filter")
	cmd.Flags().StringVar((*string)(&f.Mode), "mode", "", "mode filter")
	return cmd
}

func imageGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get image job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.GetImageJob(ctx, args[0]))
			})
		},
	}
	return cmd
}

func imageActionCmd(use, short string, fn func(context.Context, cliEnv, string) outcome.Result[domain.ImageJob]) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(fn(ctx, env, args[0]))
			})
		},
	}
}

func imageRejectCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject the candidate image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.RejectImage(ctx, args[0], actorID(), note))
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "rejection note")
	return cmd
}

// --- reports ---

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Manage weekly reports",
	}
	cmd.AddCommand(reportGenerateCmd())
	cmd.AddCommand(reportListCmd())
	cmd.AddCommand(reportGetCmd())
	cmd.AddCommand(reportSendCmd())
	cmd.AddCommand(reportCompleteCmd())
	cmd.AddCommand(reportFailCmd())
	return cmd
}

func reportGenerateCmd() *cobra.Command {
	var weekStart string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Open a weekly report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.GenerateReport(ctx, usecase.GenerateReportInput{
					RestaurantID: env.RestaurantID,
					WeekStart:    weekStart,
					ActorID:      actorID(),
				}))
			})
		},
	}
	cmd.Flags().StringVar(&weekStart, "week-start", "", "week start date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("week-start")
	return cmd
}

func reportListCmd() *cobra.Command {
	var f domain.ReportFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				reports, err := unwrap(env.Service.ListReports(ctx, env.RestaurantID, f))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(reports)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Week", "Status", "Channel", "Sent At"})
				for _, rep := range reports {
					tw.AppendRow(table.Row{rep.ID, rep.WeekStart, rep.Status, deref(rep.Channel), deref(rep.SentAt)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar((*string)(&f.Status), "status", "", "status filter")
	return cmd
}

func reportGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.GetReport(ctx, args[0]))
			})
		},
	}
	return cmd
}

func reportSendCmd() *cobra.Command {
	var channel string
	cmd := &cobra.Command{
		Use:   "send <id>",
		Short: "Request delivery of a generated report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.SendReport(ctx, args[0], channel, actorID()))
			})
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "email, whatsapp or webhook (defaults from config)")
	return cmd
}

func reportCompleteCmd() *cobra.Command {
	var artifactURL, contentHash string
	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark report generation finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.CompleteReportGeneration(ctx, args[0], artifactURL, contentHash))
			})
		},
	}
	cmd.Flags().StringVar(&artifactURL, "artifact-url", "", "report artifact URL")
	cmd.Flags().StringVar(&contentHash, "content-hash", "", "artifact content hash")
	_ = cmd.MarkFlagRequired("artifact-url")
	return cmd
}

func reportFailCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "fail <id>",
		Short: "Mark report generation failed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.FailReportGeneration(ctx, args[0], reason))
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "failure reason")
	return cmd
}

// --- actions ---

func actionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Manage recommended actions",
	}
	cmd.AddCommand(actionCreateCmd())
	cmd.AddCommand(actionListCmd())
	cmd.AddCommand(actionDoneCmd())
	cmd.AddCommand(actionDiscardCmd())
	return cmd
}

func actionCreateCmd() *cobra.Command {
	var in usecase.CreateActionInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an action",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.ActorID = actorID()
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				in.RestaurantID = env.RestaurantID
				return printResult(env.Service.CreateAction(ctx, in))
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Type, "type", "", "action type (e.g. update_images, reply_reviews)")
	cmd.Flags().StringVar(&in.Target, "target", "", "target entity")
	cmd.Flags().StringVar(&in.ReportID, "report", "", "originating report id")
	cmd.Flags().StringVar(&in.WeekStart, "week-start", "", "week start date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func actionListCmd() *cobra.Command {
	var f domain.ActionFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				actions, err := unwrap(env.Service.ListActions(ctx, env.RestaurantID, f))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(actions)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Type", "Status", "Week"})
				for _, a := range actions {
					tw.AppendRow(table.Row{a.ID, a.Title, a.Type, a.Status, deref(a.WeekStart)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar((*string)(&f.Status), "status", "", "status filter")
	cmd.Flags().StringVar(&f.ReportID, "report", "", "report filter")
	return cmd
}

func actionDoneCmd() *cobra.Command {
	var evidence string
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark action done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.MarkActionDone(ctx, args[0], actorID(), evidence))
			})
		},
	}
	cmd.Flags().StringVar(&evidence, "evidence", "", "evidence link or note")
	_ = cmd.MarkFlagRequired("evidence")
	return cmd
}

func actionDiscardCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "discard <id>",
		Short: "Discard action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.DiscardAction(ctx, args[0], actorID(), reason))
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the action is discarded")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

// --- tickets ---

func ticketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Manage support tickets",
	}
	cmd.AddCommand(ticketOpenCmd())
	cmd.AddCommand(ticketListCmd())
	cmd.AddCommand(ticketMessagesCmd())
	cmd.AddCommand(ticketReplyCmd())
	cmd.AddCommand(ticketAutoReplyCmd())
	cmd.AddCommand(ticketResolveCmd())
	cmd.AddCommand(ticketCloseCmd())
	return cmd
}

func ticketOpenCmd() *cobra.Command {
	var customer, subject, body string
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Record an incoming customer ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				now := time.Now().UTC().Format(time.RFC3339)
				t := domain.Ticket{
					ID:           uuid.NewString(),
					RestaurantID: env.RestaurantID,
					CustomerName: customer,
					Subject:      subject,
					Status:       domain.TicketOpen,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := env.Repo.InsertTicket(ctx, t); err != nil {
					return err
				}
				if body != "" {
					if err := env.Repo.InsertTicketMessage(ctx, domain.TicketMessage{
						ID:         uuid.NewString(),
						TicketID:   t.ID,
						AuthorKind: "customer",
						Body:       body,
						CreatedAt:  now,
					}); err != nil {
						return err
					}
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&subject, "subject", "", "ticket subject")
	cmd.Flags().StringVar(&body, "body", "", "first customer message")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func ticketListCmd() *cobra.Command {
	var f domain.TicketFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				tickets, err := unwrap(env.Service.ListTickets(ctx, env.RestaurantID, f))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tickets)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Customer", "Subject", "Status"})
				for _, t := range tickets {
					tw.AppendRow(table.Row{t.ID, t.CustomerName, t.Subject, t.Status})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar((*string)(&f.Status), "status", "", "status filter")
	return cmd
}

func ticketMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages <id>",
		Short: "Show ticket conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				msgs, err := unwrap(env.Service.ListTicketMessages(ctx, args[0]))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(msgs)
				}
				for _, m := range msgs {
					fmt.Printf("[%s] %s: %s\n", m.CreatedAt, m.AuthorKind, m.Body)
				}
				return nil
			})
		},
	}
	return cmd
}

func ticketReplyCmd() *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "reply <id>",
		Short: "Reply to a ticket as the operator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.ReplyToTicket(ctx, args[0], actorID(), body))
			})
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "reply body")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func ticketAutoReplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto-reply <id>",
		Short: "Send the configured auto-reply to a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.AutoReplyToTicket(ctx, args[0]))
			})
		},
	}
	return cmd
}

func ticketResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.ResolveTicket(ctx, args[0], actorID()))
			})
		},
	}
	return cmd
}

func ticketCloseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Close a resolved ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.CloseTicket(ctx, args[0], actorID()))
			})
		},
	}
	return cmd
}

// --- reviews ---

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Manage customer reviews",
	}
	cmd.AddCommand(reviewAddCmd())
	cmd.AddCommand(reviewListCmd())
	cmd.AddCommand(reviewReplyCmd())
	cmd.AddCommand(reviewAutoReplyCmd())
	return cmd
}

func reviewAddCmd() *cobra.Command {
	var author, text string
	var rating int
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an incoming review",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rating < 1 || rating > 5 {
				return fmt.Errorf("--rating must be 1..5")
			}
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				rv := domain.Review{
					ID:           uuid.NewString(),
					RestaurantID: env.RestaurantID,
					Author:       author,
					Rating:       rating,
					Text:         text,
					CreatedAt:    time.Now().UTC().Format(time.RFC3339),
				}
				if err := env.Repo.InsertReview(ctx, rv); err != nil {
					return err
				}
				return printJSONOrTable(rv)
			})
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "review author")
	cmd.Flags().IntVar(&rating, "rating", 0, "star rating 1..5")
	cmd.Flags().StringVar(&text, "text", "", "review text")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func reviewListCmd() *cobra.Command {
	var unanswered bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				reviews, err := unwrap(env.Service.ListReviews(ctx, env.RestaurantID, unanswered))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(reviews)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Author", "Rating", "Replied By"})
				for _, rv := range reviews {
					tw.AppendRow(table.Row{rv.ID, rv.Author, rv.Rating, deref(rv.RepliedBy)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unanswered, "unanswered", false, "only reviews without a reply")
	return cmd
}

func reviewReplyCmd() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "reply <id>",
		Short: "Reply to a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.ReplyToReview(ctx, args[0], actorID(), text))
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "reply text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func reviewAutoReplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto-reply <id>",
		Short: "Send the configured template reply to a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				return printResult(env.Service.AutoReplyToReview(ctx, args[0]))
			})
		},
	}
	return cmd
}

// --- performance, export, snapshots ---

func perfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perf",
		Short: "Show performance against the previous week",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				data, err := unwrap(env.Service.GetPerformanceData(ctx, env.RestaurantID))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(data)
				}
				fmt.Printf("Week of %s\n", data.Latest.WeekStart)
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Step", "Current", "Previous", "Delta", "%"})
				for _, s := range data.Steps {
					tw.AppendRow(table.Row{s.Step, s.Current, s.Previous, s.Absolute, fmt.Sprintf("%.1f", s.Percentage)})
				}
				tw.Render()
				for _, a := range data.Alerts {
					fmt.Printf("ALERT %s: %s\n", a.Code, a.Message)
				}
				return nil
			})
		},
	}
	return cmd
}

func exportCmd() *cobra.Command {
	var start, end, format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export financial data for a date window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				export, err := unwrap(env.Service.ExportFinancialData(ctx, usecase.ExportInput{
					RestaurantID: env.RestaurantID,
					StartDate:    start,
					EndDate:      end,
					Format:       format,
					ActorID:      actorID(),
				}))
				if err != nil {
					return err
				}
				if out != "" {
					if err := os.WriteFile(out, export.Data, 0o644); err != nil {
						return err
					}
					fmt.Printf("Wrote %s export to %s\n", export.Format, out)
					return nil
				}
				_, err = os.Stdout.Write(export.Data)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or json")
	cmd.Flags().StringVar(&out, "out", "", "output file (stdout if omitted)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "snapshot", Short: "Manage weekly metric snapshots"}
	cmd.AddCommand(snapshotAddCmd())
	cmd.AddCommand(snapshotListCmd())
	return cmd
}

func snapshotAddCmd() *cobra.Command {
	var weekStart string
	var impressions, menuViews, orders, revenueCents int64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a weekly funnel snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := time.Parse("2006-01-02", weekStart); err != nil {
				return fmt.Errorf("--week-start %q is not a valid date (YYYY-MM-DD)", weekStart)
			}
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				s := domain.Snapshot{
					ID:           uuid.NewString(),
					RestaurantID: env.RestaurantID,
					WeekStart:    weekStart,
					Impressions:  impressions,
					MenuViews:    menuViews,
					Orders:       orders,
					RevenueCents: revenueCents,
					CreatedAt:    time.Now().UTC().Format(time.RFC3339),
				}
				if err := env.Repo.InsertSnapshot(ctx, s); err != nil {
					return err
				}
				return printJSONOrTable(s)
			})
		},
	}
	cmd.Flags().StringVar(&weekStart, "week-start", "", "week start date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&impressions, "impressions", 0, "impressions")
	cmd.Flags().Int64Var(&menuViews, "menu-views", 0, "menu views")
	cmd.Flags().Int64Var(&orders, "orders", 0, "orders")
	cmd.Flags().Int64Var(&revenueCents, "revenue-cents", 0, "revenue in cents")
	_ = cmd.MarkFlagRequired("week-start")
	return cmd
}

func snapshotListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				snaps, err := env.Repo.GetSnapshots(ctx, env.RestaurantID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(snaps)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Week", "Impressions", "Menu Views", "Orders", "Revenue"})
				for _, s := range snaps {
					tw.AppendRow(table.Row{s.WeekStart, s.Impressions, s.MenuViews, s.Orders, fmt.Sprintf("%.2f", float64(s.RevenueCents)/100)})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

// --- log, apikey ---

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				evts, err := env.Repo.ListEvents(ctx, env.RestaurantID, n)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(evts)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Time", "Type", "Entity", "Actor"})
				for _, e := range evts {
					tw.AppendRow(table.Row{e.ID, e.TS, e.Type, e.EntityKind + "/" + e.EntityID, e.ActorID})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	return cmd
}

func apikeyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "apikey", Short: "Manage API keys"}
	cmd.AddCommand(apikeyCreateCmd())
	cmd.AddCommand(apikeyListCmd())
	cmd.AddCommand(apikeyRevokeCmd())
	return cmd
}

func apikeyCreateCmd() *cobra.Command {
	var actor, name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key (the raw key is shown once)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if actor == "" {
				actor = actorID()
			}
			raw := "bb_" + strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				key := domain.APIKey{
					ID:        uuid.NewString(),
					ActorID:   actor,
					Name:      name,
					KeyHash:   repo.HashAPIKey(raw),
					CreatedAt: time.Now().UTC().Format(time.RFC3339),
				}
				if err := r.InsertAPIKey(ctx, key); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"id": key.ID, "actor_id": key.ActorID, "name": key.Name, "key": raw})
				}
				fmt.Printf("API key for %s: %s\n", actor, raw)
				fmt.Println("Store it now; only the hash is kept.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "actor the key authenticates as (defaults to --actor-id)")
	cmd.Flags().StringVar(&name, "name", "", "key label")
	return cmd
}

func apikeyListCmd() *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				keys, err := r.ListAPIKeys(ctx, actor)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(keys)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Actor", "Name", "Created"})
				for _, k := range keys {
					tw.AppendRow(table.Row{k.ID, k.ActorID, k.Name, k.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "filter by actor")
	return cmd
}

func apikeyRevokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				return r.DeleteAPIKey(ctx, args[0])
			})
		},
	}
	return cmd
}

// --- serve, worker ---

func serveCmd() *cobra.Command {
	var addr, basePath string
	var withWorker, allowLegacyActor bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			r := repo.Repo{DB: conn}
			_, cfg, err := app.ResolveRestaurantAndConfig(cmd.Context(), viper.GetString("restaurant"), "", r)
			if err != nil {
				return err
			}
			svc := usecase.New(r, events.Writer{DB: conn, Now: time.Now}, cfg)
			authCfg := server.AuthConfig{
				JWTSecret:              os.Getenv("BISTROBOARD_JWT_SECRET"),
				AllowLegacyActorHeader: allowLegacyActor,
			}
			if authCfg.JWTSecret == "" {
				return fmt.Errorf("BISTROBOARD_JWT_SECRET is required for bearer auth")
			}
			handler, err := server.New(server.Config{Service: svc, Repo: r, BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			if withWorker {
				worker.Start(svc, r, cfg)
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Bistroboard API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	cmd.Flags().BoolVar(&withWorker, "with-worker", true, "run the delivery/generation worker alongside the API")
	cmd.Flags().BoolVar(&allowLegacyActor, "allow-legacy-actor-header", false, "accept unauthenticated X-Actor-Id (dev only)")
	return cmd
}

func workerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Background delivery and generation worker",
	}
	cmd.AddCommand(workerRunCmd())
	cmd.AddCommand(workerPollCmd())
	return cmd
}

func workerRunCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the worker loop in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				d := &worker.Dispatcher{
					Service:  env.Service,
					Repo:     env.Repo,
					Config:   env.Config,
					Interval: interval,
				}
				fmt.Printf("Worker polling every %s for %s\n", interval, env.RestaurantID)
				d.Run(ctx)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval")
	return cmd
}

func workerPollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Drain pending events once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env cliEnv) error {
				d := &worker.Dispatcher{Service: env.Service, Repo: env.Repo, Config: env.Config}
				d.Poll(ctx)
				return nil
			})
		},
	}
	return cmd
}
