package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"pigmea-go/internal/app"
	"pigmea-go/internal/config"
	"pigmea-go/internal/pedido"
	"pigmea-go/internal/tui"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Undo", "HistoryList").
func newApp(cmd *cobra.Command, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config (run 'pigmea config init' first): %w", err)
	}

	a, err := app.NewApp(cmd.Context(), cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "pigmea",
	Short: "Production order tracker with local undo history",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		username, _ := cmd.Flags().GetString("username")
		if username == "" {
			return fmt.Errorf("--username is required")
		}
		userID, _ := cmd.Flags().GetString("user-id")
		if userID == "" {
			userID = uuid.New().String()
		}
		displayName, _ := cmd.Flags().GetString("display-name")

		cfg := config.NewConfig(userID, username, defaults["base_dir"])
		cfg.User.DisplayName = displayName

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("User ID:  %s\n", userID)
		fmt.Printf("Username: %s\n", username)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("User:      %s (%s)\n", cfg.User.Username, cfg.User.ID)
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Database:  %s\n", cfg.Database.Type)
		fmt.Printf("History:   max %d records, %d day retention\n",
			cfg.History.MaxSize, cfg.History.RetentionDays)
		return nil
	},
}

// recordRow is the display shape of an action record for list/show output.
type recordRow struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Type        string `json:"type"`
	ContextID   string `json:"contextId"`
	ContextType string `json:"contextType"`
	Status      string `json:"status"`
	User        string `json:"user"`
	Description string `json:"description"`
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View and manage the action history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		contextID, _ := cmd.Flags().GetString("context")
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp(cmd, "HistoryList")
		if err != nil {
			return err
		}
		defer a.Close()

		records := a.Engine().History()
		if contextID != "" {
			records, err = a.Engine().GetContextHistory(cmd.Context(), contextID)
			if err != nil {
				return err
			}
		}

		rows := make([]recordRow, 0, len(records))
		for _, r := range records {
			rows = append(rows, recordRow{
				ID:          r.ID,
				Timestamp:   r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				Type:        string(r.Type),
				ContextID:   r.ContextID,
				ContextType: string(r.ContextType),
				Status:      string(r.Status),
				User:        r.UserName,
				Description: r.Description,
			})
		}

		if output == "json" {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(rows)
		}
		if output != "table" {
			return fmt.Errorf("unsupported output format %q", output)
		}

		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No actions recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTYPE\tSTATUS\tCONTEXT\tDESCRIPTION")
		fmt.Fprintln(w, "----\t----\t------\t-------\t-----------")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				row.Timestamp, row.Type, row.Status, row.ContextID, row.Description)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show ACTION_ID",
	Short: "Show one action in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "HistoryShow")
		if err != nil {
			return err
		}
		defer a.Close()

		for _, r := range a.Engine().History() {
			if r.ID != args[0] {
				continue
			}
			fmt.Printf("ID:          %s\n", r.ID)
			fmt.Printf("Time:        %s\n", r.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("Type:        %s\n", r.Type)
			fmt.Printf("Context:     %s (%s)\n", r.ContextID, r.ContextType)
			fmt.Printf("Status:      %s\n", r.Status)
			fmt.Printf("User:        %s (%s)\n", r.UserName, r.UserID)
			fmt.Printf("Description: %s\n", r.Description)
			return nil
		}
		return fmt.Errorf("action not found: %s", args[0])
	},
}

var historyUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Show how many actions arrived since last read",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "HistoryUnread")
		if err != nil {
			return err
		}
		defer a.Close()

		state := a.Engine().State()
		fmt.Printf("%d unread of %d recorded action(s)\n", state.UnreadCount, state.HistoryCount)
		return nil
	},
}

var historyReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Mark all actions as read",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "HistoryRead")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine().MarkAllAsRead(cmd.Context()); err != nil {
			return fmt.Errorf("marking history as read: %w", err)
		}
		fmt.Println("History marked as read.")
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire action history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "HistoryClear")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine().ClearHistory(cmd.Context()); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	},
}

// undo command
var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the most recent action",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Undo")
		if err != nil {
			return err
		}
		defer a.Close()

		target := a.Engine().State().LastAction
		if !a.Engine().Undo(cmd.Context()) {
			fmt.Println("Nothing to undo.")
			return nil
		}
		fmt.Printf("Undone: %s\n", target.Description)
		return nil
	},
}

// redo command
var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Redo the most recently undone action",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Redo")
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.Engine().Redo(cmd.Context()) {
			fmt.Println("Nothing to redo.")
			return nil
		}
		fmt.Printf("Redone: %s\n", a.Engine().State().LastAction.Description)
		return nil
	},
}

// purge command
var purgeCmd = &cobra.Command{
	Use:   "purge CONTEXT_ID",
	Short: "Delete all history for one context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Purge")
		if err != nil {
			return err
		}
		defer a.Close()

		count := a.Engine().PurgeContext(cmd.Context(), args[0])
		fmt.Printf("Purged %d action(s) for context %s\n", count, args[0])
		return nil
	},
}

// clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete actions older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			return fmt.Errorf("days must be greater than 0")
		}

		a, err := newApp(cmd, "Clean")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Engine().CleanOlderThan(cmd.Context(), days)
		if err != nil {
			return fmt.Errorf("cleaning history: %w", err)
		}
		fmt.Printf("Removed %d action(s) older than %d day(s)\n", count, days)
		return nil
	},
}

// tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the action history interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "TUI")
		if err != nil {
			return err
		}
		defer a.Close()

		return tui.Run(a.Engine())
	},
}

// pedido command
var pedidoCmd = &cobra.Command{
	Use:   "pedido",
	Short: "Manage production orders",
}

var pedidoCreateCmd = &cobra.Command{
	Use:   "create ID",
	Short: "Create a production order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "PedidoCreate")
		if err != nil {
			return err
		}
		defer a.Close()

		numero, _ := cmd.Flags().GetString("numero")
		cliente, _ := cmd.Flags().GetString("cliente")
		etapa, _ := cmd.Flags().GetString("etapa")
		prioridad, _ := cmd.Flags().GetString("prioridad")
		entrega, _ := cmd.Flags().GetString("entrega")
		metros, _ := cmd.Flags().GetFloat64("metros")
		secuencia, _ := cmd.Flags().GetInt64("secuencia")

		p := &pedido.Pedido{
			ID:              args[0],
			SecuenciaPedido: secuencia,
			NumeroPedido:    numero,
			Cliente:         cliente,
			EtapaActual:     etapa,
			Prioridad:       prioridad,
			FechaEntrega:    entrega,
			Metros:          metros,
		}
		if err := a.Pedidos().Create(cmd.Context(), p); err != nil {
			return err
		}
		fmt.Printf("Created pedido %s (%s)\n", p.ID, p.NumeroPedido)
		return nil
	},
}

var pedidoMoveCmd = &cobra.Command{
	Use:   "move ID ETAPA",
	Short: "Move a production order to another stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "PedidoMove")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Pedidos().Move(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Moved pedido %s to %s\n", args[0], args[1])
		return nil
	},
}

var pedidoPrioridadCmd = &cobra.Command{
	Use:   "prioridad ID PRIORIDAD",
	Short: "Change a production order's priority",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "PedidoPrioridad")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Pedidos().SetPrioridad(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Set priority of pedido %s to %s\n", args[0], args[1])
		return nil
	},
}

var pedidoEntregaCmd = &cobra.Command{
	Use:   "entrega ID FECHA",
	Short: "Change a production order's delivery date (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "PedidoEntrega")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Pedidos().SetFechaEntrega(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Set delivery date of pedido %s to %s\n", args[0], args[1])
		return nil
	},
}

var pedidoDeleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete one or more production orders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "PedidoDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			if err := a.Pedidos().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted pedido %s\n", args[0])
			return nil
		}

		count, err := a.Pedidos().BulkDelete(cmd.Context(), args)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d pedido(s)\n", count)
		return nil
	},
}

var pedidoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List production orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "PedidoList")
		if err != nil {
			return err
		}
		defer a.Close()

		pedidos, err := a.Pedidos().List(cmd.Context())
		if err != nil {
			return err
		}
		if len(pedidos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No pedidos found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tID\tNUMERO\tCLIENTE\tETAPA\tPRIORIDAD\tENTREGA")
		for _, p := range pedidos {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				strconv.FormatInt(p.SecuenciaPedido, 10), p.ID, p.NumeroPedido,
				p.Cliente, p.EtapaActual, p.Prioridad, p.FechaEntrega)
		}
		return w.Flush()
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("username", "", "Session username (required)")
	configInitCmd.Flags().String("user-id", "", "Stable user id (generated when omitted)")
	configInitCmd.Flags().String("display-name", "", "Display name shown in history")

	// history subcommands
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyUnreadCmd)
	historyCmd.AddCommand(historyReadCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyListCmd.Flags().String("context", "", "Filter by context id")
	historyListCmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	// pedido subcommands
	pedidoCmd.AddCommand(pedidoCreateCmd)
	pedidoCmd.AddCommand(pedidoMoveCmd)
	pedidoCmd.AddCommand(pedidoPrioridadCmd)
	pedidoCmd.AddCommand(pedidoEntregaCmd)
	pedidoCmd.AddCommand(pedidoDeleteCmd)
	pedidoCmd.AddCommand(pedidoListCmd)
	pedidoCreateCmd.Flags().String("numero", "", "Order number")
	pedidoCreateCmd.Flags().String("cliente", "", "Customer name")
	pedidoCreateCmd.Flags().String("etapa", "", "Current production stage")
	pedidoCreateCmd.Flags().String("prioridad", "", "Priority")
	pedidoCreateCmd.Flags().String("entrega", "", "Delivery date (YYYY-MM-DD)")
	pedidoCreateCmd.Flags().Float64("metros", 0, "Meters to produce")
	pedidoCreateCmd.Flags().Int64("secuencia", 0, "Sequence number")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(redoCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(pedidoCmd)
	cleanCmd.Flags().IntP("days", "d", 30, "Delete actions older than this many days")
}
