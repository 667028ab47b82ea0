// ABOUTME: Entry point for the school partner CRM
// ABOUTME: Routes to the CLI, TUI, HTTP API, or MCP server based on arguments
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/charm"
	"github.com/harperreed/schoolcrm/cli"
	"github.com/harperreed/schoolcrm/config"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/handlers"
	"github.com/harperreed/schoolcrm/logging"
	"github.com/harperreed/schoolcrm/tui"
	"github.com/harperreed/schoolcrm/web"
)

const version = "0.1.0"

var errCalendarNotConfigured = errors.New("calendar not configured: set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/schoolcrm/crm.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("schoolcrm version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *initOnly {
		database := openDatabase(cfg)
		_ = database.Close()
		log.Info("database initialized", "path", cfg.DBPath)
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "mcp":
		database := openDatabase(cfg)
		defer database.Close()

		check(cli.MCPCommand(handlers.Options{
			Store:     db.NewStore(database),
			Calendar:  calendarClient(cfg),
			StaffLead: cfg.StaffLead,
			Version:   version,
		}))

	case "serve":
		database := openDatabase(cfg)
		defer database.Close()

		check(cli.ServeCommand(web.Options{
			Store:         db.NewStore(database),
			Calendar:      calendarClient(cfg),
			StaffLead:     cfg.StaffLead,
			CalendarRate:  cfg.CalendarRate,
			CalendarBurst: cfg.CalendarBurst,
		}, cfg.ListenAddr, commandArgs))

	case "tui":
		database := openDatabase(cfg)
		defer database.Close()

		check(tui.Run(tui.Options{
			Store:     db.NewStore(database),
			Calendar:  calendarClient(cfg),
			StaffLead: cfg.StaffLead,
		}))

	case "crm":
		if len(commandArgs) == 0 {
			fmt.Println("Error: crm requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		database := openDatabase(cfg)
		defer database.Close()
		log.Debug("CRM database", "path", cfg.DBPath)

		runCRM(cfg, db.NewStore(database), commandArgs[0], commandArgs[1:])

	case "pipeline":
		database := openDatabase(cfg)
		defer database.Close()

		check(cli.PipelineCommand(db.NewStore(database), commandArgs))

	case "calendar":
		if len(commandArgs) == 0 {
			fmt.Println("Error: calendar requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		runCalendar(cfg, commandArgs[0], commandArgs[1:])

	case "charm":
		if len(commandArgs) == 0 {
			fmt.Println("Error: charm requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		client, err := charm.Open(nil)
		check(err)

		switch commandArgs[0] {
		case "link":
			check(charm.LinkCommand(client, commandArgs[1:]))
		case "status":
			check(charm.StatusCommand(client, commandArgs[1:]))
		case "sync":
			check(charm.SyncCommand(client, commandArgs[1:]))
		case "unshare":
			check(charm.UnshareCommand(client, commandArgs[1:]))
		default:
			fmt.Printf("Unknown charm command: %s\n\n", commandArgs[0])
			printUsage()
			os.Exit(1)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runCRM(cfg *config.Config, store *db.Store, command string, args []string) {
	var err error

	switch command {
	// Partner commands
	case "add-partner":
		err = cli.AddPartnerCommand(store, cfg.StaffLead, args)
	case "list-partners":
		err = cli.ListPartnersCommand(store, calendarClient(cfg), args)
	case "show-partner":
		err = cli.ShowPartnerCommand(store, calendarClient(cfg), args)
	case "update-partner":
		err = cli.UpdatePartnerCommand(store, args)
	case "delete-partner":
		err = cli.DeletePartnerCommand(store, args)

	// Contact commands
	case "add-contact":
		err = cli.AddContactCommand(store, args)
	case "update-contact":
		err = cli.UpdateContactCommand(store, args)
	case "delete-contact":
		err = cli.DeleteContactCommand(store, args)
	case "set-primary":
		err = cli.SetPrimaryCommand(store, args)

	// Note and task commands
	case "add-note":
		err = cli.AddNoteCommand(store, args)
	case "delete-note":
		err = cli.DeleteNoteCommand(store, args)
	case "add-task":
		err = cli.AddTaskCommand(store, args)
	case "complete-task":
		err = cli.CompleteTaskCommand(store, args)
	case "task-status":
		err = cli.TaskStatusCommand(store, args)
	case "list-tasks":
		err = cli.ListTasksCommand(store, args)

	// Onboarding commands
	case "onboarding":
		err = cli.OnboardingCommand(store, args)
	case "add-onboarding":
		err = cli.AddOnboardingCommand(store, args)
	case "toggle-onboarding":
		err = cli.ToggleOnboardingCommand(store, args)

	// Other records
	case "add-date":
		err = cli.AddDateCommand(store, args)
	case "add-attachment":
		err = cli.AddAttachmentCommand(store, args)
	case "add-school":
		err = cli.AddSchoolCommand(store, args)

	default:
		fmt.Printf("Unknown crm command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	check(err)
}

func runCalendar(cfg *config.Config, command string, args []string) {
	switch command {
	case "auth":
		if !cfg.CalendarConfigured() {
			check(errCalendarNotConfigured)
		}
		oauth := calendar.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirect)
		check(cli.CalendarAuthCommand(oauth, tokenStore(cfg), args))
	case "status":
		check(cli.CalendarStatusCommand(tokenStore(cfg), args))
	case "next":
		client := calendarClient(cfg)
		if client == nil {
			check(errCalendarNotConfigured)
		}
		database := openDatabase(cfg)
		defer database.Close()
		check(cli.CalendarNextCommand(db.NewStore(database), client, args))
	default:
		fmt.Printf("Unknown calendar command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func openDatabase(cfg *config.Config) *sql.DB {
	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database", "path", cfg.DBPath, "error", err)
	}
	return database
}

// tokenStore picks where the delegated calendar credential lives.
func tokenStore(cfg *config.Config) calendar.TokenStore {
	if cfg.TokenStore == "charm" {
		client, err := charm.Open(nil)
		if err != nil {
			log.Fatal("failed to open charm store", "error", err)
		}
		return charm.NewTokenStore(client)
	}
	return calendar.NewFileTokenStore(cfg.TokenPath)
}

// calendarClient returns nil when no OAuth client is configured; every
// consumer treats a nil client as "no meetings".
func calendarClient(cfg *config.Config) *calendar.Client {
	if !cfg.CalendarConfigured() {
		log.Debug("calendar lookups disabled; no OAuth client configured")
		return nil
	}
	oauth := calendar.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirect)
	provider := calendar.NewProvider(oauth, tokenStore(cfg))
	return calendar.NewClient(provider, calendar.NewService(&calendar.GoogleSource{}))
}

func check(err error) {
	if err != nil {
		log.Fatal("command failed", "error", err)
	}
}

func printUsage() {
	fmt.Printf(`schoolcrm v%s - School partner CRM

USAGE:
  schoolcrm [global flags] <command> [subcommand] [flags] [args]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/schoolcrm/crm.db)
  --init                 Initialize database and exit

COMMANDS:
  crm                    Partner, contact, note, task, and onboarding commands
  pipeline               Pipeline dashboard or DOT graph
  calendar               Google Calendar connection and lookups
  charm                  Charm sync for the calendar credential
  tui                    Interactive terminal UI
  serve                  HTTP JSON API
  mcp                    MCP server for Claude Desktop

  Partners may be given by id, unique id prefix, or exact name.
  Flags come before positional arguments.

CRM COMMANDS:
  schoolcrm crm add-partner        Add a partner with the onboarding checklist
    --name <name>                    School or district name (required)
    --status <status>                Pipeline status (default: New Lead)
    --source, --priority, --district, --city, --state, --students, --lead
    --follow-up <YYYY-MM-DD>         Next follow-up date

  schoolcrm crm list-partners      List partners with next action
    --query <text>                   Search by name or district
    --status <status>                Filter by status
    --limit <n>                      Max results (default: 50)

  schoolcrm crm show-partner <partner>
  schoolcrm crm update-partner [flags] <partner>
    --name, --status, --source, --step, --health, --priority, --lead, --summary
    --value <cents>                  Contract value
    --follow-up, --deadline <date>   'none' clears the date
  schoolcrm crm delete-partner <partner>

  schoolcrm crm add-contact [flags] <partner>
    --name, --email (required), --role, --phone, --primary
  schoolcrm crm update-contact [flags] <partner> <contact-id>
  schoolcrm crm delete-contact <partner> <contact-id>
  schoolcrm crm set-primary <partner> <contact-id>

  schoolcrm crm add-note [flags] <partner>
    --type <type>                    Call, Email, Meeting, Site Visit, Internal Note
    --date, --author, --content
    --follow-up <task> --due <date>  Attach a follow-up task
  schoolcrm crm delete-note <partner> <note-id>

  schoolcrm crm add-task [flags] <partner>
    --task (required), --due, --notes, --status
  schoolcrm crm complete-task [--undo] <partner> <task-id>
  schoolcrm crm task-status <partner> <task-id> <status>
  schoolcrm crm list-tasks
    --search, --status (active|all|<status>), --type (task|followup|onboarding|all)
    --partner, --owner

  schoolcrm crm onboarding <partner>
  schoolcrm crm add-onboarding <partner> [text]
  schoolcrm crm toggle-onboarding <partner> <step-number>

  schoolcrm crm add-date --title <t> --date <d> [--notes <n>] <partner>
  schoolcrm crm add-attachment --name <n> --url <u> [--type file|link] <partner>
  schoolcrm crm add-school --name <n> [--partner <p>] [--students n] [--staff n] [--type t]

PIPELINE:
  schoolcrm pipeline [--graph] [--output <file>]

CALENDAR:
  schoolcrm calendar auth [--manual]   Connect Google Calendar (read-only)
  schoolcrm calendar status            Show the stored credential
  schoolcrm calendar next <partner>    Show the partner's next action

CHARM:
  schoolcrm charm link|status|sync|unshare

SERVER:
  schoolcrm serve [--addr :8080]
  schoolcrm mcp

EXAMPLES:
  schoolcrm crm add-partner --name "Lincoln Elementary" --city Austin --state TX
  schoolcrm crm add-note --type Call --content "Intro call" --follow-up "Send proposal" --due 2025-01-10 "Lincoln Elementary"
  schoolcrm crm list-tasks --status all --type followup
  schoolcrm pipeline --graph --output pipeline.dot

`, version)
}
