package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"boombot/cogs"
	"boombot/games/blackjack"
	"boombot/games/roll"
	"boombot/games/roulette"
	"boombot/games/spin"
	"boombot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var botStatus = "starting"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}
	cfg := utils.LoadConfig()

	go startHealthServer(cfg.Port)

	// Stores and their durable snapshots.
	ledger := utils.NewLedgerStore()
	spins := utils.NewSpinStore()
	ledgerSnap := utils.NewSnapshot(filepath.Join(cfg.DataDir, "explosions.json"), utils.SaveDebounce, ledger.MarshalSnapshot)
	spinSnap := utils.NewSnapshot(filepath.Join(cfg.DataDir, "spins.json"), utils.SaveDebounce, spins.MarshalSnapshot)
	if err := ledgerSnap.Load(ledger.LoadSnapshot); err != nil {
		log.Warnf("ledger snapshot load failed, starting cold: %v", err)
	} else {
		// Persist any legacy records upgraded during load.
		ledgerSnap.MarkDirty()
	}
	if err := spinSnap.Load(spins.LoadSnapshot); err != nil {
		log.Warnf("spin snapshot load failed, starting cold: %v", err)
	}
	ledger.SetOnChange(ledgerSnap.MarkDirty)
	spins.SetOnChange(spinSnap.MarkDirty)

	charges := utils.NewChargeScheduler()
	tasks, err := utils.NewTaskScheduler()
	if err != nil {
		log.Fatalf("failed to start task scheduler: %v", err)
	}

	if cfg.Token == "" {
		log.Fatal("BOT_TOKEN environment variable not set")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		log.Fatalf("failed to create Discord session: %v", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers

	mod := &utils.SessionModerator{Session: session}

	boom := cogs.NewBoomResolver(cfg, ledger, mod)
	stats := &cogs.StatsCog{Ledger: ledger}
	rollHandler := roll.NewHandler(cfg, ledger, charges, mod)
	blackjackHandler := blackjack.NewHandler(ledger)
	rouletteHandler := roulette.NewHandler(ledger)
	spinHandler := spin.NewHandler(cfg, ledger, spins, tasks, mod)

	session.AddHandler(onReady)
	session.AddHandler(boom.HandleMessage)
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Member == nil {
			return
		}
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			switch i.ApplicationCommandData().Name {
			case "roll":
				rollHandler.Handle(s, i)
			case "blackjack":
				blackjackHandler.HandleCommand(s, i)
			case "roulette":
				rouletteHandler.Handle(s, i)
			case "spin":
				spinHandler.HandleCommand(s, i)
			case "stats":
				stats.HandleStats(s, i)
			case "statsedit":
				stats.HandleStatsEdit(s, i)
			}
		case discordgo.InteractionMessageComponent:
			customID := i.MessageComponentData().CustomID
			switch {
			case strings.HasPrefix(customID, "bj_"):
				blackjackHandler.HandleInteraction(s, i)
			case strings.HasPrefix(customID, "spin_"):
				spinHandler.HandleInteraction(s, i)
			}
		}
	})

	if err := session.Open(); err != nil {
		log.Fatalf("failed to open Discord connection: %v", err)
	}

	log.Info("Bot is now running. Press CTRL+C to exit.")
	botStatus = "running"

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop

	log.Info("Gracefully shutting down...")
	botStatus = "shutting_down"

	blackjackHandler.Close()
	tasks.Shutdown()
	session.Close()

	// Flush both snapshots synchronously, bypassing the debounce.
	if err := ledgerSnap.Flush(); err != nil {
		log.Errorf("final ledger flush failed: %v", err)
	}
	if err := spinSnap.Flush(); err != nil {
		log.Errorf("final spin flush failed: %v", err)
	}
}

func onReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Infof("Logged in as %s (ID: %s)", event.User.Username, event.User.ID)
	botStatus = "online"

	if err := registerSlashCommands(s); err != nil {
		log.Errorf("failed to register slash commands: %v", err)
	}
}

func registerSlashCommands(s *discordgo.Session) error {
	commands := []*discordgo.ApplicationCommand{
		roll.RegisterCommand(),
		blackjack.RegisterCommand(),
		roulette.RegisterCommand(),
		spin.RegisterCommand(),
	}
	commands = append(commands, cogs.RegisterStatsCommands()...)

	for _, command := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", command); err != nil {
			return fmt.Errorf("failed to create command %s: %w", command.Name, err)
		}
	}

	log.Infof("Successfully registered %d slash commands", len(commands))
	return nil
}

func startHealthServer(port string) {
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","bot_status":%q}`, botStatus)
	})

	log.Infof("Health server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Warnf("health server error: %v", err)
	}
}
