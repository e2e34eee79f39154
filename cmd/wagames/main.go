package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	waLog "go.mau.fi/whatsmeow/util/log"

	"go-wagames/cmds"
	"go-wagames/config"
	"go-wagames/game"
	"go-wagames/storage"
	"go-wagames/trivia"
	"go-wagames/wabot"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment as-is")
	}
	config.LoadConfigFile()

	fileStore, err := storage.NewFileStore(config.Cfg.DataDir, waLog.Stdout("Storage", "INFO", true))
	if err != nil {
		log.Fatalf("init data dir: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(config.Cfg.WhatsApp.DBPath), 0755); err != nil {
		log.Fatalf("create session db directory: %v", err)
	}
	client, err := wabot.New(config.Cfg.WhatsApp.DBPath, waLog.Stdout("Bot", "INFO", true))
	if err != nil {
		log.Fatalf("init whatsapp client: %v", err)
	}

	recorder := game.NewRecorder(fileStore, waLog.Stdout("Stats", "INFO", true))
	source := trivia.NewSource(config.Cfg.Trivia.APIBase, nil, waLog.Stdout("Trivia", "INFO", true))

	manager := game.NewManager(game.Config{
		TTTTimeout:       time.Duration(config.Cfg.Games.TicTacToe.TimeoutMinutes) * time.Minute,
		QuizLobbyTimeout: time.Duration(config.Cfg.Games.Quiz.LobbyTimeoutMinutes) * time.Minute,
		SweepInterval:    time.Duration(config.Cfg.Games.SweepIntervalSeconds) * time.Second,
		QuestionTime:     time.Duration(config.Cfg.Games.Quiz.QuestionTimeSeconds) * time.Second,
		RoundDelay:       time.Duration(config.Cfg.Games.Quiz.RoundDelaySeconds) * time.Second,
		Rounds:           config.Cfg.Games.Quiz.Rounds,
		MaxPlayers:       config.Cfg.Games.Quiz.MaxPlayers,
		MinPlayers:       config.Cfg.Games.Quiz.MinPlayers,
	}, game.NewSessionStore(), recorder, source, client.SendText, waLog.Stdout("Games", "INFO", true))

	registry := cmds.NewRegistry(manager, client.SendText, waLog.Stdout("Cmds", "INFO", true))
	client.OnMessage(func(msg *wabot.Message) {
		registry.Handle(msg)
	})

	if err := client.Connect(context.Background()); err != nil {
		log.Fatalf("connect: %v", err)
	}
	manager.StartSweeper()
	log.Println("bot is online")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	manager.Stop()
	client.Disconnect()
}
