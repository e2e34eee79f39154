package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlConfig struct {
	// WhatsApp session store (whatsmeow device database)
	WhatsApp struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"whatsapp"`

	// Directory for leaderboard/statistics JSON documents
	DataDir string `yaml:"data_dir"`

	Games struct {
		SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`

		TicTacToe struct {
			TimeoutMinutes int `yaml:"timeout_minutes"`
		} `yaml:"tictactoe"`

		Quiz struct {
			MaxPlayers          int `yaml:"max_players"`
			MinPlayers          int `yaml:"min_players"`
			Rounds              int `yaml:"rounds"`
			QuestionTimeSeconds int `yaml:"question_time_seconds"`
			RoundDelaySeconds   int `yaml:"round_delay_seconds"`
			LobbyTimeoutMinutes int `yaml:"lobby_timeout_minutes"`
		} `yaml:"quiz"`
	} `yaml:"games"`

	Trivia struct {
		APIBase string `yaml:"api_base"`
	} `yaml:"trivia"`
}

var Cfg yamlConfig

var configPath string

func LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults()
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &Cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	applyDefaults()
	return nil
}

func applyDefaults() {
	if Cfg.WhatsApp.DBPath == "" {
		Cfg.WhatsApp.DBPath = "data/wagames.db"
	}
	if Cfg.DataDir == "" {
		Cfg.DataDir = "data"
	}

	if Cfg.Games.SweepIntervalSeconds == 0 {
		Cfg.Games.SweepIntervalSeconds = 60
	}
	if Cfg.Games.TicTacToe.TimeoutMinutes == 0 {
		Cfg.Games.TicTacToe.TimeoutMinutes = 30
	}

	if Cfg.Games.Quiz.MaxPlayers == 0 {
		Cfg.Games.Quiz.MaxPlayers = 4
	}
	if Cfg.Games.Quiz.MinPlayers == 0 {
		Cfg.Games.Quiz.MinPlayers = 2
	}
	if Cfg.Games.Quiz.Rounds == 0 {
		Cfg.Games.Quiz.Rounds = 5
	}
	if Cfg.Games.Quiz.QuestionTimeSeconds == 0 {
		Cfg.Games.Quiz.QuestionTimeSeconds = 30
	}
	if Cfg.Games.Quiz.RoundDelaySeconds == 0 {
		Cfg.Games.Quiz.RoundDelaySeconds = 3
	}
	if Cfg.Games.Quiz.LobbyTimeoutMinutes == 0 {
		Cfg.Games.Quiz.LobbyTimeoutMinutes = 10
	}

	if Cfg.Trivia.APIBase == "" {
		Cfg.Trivia.APIBase = "https://opentdb.com/api.php"
	}
}

func LoadConfigFile() {
	configPathPtr := flag.String("c", "config.yaml", "config file path")
	flag.Parse()

	configPath = *configPathPtr
	if err := LoadConfig(configPath); err != nil {
		log.Fatalf("load config failed: %v", err)
	}
}

// GetConfigPath returns the config path
func GetConfigPath() string {
	return configPath
}

func SetConfigPath(path string) {
	configPath = path
}

func SaveConfig() error {
	if configPath == "" {
		configPath = "config.yaml"
	}
	data, err := yaml.Marshal(&Cfg)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}
	err = os.WriteFile(configPath, data, 0644)
	if err != nil {
		return fmt.Errorf("write config file failed: %w", err)
	}
	return nil
}

func ReloadConfig() error {
	if configPath == "" {
		configPath = "config.yaml"
	}
	return LoadConfig(configPath)
}
