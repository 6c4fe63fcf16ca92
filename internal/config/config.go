package config

import (
	"fmt"
	"log"

	"github.com/ilyakaznacheev/cleanenv"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env:"PORT" env-default:"8080"`
}

type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env-default:"true"`
	Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
	User     string `yaml:"user" env:"MONGO_USER" env-default:""`
	Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"evtickets"`
}

type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file" env:"FIREBASE_CREDENTIALS" env-default:"admin-sdk-credentials.json"`
	ProjectID       string `yaml:"project_id" env:"FIREBASE_PROJECT_ID" env-default:""`
}

type RedisConfig struct {
	Enabled    bool   `yaml:"enabled" env-default:"false"`
	URL        string `yaml:"url" env:"REDIS_URL" env-default:"redis://127.0.0.1:6379/0"`
	TTLMinutes int    `yaml:"ttl_minutes" env-default:"30"`
}

type TelegramConfig struct {
	Enabled  bool    `yaml:"enabled" env-default:"false"`
	ApiKey   string  `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
	ChatIds  []int64 `yaml:"chat_ids" env-default:""`
	MinLevel string  `yaml:"min_level" env-default:"error"`
}

type TicketsConfig struct {
	TokenBytes  int   `yaml:"token_bytes" env-default:"16"`
	QRModulePx  uint8 `yaml:"qr_module_px" env-default:"10"`
	QRQuietZone int   `yaml:"qr_quiet_zone" env-default:"4"`
}

type Config struct {
	Env        string         `yaml:"env" env:"ENV" env-default:"local"`
	Listen     Listen         `yaml:"listen"`
	Mongo      MongoConfig    `yaml:"mongo"`
	Firebase   FirebaseConfig `yaml:"firebase"`
	Redis      RedisConfig    `yaml:"redis"`
	Telegram   TelegramConfig `yaml:"telegram"`
	Tickets    TicketsConfig  `yaml:"tickets"`
	TimeoutSec int            `yaml:"timeout_sec" env-default:"10"`
}

func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		return nil, fmt.Errorf("config: %s; %s", err, desc)
	}
	return conf, nil
}

func MustLoad(path string) *Config {
	conf, err := Load(path)
	if err != nil {
		log.Fatal(err)
	}
	return conf
}
