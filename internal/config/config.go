package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Notion    Notion
	Discord   Discord
	Worker    Worker
	Scheduler Scheduler
	Redis     Redis
	RunLog    RunLog
}

type Notion struct {
	APIKey     string `env:"NOTION_API_KEY"`
	DatabaseID string `env:"NOTION_DB_ID"`
	BaseURL    string `env:"NOTION_BASE_URL" envDefault:"https://api.notion.com/v1"`
}

type Discord struct {
	WebhookURL string `env:"DISCORD_WEBHOOK_URL"`
}

type Worker struct {
	MaxTasks       int           `env:"WORKER_MAX_TASKS" envDefault:"1"`
	CommandTimeout time.Duration `env:"WORKER_COMMAND_TIMEOUT" envDefault:"15m"`
	AgentsRoot     string        `env:"WORKER_AGENTS_ROOT" envDefault:"."`
}

type Scheduler struct {
	ScheduleFile string   `env:"SCHEDULER_FILE" envDefault:"schedule.json"`
	Projects     []string `env:"SCHEDULER_PROJECTS" envSeparator:","`
	Timezone     string   `env:"SCHEDULER_TIMEZONE" envDefault:"UTC"`
}

// Redis is optional: with no Addr the worker runs without the invocation lock.
type Redis struct {
	Addr     string        `env:"REDIS_ADDRESS"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB"`
	LockKey  string        `env:"REDIS_LOCK_KEY" envDefault:"agentq:worker:lock"`
	LockTTL  time.Duration `env:"REDIS_LOCK_TTL" envDefault:"30m"`
}

// RunLog is optional: with no Path invocations are not journaled.
type RunLog struct {
	Path string `env:"RUNLOG_PATH"`
}

func Load() *Config {
	var c Config
	if err := env.Parse(&c); err != nil {
		log.Fatal(err)
	}

	return &c
}
