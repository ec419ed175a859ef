package config

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init跟read分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取 需要使用讀寫鎖
*/
var config_singleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServerPort     string `mapstructure:"SERVER_PORT"`
	DbName         string `mapstructure:"POSTGRES_DB"`
	DbHost         string `mapstructure:"POSTGRES_HOST"`
	DbPort         string `mapstructure:"POSTGRES_PORT"`
	DbUser         string `mapstructure:"POSTGRES_USER"`
	DbPas          string `mapstructure:"POSTGRES_PASSWORD"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPas       string `mapstructure:"REDIS_PASSWORD"`
	KafkaBrokers   string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic     string `mapstructure:"KAFKA_ORDER_TOPIC"`
	AuthTokenKey   string `mapstructure:"AUTH_TOKEN_KEY"`
	TokenDuration  string `mapstructure:"TOKEN_DURATION"`
	SmsEndpoint    string `mapstructure:"SMS_ENDPOINT"`
	SmsApiKey      string `mapstructure:"SMS_API_KEY"`
	SmsSender      string `mapstructure:"SMS_SENDER"`
	UploadDir      string `mapstructure:"UPLOAD_DIR"`
	DeliveryFee    string `mapstructure:"DELIVERY_FEE"`
	LoyaltyPercent int    `mapstructure:"LOYALTY_DEFAULT_PERCENT"`
}

// KafkaBrokerList 逗號分隔轉 slice
func (c *Config) KafkaBrokerList() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	return strings.Split(c.KafkaBrokers, ",")
}

func GetConfig() *Config {
	initConfig()
	config_singleton.mu.RLock()
	defer config_singleton.mu.RUnlock()
	return config_singleton.Config
}

func initConfig() {
	if config_singleton == nil {
		muonce.Do(func() {
			config_singleton = &ConfigSingleTon{}
			if cf, err := loadConfig(); err == nil {
				config_singleton.Config = cf
			} else {
				log.Fatal("error read config")
			}
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				if cf, err := loadConfig(); err == nil {
					config_singleton.Config = cf
				} else {
					log.Panic("failed to reload config file")
				}
			})
		})
	}
}

/*
單純回傳錯誤 由外部決定要不要Fatal, 畢竟有可能有替代方案
*/
func loadConfig() (cf *Config, err error) {
	config_singleton.mu.Lock()
	defer config_singleton.mu.Unlock()

	cf = &Config{}
	viper.SetConfigFile(fmt.Sprintf("%s/.env", getProjectRoot("github.com/RoyceAzure/lab/mmart")))
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(cf)
	if err != nil {
		return
	}
	return
}

func getProjectRoot(moduleName string) string {
	cmd := exec.Command("go", "list", "-m", "-f", "{{.Dir}}", moduleName)
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
