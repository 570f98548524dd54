package core

import (
	"net"
	"net/mail"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host               string
		Port               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Name       string
		Host       string
		Port       string
		User       string
		Password   string
		AdminUser  string
		AdminPass  string
		DisableTLS bool
	}

	SendgridConfig struct {
		APIKey string
		// DecisionTemplateID is the provider-side transactional template used
		// for thesis decision emails. Its parameter set is fixed:
		// {student_name, thesis_title, status, teacher_name, email}.
		DecisionTemplateID string
	}

	Config struct {
		Env              string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		Build            string
		DefaultFromEmail mail.Address
		RollbarToken     string
		Server           ServerConfig
		Database         DatabaseConfig
		Sendgrid         SendgridConfig
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "MyThesis")
	v.SetDefault("secretKey", "x1r$7e=s&am!za-thesis(dev)key#do-not-use-in-prod")
	v.SetDefault("build", "dev")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "mythesis")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbUser", "")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("sendgridDecisionTemplateId", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}

	// load .env if it exists (ignore if it does not)
	_ = godotenv.Load()
	v.SetEnvPrefix(env)
	v.AutomaticEnv()

	return &Config{
		Env:       env,
		Debug:     v.GetBool("debug"),
		TestMode:  v.GetBool("testMode"),
		AppName:   v.GetString("appName"),
		SecretKey: v.GetString("secretKey"),
		Build:     v.GetString("build"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("appName"),
			Address: v.GetString("defaultFromEmail"),
		},
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Port:               v.GetString("serverPort"),
			DebugHost:          v.GetString("serverDebugHost"),
			ShutdownTimeout:    v.GetDuration("shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("dbEngine"),
			Name:       v.GetString("dbName"),
			Host:       v.GetString("dbHost"),
			Port:       v.GetString("dbPort"),
			User:       v.GetString("dbUser"),
			Password:   v.GetString("dbPassword"),
			AdminUser:  v.GetString("dbAdminUser"),
			AdminPass:  v.GetString("dbAdminPassword"),
			DisableTLS: v.GetBool("dbDisableTLS"),
		},
		Sendgrid: SendgridConfig{
			APIKey:             v.GetString("sendgridApiKey"),
			DecisionTemplateID: v.GetString("sendgridDecisionTemplateId"),
		},
	}
}
