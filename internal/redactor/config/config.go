// Конфигурация CLI редактора из переменных окружения.
// Содержит структуру Config и функцию ReadConfig, которая заполняет её по тегам env и проверяет validator'ом.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Значения по умолчанию для числа проходов оптимизации и таймаута правил.
//   - Проверка диапазонов и пути к скрипту правил через go-playground/validator.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

const (
	DefaultMaxOptimize  = 100
	DefaultRulesTimeout = 10
)

type Config struct {
	Trace bool `env:"REDACTOR_TRACE"`

	MaxOptimize int `env:"REDACTOR_MAX_OPTIMIZE" validate:"min=1,max=1000"`

	Sanitize bool `env:"REDACTOR_SANITIZE"`
	Minify   bool `env:"REDACTOR_MINIFY"`

	RulesScript  string `env:"REDACTOR_RULES_SCRIPT" validate:"omitempty,luaScript"`
	RulesTimeout int    `env:"REDACTOR_RULES_TIMEOUT" validate:"min=1,max=600"`
}

// RulesTimeoutDuration - таймаут выполнения скрипта правил.
func (c *Config) RulesTimeoutDuration() time.Duration {
	return time.Duration(c.RulesTimeout) * time.Second
}

// ReadConfig загружает конфигурацию из переменных окружения, подставляет значения по умолчанию и проверяет результат.
func ReadConfig() (*Config, error) {
	config := &Config{}

	if err := envConfig("env", config); err != nil {
		return nil, err
	}

	if config.MaxOptimize <= 0 {
		config.MaxOptimize = DefaultMaxOptimize
	}
	if config.RulesTimeout <= 0 {
		config.RulesTimeout = DefaultRulesTimeout
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate проверяет значения конфигурации, в том числе заданные флагами после ReadConfig.
func Validate(config *Config) error {
	v := validator.New()
	if err := v.RegisterValidation("luaScript", luaScriptValidator); err != nil {
		return err
	}
	return v.Struct(config)
}

func luaScriptValidator(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if !strings.HasSuffix(path, ".lua") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) error {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		raw, exist := os.LookupEnv(fEnvTag)
		if fEnvTag == "" || !exist || raw == "" {
			continue
		}

		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", raw),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(raw)
		case int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", fEnvTag, err)
			}
			v.Field(i).SetInt(int64(n))
		case bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", fEnvTag, err)
			}
			v.Field(i).SetBool(b)
		}
	}
	return nil
}
