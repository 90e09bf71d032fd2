package plugin

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
)

var validate = validator.New()

// EnvConfig is the runtime configuration the plugin requires.
type EnvConfig struct {
	PrivateKey string `validate:"required"`
	Network    string `validate:"required,oneof=mainnet testnet"`
}

// ValidateConfig reads the plugin settings from the runtime, falling back
// to the process environment, and validates them.
func ValidateConfig(runtime Runtime) (*EnvConfig, error) {
	cfg := &EnvConfig{
		PrivateKey: setting(runtime, constant.SettingPrivateKey),
		Network:    setting(runtime, constant.SettingNetwork),
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		lines := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			lines = append(lines, fmt.Sprintf("%s: %s", settingName(fe.StructField()), describe(fe)))
		}
		return nil, fmt.Errorf("Rooch configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}
	return cfg, nil
}

func setting(runtime Runtime, name string) string {
	if v := runtime.GetSetting(name); v != "" {
		return v
	}
	return os.Getenv(name)
}

func settingName(field string) string {
	switch field {
	case "PrivateKey":
		return constant.SettingPrivateKey
	case "Network":
		return constant.SettingNetwork
	default:
		return field
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.StructField() == "PrivateKey" {
			return "Bitcoin WIF private key is required"
		}
		return "Required"
	case "oneof":
		return fmt.Sprintf("Invalid enum value. Expected %s, received '%v'", strings.Join(strings.Fields(fe.Param()), " | "), fe.Value())
	default:
		return fe.Error()
	}
}
