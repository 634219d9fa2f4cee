// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vsel-cli/vsel/color"
	"github.com/vsel-cli/vsel/constant"
	"github.com/vsel-cli/vsel/key"
	"github.com/vsel-cli/vsel/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Vsel + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.SearchSiteTimeout, 8, "Timeout in seconds for a single catalog site search or detail call")
	register(key.SearchMinIntervalMs, 200, "Minimum interval in milliseconds between two requests to the same catalog site")
	register(key.SearchPerMinuteLimit, 30, "Maximum requests per minute issued to a single catalog site")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions from past resolutions when completing --title")

	register(key.ResolveDeadlineSeconds, 60, "Overall deadline in seconds for a whole resolution request.\nSet to 0 to disable")
	register(key.ResolvePrefer, false, "Probe candidate sources and pick the best one by default.\nCan be overridden per call with --prefer")

	register(key.ProbeLightweightTimeoutSeconds, 3, "Timeout in seconds for a single lightweight (HEAD) probe")
	register(key.ProbeFullTimeoutSeconds, 10, "Timeout in seconds for a single full (resolution + throughput) probe")
	register(key.ProbeFullConcurrency, 2, "Concurrent candidates per full-probe batch.\nClamped to 2 at most: each probe holds a streaming buffer")
	register(key.ProbeBatchPauseMs, 500, "Pause in milliseconds between full-probe batches so prior resources release")
	register(key.ProbeReadBudgetKB, 256, "Bytes (in KB) read from a media segment when measuring throughput")
	register(key.ProbePreferredSources, []string{"ok", "niuhu", "ying", "wasu", "mgtv", "iqiyi", "youku", "qq"}, "Ordered source-name substrings used for static ranking on constrained devices")

	register(key.DeviceUserAgent, "", "User agent reported to the device profiler.\nEmpty means the built-in desktop user agent")
	register(key.DeviceTouchPoints, 0, "Touch point count reported to the device profiler")

	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")

	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, nerd (nerd-font required)")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
