package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

type Configuration struct {
	Client  *ClientConfig
	Server  *ServerConfig
	Store   *StoreConfig
	Model   *ModelConfig
	Session *SessionConfig
	API     *APIConfig
	Log     *LogConfig
}

type ClientConfig struct {
	Transport string
	URL       string
	Command   string
	Models    []string
}

type ServerConfig struct {
	Transport string
	Listen    string
}

type StoreConfig struct {
	Driver string
	Path   string
	Init   bool
}

type ModelConfig struct {
	Model         string
	MaxTokens     int
	Temperature   float32
	Prompt        string
	MaxToolRounds int
}

type SessionConfig struct {
	MaxHistory int
	TTL        time.Duration
}

type APIConfig struct {
	Timeout      time.Duration
	OpenAIKey    string
	OpenAIURL    string
	AnthropicKey string
	GeminiKey    string
	OllamaURL    string
	OllamaKey    string
}

type LogConfig struct {
	Verbose bool
	File    string
}

const (
	DefaultSSEURL   = "http://localhost:8001/sse"
	DefaultCommand  = "taxalertd --transport stdio"
	DefaultListen   = ":8001"
	DefaultDatabase = "dummy_tax_alerts.db"
)

// DefaultModels is offered in the model picker when no list is configured
var DefaultModels = []string{
	"gemini/gemini-2.0-flash",
	"gemini/gemini-1.5-pro",
	"openai/gpt-4o-mini",
	"anthropic/claude-3-5-haiku-latest",
	"ollama/llama3.2",
}

// YamlSource implements cli.ValueSource for a map loaded from YAML
type YamlSource struct {
	data map[string]any
	key  string
}

func (y *YamlSource) Lookup() (string, bool) {
	if v, ok := y.data[y.key]; ok {
		// Handle slices by joining with comma
		if slice, ok := v.([]any); ok {
			var strs []string
			for _, item := range slice {
				strs = append(strs, fmt.Sprintf("%v", item))
			}
			return strings.Join(strs, ","), true
		}
		return fmt.Sprintf("%v", v), true
	}
	return "", false
}

func (y *YamlSource) String() string   { return "yaml" }
func (y *YamlSource) GoString() string { return "yaml" }

type sourceFunc func(key string, env ...string) cli.ValueSourceChain

// sources pre-parses the config file and returns a helper building EnvVar > YAML > Default chains
func sources(args []string) sourceFunc {
	configPath := getConfigPath(args)
	var configData map[string]any
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			_ = yaml.Unmarshal(data, &configData)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", configPath, err)
		}
	}

	return func(key string, env ...string) cli.ValueSourceChain {
		chain := cli.ValueSourceChain{}
		for _, e := range env {
			chain.Chain = append(chain.Chain, cli.EnvVar(e))
		}
		if configData != nil {
			chain.Chain = append(chain.Chain, &YamlSource{data: configData, key: key})
		}
		return chain
	}
}

func commonFlags(src sourceFunc) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"b"}, Usage: "use the named configuration file", Sources: cli.EnvVars("TAXALERT_CONFIG")},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "enable debug logging", Sources: src("verbose", "TAXALERT_VERBOSE")},
	}
}

// ClientFlags returns the flag set for the chat client
func ClientFlags(args []string) []cli.Flag {
	src := sources(args)

	return append(commonFlags(src),
		// Connection
		&cli.StringFlag{Name: "transport", Value: "sse", Usage: "tool server transport: sse, stdio or http", Sources: src("transport", "TAXALERT_TRANSPORT")},
		&cli.StringFlag{Name: "url", Value: DefaultSSEURL, Usage: "tool server URL for the sse and http transports", Sources: src("url", "TAXALERT_URL")},
		&cli.StringFlag{Name: "command", Value: DefaultCommand, Usage: "tool server command line for the stdio transport", Sources: src("command", "TAXALERT_COMMAND")},
		&cli.StringFlag{Name: "logfile", Value: "taxchat.log", Usage: "file receiving client logs", Sources: src("logfile", "TAXALERT_LOGFILE")},

		// API Configuration
		&cli.StringFlag{Name: "openaikey", Usage: "OpenAI API key", Sources: src("openaikey", "TAXALERT_OPENAIKEY", "OPENAI_API_KEY")},
		&cli.StringFlag{Name: "openaiurl", Usage: "OpenAI API URL (for custom endpoints)", Sources: src("openaiurl", "TAXALERT_OPENAIURL")},
		&cli.StringFlag{Name: "anthropickey", Usage: "Anthropic API key", Sources: src("anthropickey", "TAXALERT_ANTHROPICKEY", "ANTHROPIC_API_KEY")},
		&cli.StringFlag{Name: "geminikey", Usage: "Google Gemini API key", Sources: src("geminikey", "TAXALERT_GEMINIKEY", "GOOGLE_API_KEY")},
		&cli.StringFlag{Name: "ollamaurl", Value: "http://localhost:11434", Usage: "Ollama API URL", Sources: src("ollamaurl", "TAXALERT_OLLAMAURL")},
		&cli.StringFlag{Name: "ollamakey", Usage: "Ollama API key (Bearer token for authentication)", Sources: src("ollamakey", "TAXALERT_OLLAMAKEY")},
		&cli.DurationFlag{Name: "apitimeout", Aliases: []string{"t"}, Usage: "timeout for each completion request (0 leaves it to the provider)", Sources: src("apitimeout", "TAXALERT_APITIMEOUT")},

		// Model
		&cli.StringFlag{Name: "model", Value: DefaultModels[0], Usage: "initially selected model", Sources: src("model", "TAXALERT_MODEL")},
		&cli.StringSliceFlag{Name: "models", Usage: "models offered in the model picker", Sources: src("models", "TAXALERT_MODELS")},
		&cli.IntFlag{Name: "maxtokens", Value: 4096, Usage: "maximum number of tokens to generate", Sources: src("maxtokens", "TAXALERT_MAXTOKENS")},
		&cli.FloatFlag{Name: "temperature", Value: 0, Usage: "temperature for the completion", Sources: src("temperature", "TAXALERT_TEMPERATURE")},
		&cli.IntFlag{Name: "maxtoolrounds", Value: 25, Usage: "maximum number of tool rounds per turn", Sources: src("maxtoolrounds", "TAXALERT_MAXTOOLROUNDS")},
		&cli.StringFlag{Name: "prompt", Value: "you are a tax alert assistant. use the available tools to look up and maintain tax alerts.", Usage: "initial system prompt", Sources: src("prompt", "TAXALERT_PROMPT")},

		// Session
		&cli.IntFlag{Name: "sessionhistory", Aliases: []string{"H"}, Value: 500, Usage: "maximum number of messages kept in the agent history", Sources: src("sessionhistory", "TAXALERT_SESSIONHISTORY")},
		&cli.DurationFlag{Name: "sessionduration", Aliases: []string{"S"}, Value: 24 * time.Hour, Usage: "agent history is dropped after it is unused for this duration", Sources: src("sessionduration", "TAXALERT_SESSIONDURATION")},
	)
}

// ServerFlags returns the flag set for the tool server
func ServerFlags(args []string) []cli.Flag {
	src := sources(args)

	return append(commonFlags(src),
		&cli.StringFlag{Name: "transport", Value: "sse", Usage: "transport mode: sse or stdio", Sources: src("transport", "TAXALERT_SERVER_TRANSPORT"),
			Validator: func(v string) error {
				if v != "sse" && v != "stdio" {
					return fmt.Errorf("transport must be sse or stdio, got %q", v)
				}
				return nil
			}},
		&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Value: DefaultListen, Usage: "listen address for the sse transport", Sources: src("listen", "TAXALERT_LISTEN")},
		&cli.StringFlag{Name: "driver", Value: "sqlite", Usage: "database driver: sqlite, sqlite3 or postgres", Sources: src("driver", "TAXALERT_DRIVER")},
		&cli.StringFlag{Name: "db", Value: DefaultDatabase, Usage: "database file (or DSN for postgres)", Sources: src("db", "ALERTS_DB")},
		&cli.BoolFlag{Name: "init", Usage: "create the tax_alerts table when it does not exist", Sources: src("init", "TAXALERT_INIT")},
	)
}

func getConfigPath(args []string) string {
	// Check env first
	if v := os.Getenv("TAXALERT_CONFIG"); v != "" {
		return v
	}
	for i, arg := range args {
		if arg == "--config" || arg == "-b" {
			if i+1 < len(args) {
				return args[i+1]
			}
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

// MaskKey hides all but the last three characters of a secret
func MaskKey(key string) string {
	if len(key) > 3 {
		return strings.Repeat("*", len(key)-3) + key[len(key)-3:]
	}
	return key
}

func (c *Configuration) PrintConfig() {
	if c.Client != nil {
		fmt.Printf("transport: %s\n", c.Client.Transport)
		fmt.Printf("url: %s\n", c.Client.URL)
		fmt.Printf("command: %s\n", c.Client.Command)
		fmt.Printf("models: %v\n", c.Client.Models)
	}
	if c.Server != nil {
		fmt.Printf("transport: %s\n", c.Server.Transport)
		fmt.Printf("listen: %s\n", c.Server.Listen)
	}
	if c.Store != nil {
		fmt.Printf("driver: %s\n", c.Store.Driver)
		fmt.Printf("db: %s\n", c.Store.Path)
		fmt.Printf("init: %t\n", c.Store.Init)
	}
	if c.Model != nil {
		fmt.Printf("model: %s\n", c.Model.Model)
		fmt.Printf("maxtokens: %d\n", c.Model.MaxTokens)
		fmt.Printf("temperature: %f\n", c.Model.Temperature)
		fmt.Printf("maxtoolrounds: %d\n", c.Model.MaxToolRounds)
		fmt.Printf("prompt: %s\n", c.Model.Prompt)
	}
	if c.Session != nil {
		fmt.Printf("sessionhistory: %d\n", c.Session.MaxHistory)
		fmt.Printf("sessionduration: %s\n", c.Session.TTL)
	}
	if c.API != nil {
		fmt.Printf("apitimeout: %s\n", c.API.Timeout)
		fmt.Printf("openaikey: %s\n", MaskKey(c.API.OpenAIKey))
		fmt.Printf("anthropickey: %s\n", MaskKey(c.API.AnthropicKey))
		fmt.Printf("geminikey: %s\n", MaskKey(c.API.GeminiKey))
		fmt.Printf("ollamakey: %s\n", MaskKey(c.API.OllamaKey))
		fmt.Printf("openaiurl: %s\n", c.API.OpenAIURL)
		fmt.Printf("ollamaurl: %s\n", c.API.OllamaURL)
	}
	fmt.Printf("verbose: %t\n", c.Log.Verbose)
}

func NewClientConfiguration(c *cli.Command) *Configuration {
	models := c.StringSlice("models")
	if len(models) == 0 {
		models = append([]string(nil), DefaultModels...)
	}
	model := c.String("model")
	found := false
	for _, m := range models {
		if m == model {
			found = true
			break
		}
	}
	if !found {
		models = append([]string{model}, models...)
	}

	return &Configuration{
		Client: &ClientConfig{
			Transport: c.String("transport"),
			URL:       c.String("url"),
			Command:   c.String("command"),
			Models:    models,
		},
		Model: &ModelConfig{
			Model:         model,
			MaxTokens:     c.Int("maxtokens"),
			Temperature:   float32(c.Float("temperature")),
			Prompt:        c.String("prompt"),
			MaxToolRounds: c.Int("maxtoolrounds"),
		},
		Session: &SessionConfig{
			MaxHistory: c.Int("sessionhistory"),
			TTL:        c.Duration("sessionduration"),
		},
		API: &APIConfig{
			Timeout:      c.Duration("apitimeout"),
			OpenAIKey:    c.String("openaikey"),
			OpenAIURL:    c.String("openaiurl"),
			AnthropicKey: c.String("anthropickey"),
			GeminiKey:    c.String("geminikey"),
			OllamaURL:    c.String("ollamaurl"),
			OllamaKey:    c.String("ollamakey"),
		},
		Log: &LogConfig{
			Verbose: c.Bool("verbose"),
			File:    c.String("logfile"),
		},
	}
}

func NewServerConfiguration(c *cli.Command) *Configuration {
	return &Configuration{
		Server: &ServerConfig{
			Transport: c.String("transport"),
			Listen:    c.String("listen"),
		},
		Store: &StoreConfig{
			Driver: c.String("driver"),
			Path:   c.String("db"),
			Init:   c.Bool("init"),
		},
		Log: &LogConfig{
			Verbose: c.Bool("verbose"),
		},
	}
}
