package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/agent"
	"github.com/aretw0/arbor/pkg/executor/executortest"
	"github.com/aretw0/arbor/pkg/features/tracing"
	"github.com/aretw0/arbor/pkg/prompt"
)

// scriptFile is the YAML shape of a replayable model script. Each turn is
// either a plain text answer or a batch of tool calls.
type scriptFile struct {
	Turns []struct {
		Text      string `yaml:"text"`
		ToolCalls []struct {
			ID        string `yaml:"id"`
			Name      string `yaml:"name"`
			Arguments string `yaml:"arguments"`
		} `yaml:"tool_calls"`
	} `yaml:"turns"`
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [input]",
	Short: "Run the tool-loop strategy against a scripted model",
	Long: `Runs the standard tool-loop strategy with a model script replayed from a
YAML file, so a graph can be exercised end to end without a live backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		scriptPath, _ := cmd.Flags().GetString("script")
		listen, _ := cmd.Flags().GetString("listen")
		mode, _ := cmd.Flags().GetString("mode")
		verbose, _ := cmd.Flags().GetBool("verbose")

		input := "Hello"
		if len(args) > 0 {
			input = args[0]
		}

		config := agent.DefaultConfig()
		if configPath != "" {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
			if err := yaml.Unmarshal(data, &config); err != nil {
				return fmt.Errorf("failed to parse config: %w", err)
			}
		}

		scripted, err := loadScript(scriptPath)
		if err != nil {
			return err
		}

		strategy, err := agent.SingleRunStrategy("single_run", agent.RunMode(mode))
		if err != nil {
			return err
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		a, err := agent.New(strategy, scripted,
			agent.WithConfig(config),
			agent.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		if verbose {
			agent.InstallFeature(a, tracing.Feature{}, func(c *tracing.Config) {
				c.Logger = logger
			})
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if listen != "" {
			events := http.NewServer()
			agent.InstallFeature[http.Config](a, events)
			go func() {
				if err := events.Serve(ctx, listen); err != nil {
					logger.Warn("event server stopped", "err", err)
				}
			}()
		}

		output, err := agent.Run[string](ctx, a, input)
		if err != nil {
			return err
		}

		fmt.Println(output)
		return nil
	},
}

func loadScript(path string) (*executortest.Scripted, error) {
	if path == "" {
		// A one-turn echo script keeps the command usable out of the box.
		return executortest.NewScripted(executortest.Turn{
			Messages: []prompt.Message{prompt.NewAssistant("Done")},
		}), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var file scriptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	turns := make([]executortest.Turn, 0, len(file.Turns))
	for _, t := range file.Turns {
		if len(t.ToolCalls) > 0 {
			calls := make([]prompt.ToolCall, 0, len(t.ToolCalls))
			for _, c := range t.ToolCalls {
				calls = append(calls, prompt.ToolCall{ID: c.ID, Name: c.Name, Arguments: c.Arguments})
			}
			turns = append(turns, executortest.Turn{Messages: []prompt.Message{prompt.NewToolCall(calls...)}})
			continue
		}
		turns = append(turns, executortest.Turn{Messages: []prompt.Message{prompt.NewAssistant(t.Text)}})
	}
	return executortest.NewScripted(turns...), nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("script", "", "Path to a YAML model script to replay")
	runCmd.Flags().String("listen", "", "Serve pipeline events over SSE on this address (e.g. :8080)")
	runCmd.Flags().String("mode", string(agent.RunModeSequential), "Tool execution mode (sequential, parallel, single)")
	runCmd.Flags().BoolP("verbose", "v", false, "Log pipeline events to stderr")
}
