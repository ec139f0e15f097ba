package main

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/titanic-chat/backend/internal/analysis/chart"
	"github.com/zhouzirui/titanic-chat/backend/internal/config"
	"github.com/zhouzirui/titanic-chat/backend/internal/dataset"
	"github.com/zhouzirui/titanic-chat/backend/internal/handler/questions"
	"github.com/zhouzirui/titanic-chat/backend/internal/model/chat"
	"github.com/zhouzirui/titanic-chat/backend/internal/service/router"
)

type options struct {
	datasetPath string
	imageOut    string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "titanic",
		Short:         "Ask questions about the Titanic passenger manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.datasetPath, "data", "d", "", "path to train.csv (default: $DATASET_PATH or train.csv)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	ask := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question",
		Long: `Answer a single question and print the reply.

Examples:
  titanic ask "What percentage of passengers were male?"
  titanic ask "Show me a histogram of passenger ages" --image-out ages.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answerer, err := newAnswerer(opts)
			if err != nil {
				return err
			}
			ans := answerer.Route(strings.Join(args, " "))
			return printAnswer(cmd.OutOrStdout(), ans, opts.imageOut)
		},
	}
	ask.Flags().StringVarP(&opts.imageOut, "image-out", "o", "", "write chart answers to this PNG file")

	repl := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			answerer, err := newAnswerer(opts)
			if err != nil {
				return err
			}
			transcript := chat.NewTranscript("repl")
			return runREPL(cmd.InOrStdin(), cmd.OutOrStdout(), answerer, transcript)
		},
	}

	root.AddCommand(ask, repl)
	return root
}

func newAnswerer(opts *options) (*router.Router, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	path := opts.datasetPath
	if path == "" {
		path = cfg.Dataset.Path
	}
	table, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("passenger data loaded", zap.String("path", path), zap.Int("passengers", table.Len()))

	return router.New(table, chart.NewRenderer(cfg.Chart.Width, cfg.Chart.Height), logger), nil
}

// Answerer answers one question.
type Answerer interface {
	Route(question string) router.Answer
}

// runREPL reads one question per line until EOF or "exit", recording each
// exchange in transcript.
func runREPL(in io.Reader, out io.Writer, answerer Answerer, transcript *chat.Transcript) error {
	fmt.Fprintln(out, questions.Greeting)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s\n> ", questions.Placeholder)
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		transcript.AppendUser(question)
		ans := answerer.Route(question)
		turn := transcript.AppendAssistant(ans.Text, ans.Image, string(ans.Intent))

		imagePath := ""
		if turn.HasImage() {
			imagePath = fmt.Sprintf("answer-%d.png", transcript.Len()/2)
		}
		if err := printAnswer(out, ans, imagePath); err != nil {
			return err
		}
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func printAnswer(out io.Writer, ans router.Answer, imagePath string) error {
	fmt.Fprintln(out, strings.TrimRight(ans.Text, "\n"))
	if ans.Image == "" || imagePath == "" {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(ans.Image)
	if err != nil {
		return fmt.Errorf("decode chart: %w", err)
	}
	if err := os.WriteFile(imagePath, raw, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	fmt.Fprintf(out, "(chart saved to %s)\n", imagePath)
	return nil
}
