package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/lipcue/internal/script"
	"github.com/dgnsrekt/lipcue/internal/timing"
	"github.com/dgnsrekt/lipcue/utils"
)

var (
	textDuration float64
	textFile     string
	textMarkdown bool

	textCmd = &cobra.Command{
		Use:   "text [WORDS...]",
		Short: "Make mouth cues from plain text",
		Long: paragraph(fmt.Sprintf("\n%s word timings from plain text, then turn them into mouth cues. "+
			"Without --duration the text is assumed to be spoken at %.2fs per character. "+
			"Markdown scripts are read without their code, links and markup.",
			keyword("Estimate"), timing.SecondsPerCharacter)),
		Example: paragraph("lipcue text \"hello there\" --duration 1.2\nlipcue text -f script.md -d 42.5"),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readScript(args)
			if err != nil {
				return err
			}

			duration := textDuration
			if duration < 0 {
				return fmt.Errorf("--duration must not be negative, got %v", duration)
			}
			if duration == 0 {
				duration = timing.EstimateDuration(text)
				log.Debug("Estimated speaking time", "seconds", duration)
			}

			return render(cmd.Context(), opts, timing.Estimate(text, duration))
		},
	}
)

// readScript returns the text to speak from the arguments or --file.
func readScript(args []string) (string, error) {
	if textFile == "" {
		if len(args) == 0 {
			return "", errors.New("nothing to say: pass words or --file")
		}
		return strings.Join(args, " "), nil
	}
	if len(args) > 0 {
		return "", errors.New("pass either words or --file, not both")
	}

	path := utils.ExpandPath(textFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read script: %w", err)
	}
	if textMarkdown || script.IsMarkdown(path) {
		return script.PlainText(b), nil
	}
	return strings.Join(script.Words(string(b)), " "), nil
}

func init() {
	textCmd.Flags().Float64VarP(&textDuration, "duration", "d", 0, "length of the spoken text in seconds")
	textCmd.Flags().StringVarP(&textFile, "file", "f", "", "read the text from a file")
	textCmd.Flags().BoolVar(&textMarkdown, "markdown", false, "treat --file as markdown regardless of its extension")
}
