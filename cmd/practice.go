package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/mock-interviewer/internal/ai"
	"github.com/spigell/mock-interviewer/internal/history"
	"github.com/spigell/mock-interviewer/internal/interview"
	"github.com/spigell/mock-interviewer/internal/logger"
	"github.com/spigell/mock-interviewer/internal/resume"
)

const (
	PromptTechnical    = "Technical"
	PromptNonTechnical = "Non Technical"
	PromptSave         = "Save evaluation to history"
	PromptQuit         = "Quit"
)

var (
	errQuit = errors.New("quit requested")
	// errEphemeralHistory stops practice from saving into a store that dies with the process.
	errEphemeralHistory = errors.New("the memory history backend does not outlive this command, configure redis or postgres to save evaluations")
)

// finisher is the part of the orchestrator used to recover a lost report.
type finisher interface {
	Snapshot() interview.State
	Evaluate(ctx context.Context) (*interview.Report, error)
}

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		practice(cmd)
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)

	practiceCmd.Flags().StringP("resume-file", "r", "", "plain text resume file")
	practiceCmd.Flags().StringP("email", "e", "", "email used to save the evaluation in history")
}

func practice(cmd *cobra.Command) {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer func() { _ = logger.Sync() }()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	shutdownTracing, err := setupTracing(ctx, config, logger)
	if err != nil {
		logger.Fatal("setting up tracing", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	interviewer, err := newInterviewer(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the interviewer", zap.Error(err))
	}

	profile, err := askProfile(cmd.Flag("resume-file").Value.String())
	if err != nil {
		logger.Fatal("reading the candidate profile", zap.Error(err))
	}

	turn, err := interviewer.Start(ctx, profile)
	if err != nil {
		logger.Fatal("starting the interview", zap.Error(err))
	}

	report, err := runTurns(ctx, out, interviewer, turn)
	if errors.Is(err, errQuit) {
		logger.Info("exiting", zap.String("reason", "interview abandoned"))
		return
	}
	if err != nil {
		report, err = recoverReport(ctx, interviewer, err, confirmRetry, logger)
	}
	if err != nil {
		logger.Fatal("running the interview", zap.Error(err))
	}

	printReport(out, report)

	err = offerSave(ctx, config, cmd.Flag("email").Value.String(), report, logger)
	if errors.Is(err, errEphemeralHistory) {
		logger.Warn("evaluation not saved", zap.Error(err), zap.String("backend", config.History.Backend))
		return
	}
	if err != nil {
		logger.Fatal("saving the evaluation", zap.Error(err))
	}
}

// runTurns asks questions until the interviewer produces a report.
func runTurns(ctx context.Context, out io.Writer, interviewer *interview.Orchestrator, turn *interview.Turn) (*interview.Report, error) {
	for !turn.Finished() {
		label := fmt.Sprintf("Question %d", turn.Number)
		if turn.CrossQuestion {
			label += " (follow-up)"
		}
		fmt.Fprintf(out, "\n%s: %s\n", label, turn.Question)

		answer, err := (&promptui.Prompt{Label: "Answer"}).Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil, errQuit
			}
			return nil, err
		}

		turn, err = interviewer.Submit(ctx, turn.Question, answer)
		if err != nil {
			return nil, err
		}
	}

	return turn.Report, nil
}

// recoverReport asks the interviewer to evaluate again when the interview is
// over but the narrative could not be generated. Other failures are returned unchanged.
func recoverReport(ctx context.Context, interviewer finisher, err error, retry func() bool, logger *zap.Logger) (*interview.Report, error) {
	if !interview.IsAdapter(err) || !interviewer.Snapshot().Finished {
		return nil, err
	}

	for retry() {
		report, evalErr := interviewer.Evaluate(ctx)
		if evalErr == nil {
			return report, nil
		}
		logger.Warn("evaluation failed", zap.Error(evalErr))
		err = evalErr
	}

	return nil, err
}

func confirmRetry() bool {
	_, err := (&promptui.Prompt{Label: "Evaluation failed, retry", IsConfirm: true}).Run()
	return err == nil
}

func askProfile(resumeFile string) (ai.Profile, error) {
	var profile ai.Profile

	resumeText, err := readResume(resumeFile)
	if err != nil {
		return profile, err
	}
	profile.ResumeText = resumeText

	fields := []struct {
		label  string
		target *string
	}{
		{"Job role", &profile.JobRole},
		{"Job description", &profile.JobDescription},
		{"Experience level", &profile.ExperienceLevel},
	}
	for _, field := range fields {
		value, err := (&promptui.Prompt{Label: field.label, Validate: required(field.label)}).Run()
		if err != nil {
			return profile, err
		}
		*field.target = value
	}

	_, domain, err := (&promptui.Select{
		Label: "Interview domain",
		Items: []string{PromptTechnical, PromptNonTechnical},
	}).Run()
	if err != nil {
		return profile, err
	}
	profile.Domain = ai.Domain(domain)

	return profile, nil
}

func readResume(file string) (string, error) {
	if file = strings.TrimSpace(file); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading resume file %q: %w", file, err)
		}
		return resume.FromUpload(file, data)
	}

	text, err := (&promptui.Prompt{Label: "Resume (one line summary)", Validate: required("resume")}).Run()
	if err != nil {
		return "", err
	}
	return resume.Clean(text), nil
}

func required(name string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func printReport(out io.Writer, report *interview.Report) {
	fmt.Fprintf(out, "\nInterview completed on %s\n", report.InterviewDate)
	fmt.Fprintf(out, "Questions: %d, duration: %.1f minutes\n", report.TotalQuestions, report.DurationMinutes)
	fmt.Fprintf(out, "Average score: %.1f/10 (%s)\n", report.AverageScore, report.PerformanceCategory)
	fmt.Fprintf(out, "Response quality %.1f, technical accuracy %.1f, communication %.1f, problem solving %.1f\n\n",
		report.Metrics.ResponseQuality,
		report.Metrics.TechnicalAccuracy,
		report.Metrics.CommunicationScore,
		report.Metrics.ProblemSolving,
	)
	fmt.Fprintln(out, report.DetailedEvaluation)
}

func offerSave(ctx context.Context, config *Config, email string, report *interview.Report, logger *zap.Logger) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	if config.History.Ephemeral() {
		return errEphemeralHistory
	}

	_, action, err := (&promptui.Select{
		Label: "Proceed?",
		Items: []string{PromptSave, PromptQuit},
	}).Run()
	if err != nil || action == PromptQuit {
		return nil
	}

	store, err := history.Open(ctx, config.History)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rec, err := history.NewRecord(email, evaluationOf(report), time.Now())
	if err != nil {
		return err
	}
	if err := store.Save(ctx, rec); err != nil {
		return err
	}

	logger.Info("evaluation saved", zap.String("id", rec.ID), zap.String("backend", config.History.Backend))
	return nil
}

func evaluationOf(report *interview.Report) history.Evaluation {
	return history.Evaluation{
		AverageScore:        report.AverageScore,
		InterviewDuration:   report.DurationMinutes,
		TotalQuestions:      report.TotalQuestions,
		QAPairs:             report.QAPairs,
		DetailedEvaluation:  report.DetailedEvaluation,
		PerformanceCategory: report.PerformanceCategory,
	}
}
