// Command triviad runs the LAN trivia game host: it announces itself over
// UDP broadcast, fills a lobby of TCP players, and runs elimination rounds
// of true/false questions until a winner remains.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cyberinferno/trivia-royale/events"
	"github.com/cyberinferno/trivia-royale/gameserver"
	"github.com/cyberinferno/trivia-royale/logger"
	"github.com/cyberinferno/trivia-royale/question"
	"github.com/cyberinferno/trivia-royale/stats"
)

const releaseVersion = "0.1.0"

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TRIVIAD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := gameserver.DefaultConfig()
	var (
		verbose     bool
		questionTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:           "triviad",
		Short:         "A LAN trivia game host running sudden-death true/false elimination rounds.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd, cfg, verbose, questionTTL)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.ServerName, "name", "n", cfg.ServerName, "server display name (env: TRIVIAD_NAME)")
	fs.StringVar(&cfg.BroadcastAddr, "broadcast-addr", cfg.BroadcastAddr, "discovery broadcast address (env: TRIVIAD_BROADCAST_ADDR)")
	fs.IntVar(&cfg.BroadcastPort, "broadcast-port", cfg.BroadcastPort, "discovery broadcast UDP port (env: TRIVIAD_BROADCAST_PORT)")
	fs.DurationVar(&cfg.BroadcastInterval, "broadcast-interval", cfg.BroadcastInterval, "delay between discovery offers (env: TRIVIAD_BROADCAST_INTERVAL)")
	fs.DurationVar(&cfg.JoinWindow, "join-window", cfg.JoinWindow, "time players have to join after the first connection (env: TRIVIAD_JOIN_WINDOW)")
	fs.DurationVar(&cfg.AnswerDeadline, "answer-deadline", cfg.AnswerDeadline, "time players have to answer each question (env: TRIVIAD_ANSWER_DEADLINE)")
	fs.IntVar(&cfg.MaxRounds, "max-rounds", cfg.MaxRounds, "round cap per session, 0 for unlimited (env: TRIVIAD_MAX_ROUNDS)")
	fs.IntVar(&cfg.RegistrationWorkers, "registration-workers", cfg.RegistrationWorkers, "concurrent registration limit (env: TRIVIAD_REGISTRATION_WORKERS)")
	fs.IntVar(&cfg.BindAttempts, "bind-attempts", cfg.BindAttempts, "random TCP ports tried before giving up (env: TRIVIAD_BIND_ATTEMPTS)")
	fs.StringVar(&cfg.NATSURL, "nats-url", "", "publish session outcomes to this NATS server (env: TRIVIAD_NATS_URL)")
	fs.StringVar(&cfg.NATSSubject, "nats-subject", "", "NATS subject for session outcomes (env: TRIVIAD_NATS_SUBJECT)")
	fs.DurationVar(&questionTTL, "question-ttl", 10*time.Minute, "how long an asked question stays out of the draw pool (env: TRIVIAD_QUESTION_TTL)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "display additional output (env: TRIVIAD_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("triviad v{{.Version}}\n")

	return cmd
}

func serve(cmd *cobra.Command, cfg gameserver.Config, verbose bool, questionTTL time.Duration) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := logger.NewConsoleLogger("triviad", os.Stderr, level)

	srv := gameserver.NewServer(cfg, log, question.NewBank(log, questionTTL))
	srv.Stats = stats.NewRecorder(log)

	if cfg.NATSURL != "" {
		sink, err := events.NewNATSSink(log, cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return err
		}
		defer sink.Close()
		srv.Sinks = append(srv.Sinks, sink)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
