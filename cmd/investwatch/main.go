// Command investwatch follows the progress event stream of one analysis
// job from the terminal. It resumes across connection drops on its own;
// Ctrl-C stops it.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/stream"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("investwatch failed")
	}
}

func run() error {
	serverURL := flag.String("server", "http://localhost:8080", "base URL of the analysis server")
	jobID := flag.String("job", "", "ID of the job to follow (required)")
	completed := flag.Bool("completed", false, "treat the job as already finished and only print its log")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if *jobID == "" {
		flag.Usage()
		return fmt.Errorf("missing -job")
	}
	if _, err := uuid.Parse(*jobID); err != nil {
		return fmt.Errorf("invalid -job %q: %w", *jobID, err)
	}

	done := make(chan struct{}, 1)

	session := stream.NewSession(*serverURL,
		stream.WithClientID(uuid.NewString()),
		stream.WithEventObserver(printEvent),
		stream.WithStateObserver(func(st stream.ConnectionState) {
			fmt.Fprintf(os.Stderr, "-- %s\n", st)
			if st == stream.StateDisconnected {
				select {
				case done <- struct{}{}:
				default:
				}
			}
		}),
	)

	session.Start(*jobID, *completed)
	defer session.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sig:
		fmt.Fprintln(os.Stderr, "-- interrupted")
	case <-done:
	}

	fmt.Fprintf(os.Stderr, "-- %d events, last sequence %d\n", len(session.Events()), session.LastSequence())
	return nil
}

func printEvent(ev domain.EventMessage) {
	line := fmt.Sprintf("[%4d] %-20s", ev.Sequence, ev.Kind)
	if ev.Producer != "" {
		line += " " + ev.Producer
	}
	if ev.Note != "" {
		line += "  (" + ev.Note + ")"
	}
	fmt.Println(line)
	if len(ev.Payload) > 0 {
		fmt.Printf("       %s\n", ev.Payload)
	}
}
