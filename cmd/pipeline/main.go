package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maritimetraining/speech-pipeline/internal/artifacts"
	"github.com/maritimetraining/speech-pipeline/internal/audio"
	"github.com/maritimetraining/speech-pipeline/internal/cleanup"
	"github.com/maritimetraining/speech-pipeline/internal/config"
	"github.com/maritimetraining/speech-pipeline/internal/detector"
	"github.com/maritimetraining/speech-pipeline/internal/diarize"
	"github.com/maritimetraining/speech-pipeline/internal/pipeline"
	"github.com/maritimetraining/speech-pipeline/internal/store"
	"github.com/maritimetraining/speech-pipeline/internal/transcription"
	"github.com/maritimetraining/speech-pipeline/internal/types"
	"github.com/maritimetraining/speech-pipeline/internal/vad"
)

var (
	configPath string
	log        = logrus.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Maritime training session speech pipeline",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to configuration file")

	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(resolveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return cfg
}

// registerCmd creates a session and maps its demanding-event windows
// from a CSV of (name, start_ms, end_ms) rows.
func registerCmd() *cobra.Command {
	var (
		subjectID     string
		recordingPath string
		csvPath       string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a session and its demanding event windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			db, err := store.Open(cfg.Storage.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open timestamps csv: %v", err)
			}
			defer f.Close()

			records, err := csv.NewReader(f).ReadAll()
			if err != nil {
				return fmt.Errorf("failed to read timestamps csv: %v", err)
			}

			sessionID, err := db.CreateSession(subjectID, recordingPath)
			if err != nil {
				return err
			}

			for i, rec := range records {
				if i == 0 {
					continue // header
				}
				if len(rec) != 3 {
					return fmt.Errorf("malformed timestamps row %d", i)
				}
				start, err := strconv.ParseFloat(rec[1], 64)
				if err != nil {
					return fmt.Errorf("malformed start in row %d: %v", i, err)
				}
				end, err := strconv.ParseFloat(rec[2], 64)
				if err != nil {
					return fmt.Errorf("malformed end in row %d: %v", i, err)
				}

				eventID, err := db.CreateDemandingEvent(rec[0])
				if err != nil {
					return err
				}
				if _, err := db.CreateEventMapping(sessionID, eventID, start, end); err != nil {
					return err
				}
			}

			log.Infof("Registered session %d with %d windows", sessionID, len(records)-1)
			return nil
		},
	}

	cmd.Flags().StringVar(&subjectID, "subject-id", "test_subject", "subject identifier")
	cmd.Flags().StringVar(&recordingPath, "recording", "", "path to the session recording")
	cmd.Flags().StringVar(&csvPath, "timestamps", "", "CSV of demanding event windows (name,start_ms,end_ms)")
	cmd.MarkFlagRequired("timestamps")
	return cmd
}

// processCmd runs the full pipeline over one session recording,
// without going through the API server.
func processCmd() *cobra.Command {
	var (
		recordingPath string
		sessionID     int64
		subjectID     string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a session recording's demanding event windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			if err := cleanup.EnsureTempDirExists(cfg.Storage.TempDir); err != nil {
				return fmt.Errorf("failed to create temp directory: %v", err)
			}

			db, err := store.Open(cfg.Storage.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			windows, err := db.WindowsForSession(sessionID)
			if err != nil {
				return err
			}
			if len(windows) == 0 {
				return fmt.Errorf("no demanding event windows mapped for session %d", sessionID)
			}

			wavPath, err := audio.ExtractAudio(recordingPath, cfg.Storage.TempDir)
			if err != nil {
				return err
			}
			defer os.Remove(wavPath)

			rec, err := audio.ReadWAV(wavPath)
			if err != nil {
				return err
			}

			art := artifacts.NewStore(cfg.Storage.ResultsDir)
			detectors := detector.NewHTTPClient(cfg.Services.VAD.URL, cfg.Services.Diarization.URL, cfg.Storage.TempDir)
			orch := pipeline.New(
				vad.NewChunker(detectors, art, log),
				diarize.NewMapBuilder(detectors, art, log),
				transcription.NewWhisperTranscriber(cfg.Whisper.Model, cfg.Whisper.Language, cfg.Storage.TempDir, log),
				db,
				art,
				log,
			)

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Jobs.TimeoutMinutes)*time.Minute)
			defer cancel()

			table, err := orch.ProcessSession(ctx, rec, windows, types.SessionContext{
				SessionID: sessionID,
				SubjectID: subjectID,
			})
			if err != nil {
				return err
			}

			log.Infof("Processed %d windows, %d transcript rows", len(windows), len(table))
			return nil
		},
	}

	cmd.Flags().StringVar(&recordingPath, "recording", "", "path to the session recording")
	cmd.Flags().Int64Var(&sessionID, "session-id", 0, "session id in the pipeline database")
	cmd.Flags().StringVar(&subjectID, "subject-id", "test_subject", "subject identifier")
	cmd.MarkFlagRequired("recording")
	cmd.MarkFlagRequired("session-id")
	return cmd
}

// resolveCmd re-runs speaker resolution for one segment from the
// persisted speaker-map artifact, without any in-memory map.
func resolveCmd() *cobra.Command {
	var (
		window  string
		startMs float64
		endMs   float64
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve speakers for a segment from persisted artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			src := &diarize.ArtifactSource{
				Store:       artifacts.NewStore(cfg.Storage.ResultsDir),
				WindowLabel: window,
			}
			segment := types.VADSegment{Span: types.Span{StartMs: startMs, EndMs: endMs}}

			subSegments, err := diarize.Resolve(segment, src)
			if err != nil {
				return err
			}
			for _, sub := range subSegments {
				fmt.Printf("%.0f\t%.0f\t%s\n", sub.StartMs, sub.EndMs, sub.Speaker)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&window, "window", "", "demanding event window label")
	cmd.Flags().Float64Var(&startMs, "start", 0, "segment start in ms")
	cmd.Flags().Float64Var(&endMs, "end", 0, "segment end in ms")
	cmd.MarkFlagRequired("window")
	cmd.MarkFlagRequired("end")
	return cmd
}
