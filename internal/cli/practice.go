package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/audio"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/words"
)

// NewPracticeCmd builds the interactive practice loop.
func NewPracticeCmd(deps *Dependencies) *cobra.Command {
	var word string
	var once bool

	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Record and check pronunciations",
		Long: "Walks the vocabulary in order, records up to the configured duration\n" +
			"from the default microphone (press Enter to stop early) and submits\n" +
			"each recording for a verdict.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if word != "" {
				if _, ok := words.Find(word); !ok {
					return fmt.Errorf("unknown word %q; run 'trainer words' for the list", word)
				}
			}

			if !audio.Supported() {
				return fmt.Errorf("no audio capture device available; run 'trainer doctor'")
			}

			session, err := audio.RequestAccess(audio.CaptureConstraints{
				SampleRate:       deps.Config.Capture.SampleRate,
				FramesPerBuffer:  deps.Config.Capture.FramesPerBuffer,
				EchoCancellation: deps.Config.Capture.EchoCancellation,
				NoiseSuppression: deps.Config.Capture.NoiseSuppression,
			})
			if err != nil {
				return fmt.Errorf("failed to open microphone: %w", err)
			}
			defer session.Release()

			recorder := audio.NewRecorder(session, func(rate int) (audio.ChunkEncoder, error) {
				return audio.NewOpusEncoder(rate)
			}, audio.RecorderConfig{
				MaxDuration:  deps.Config.Audio.GetMaxRecordingDuration(),
				ProgressTick: deps.Config.Audio.GetProgressTickDuration(),
			}, deps.Logger)

			client := newAPIClient(deps.ServerURL)
			stdin := bufio.NewReader(os.Stdin)

			position := 0
			for {
				var entry words.Entry
				entry, position = nextWord(word, position)
				if err := practiceOne(cmd.Context(), deps, client, recorder, stdin, entry); err != nil {
					return err
				}
				if once {
					return nil
				}

				fmt.Print("\nPress Enter for the next word, or q to quit: ")
				line, err := stdin.ReadString('\n')
				if err != nil || strings.TrimSpace(line) == "q" {
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&word, "word", "w", "", "Practice a specific word instead of the full list")
	cmd.Flags().BoolVar(&once, "once", false, "Check a single attempt and exit")

	return cmd
}

// nextWord yields the word for one attempt. A fixed word repeats; otherwise
// the session walks the vocabulary in list order, wrapping at the end.
func nextWord(fixed string, position int) (words.Entry, int) {
	if fixed != "" {
		entry, _ := words.Find(fixed)
		return entry, position
	}
	entry, _ := words.ByIndex(position % words.Count())
	return entry, position + 1
}

func practiceOne(ctx context.Context, deps *Dependencies, client *apiClient,
	recorder *audio.Recorder, stdin *bufio.Reader, entry words.Entry) error {

	fmt.Printf("\nSay: %s  (%s)\n", entry.Word, entry.Translation)
	fmt.Println("Recording... press Enter to stop early.")

	done := make(chan audio.Blob, 1)
	err := recorder.Start(
		func(percent int) {
			fmt.Printf("\r[%-50s] %3d%%", strings.Repeat("=", percent/2), percent)
		},
		func(blob audio.Blob, autoStopped bool) {
			if autoStopped {
				fmt.Print("\rRecording stopped at the time limit.          \n")
			} else {
				fmt.Print("\rRecording stopped.                            \n")
			}
			done <- blob
		},
	)
	if err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}

	// One stdin read per attempt: it stops the recording early, or after an
	// auto-stop it acknowledges the result. Never leaves a read pending.
	entered := make(chan struct{}, 1)
	go func() {
		if _, err := stdin.ReadString('\n'); err == nil {
			entered <- struct{}{}
		}
	}()

	var blob audio.Blob
	select {
	case blob = <-done:
		fmt.Println("Press Enter to continue...")
		select {
		case <-entered:
		case <-ctx.Done():
			return ctx.Err()
		}
	case <-entered:
		recorder.Stop(true)
		blob = <-done
	case <-ctx.Done():
		recorder.Cancel()
		return ctx.Err()
	}

	wavData, err := audio.ToWAV(blob)
	switch {
	case errors.Is(err, audio.ErrEmptyRecording):
		fmt.Println("Nothing was recorded, try again.")
		return nil
	case errors.Is(err, audio.ErrDecode):
		// Degraded mode: submit the original compressed bytes and let the
		// gateway judge them.
		deps.Logger.Warn("Recording not decodable, submitting original blob",
			slog.String("error", err.Error()))
		wavData = blob.Data
	case err != nil:
		return fmt.Errorf("failed to convert recording: %w", err)
	}

	audioBase64, err := audio.EncodeBase64(bytes.NewReader(wavData))
	if err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}

	verdict, err := client.CheckPronunciation(ctx, entry.Word, audioBase64)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	printVerdict(verdict)
	return nil
}

func printVerdict(v *checkVerdict) {
	if !v.Success {
		fmt.Printf("✗ %s\n", v.Message)
		return
	}
	if v.Correct {
		fmt.Printf("✓ %s (heard %q, confidence %.0f%%)\n", v.Message, v.Recognized, v.Confidence*100)
	} else {
		fmt.Printf("✗ %s (heard %q)\n", v.Message, v.Recognized)
	}
}
