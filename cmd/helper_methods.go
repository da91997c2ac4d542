package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode. Returns the spinner and a function that should
// be deferred to clean up.
//
// spinner.FinalMSG values do not need trailing newlines; the cleanup
// function adds one before printing the message to stdout.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Cleared so s.Stop() does not print it too.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// failure renders err for the user, followed by a hint when one applies.
// conflictHint replaces the generic hint for ErrConflict.
func failure(msg string, err error, conflictHint string) string {
	hint := errorHint(err)
	if errors.Is(err, kerrors.ErrConflict) && conflictHint != "" {
		hint = conflictHint
	}
	if hint == "" {
		return ui.Failed(msg, err)
	}
	return ui.Lines(ui.Failed(msg, err), ui.Hint(hint))
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrUnknownProject):
		return "Run " + ui.Code.Sprint("dotenvpull list") + " to see the projects in your local config"
	case errors.Is(err, kerrors.ErrDestinationExists):
		return "Use " + ui.Code.Sprint("--force") + " to overwrite it"
	case errors.Is(err, kerrors.ErrNotFound):
		return "The server has no such record; a share can only be fetched once"
	case errors.Is(err, kerrors.ErrAuthenticationFailure):
		return "The encryption key does not match the stored data"
	case errors.Is(err, kerrors.ErrInvalidKeyLength):
		return "Encryption keys are 32 bytes encoded as base64"
	case errors.Is(err, kerrors.ErrTransport):
		return "Check that the server is running with " + ui.Code.Sprint("dotenvpull ping")
	case errors.Is(err, kerrors.ErrStorageUnavailable):
		return "The server cannot reach its storage, try again later"
	case errors.Is(err, kerrors.ErrConfig):
		return "Inspect the local config with " + ui.Code.Sprint("dotenvpull config show")
	default:
		return ""
	}
}
