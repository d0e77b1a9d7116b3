package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/cleanroom-sh/cleanroom/internal/ui"

	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message.
// Returns the spinner and a cleanup function that should be deferred.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if !verbose && !debug {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
		}

		if !verbose && !debug {
			s.FinalMSG = finalMsg
			s.Stop()
		} else if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}
