package logger

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

type Logger struct {
	Verbose bool
	Debug   bool
}

func (l Logger) Infof(msg string, args ...any) {
	if l.Verbose || l.Debug {
		fmt.Fprintf(os.Stdout, color.GreenString("[info] ")+msg+"\n", args...)
	}
}

func (l Logger) Debugf(msg string, args ...any) {
	if l.Debug {
		fmt.Fprintf(os.Stdout, color.CyanString("[debug] ")+msg+"\n", args...)
	}
}

func (l Logger) Warnf(msg string, args ...any) {
	if l.Verbose || l.Debug {
		fmt.Fprintf(os.Stderr, color.YellowString("[warn] ")+msg+"\n", args...)
	}
}

// WarnfAlways prints regardless of verbosity. Use for warnings the user
// must see even in quiet mode.
func (l Logger) WarnfAlways(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, color.YellowString("[warn] ")+msg+"\n", args...)
}

func (l Logger) Errorf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, color.RedString("[error] ")+msg+"\n", args...)
}

// ErrorfAndReturn logs the error and returns it, so command handlers can
// do both in one statement.
func (l Logger) ErrorfAndReturn(msg string, args ...any) error {
	err := fmt.Errorf(msg, args...)
	l.Errorf("%v", err)
	return err
}
