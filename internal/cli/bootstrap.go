// Package cli provides CLI commands for the taskgate application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/taskgate/internal/errs"
	"github.com/example/taskgate/internal/wire"
)

// Global flags shared by every command.
var (
	flagAs     string
	flagToken  string
	flagConfig string
)

// callerCtx is the context carrying the caller identity for the current invocation.
// Set once at startup by ResolveCaller.
var callerCtx context.Context

// BindGlobalFlags registers --as, --token and --config on root.
func BindGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&flagAs, "as", "", "act as this username")
	root.PersistentFlags().StringVar(&flagToken, "token", "", "act as the subject of this signed token")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ./taskgate.yaml or ~/.taskgate/taskgate.yaml)")
}

// skipCallerAnnotation marks commands that never touch the store.
const skipCallerAnnotation = "taskgate/skip-caller"

// ResolveCaller loads configuration and stores the caller identity.
// Should be called once at CLI startup in PersistentPreRunE.
func ResolveCaller(cmd *cobra.Command) error {
	if cmd.Annotations[skipCallerAnnotation] != "" {
		return nil
	}
	wire.SetConfigPath(flagConfig)
	ctx, err := wire.CallerContext(cmd.Context(), flagAs, flagToken)
	if err != nil {
		return err
	}
	callerCtx = ctx
	return nil
}

// NewContext returns the context carrying the caller identity.
// CLI commands should use this instead of context.Background() directly.
func NewContext() context.Context {
	if callerCtx != nil {
		return callerCtx
	}
	return context.Background()
}

// PrintError writes err as "kind: reason" in red.
func PrintError(w io.Writer, err error) {
	red := color.New(color.FgRed)
	var classified *errs.Error
	if !errors.As(err, &classified) {
		red.Fprintf(w, "error: %v\n", err)
		return
	}

	msg := classified.Reason
	if msg == "" && classified.Err != nil {
		msg = classified.Err.Error()
	}
	red.Fprintf(w, "%s: %s\n", classified.Kind, msg)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

// parseDeadline accepts a date (2006-01-02) or an RFC 3339 timestamp. Empty means unset.
func parseDeadline(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q (want YYYY-MM-DD or RFC 3339)", s)
	}
	return t, nil
}
