package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// runBeforeHooks stops at the first failing command.
func (r *Runner) runBeforeHooks(ctx context.Context, commands []string, baseDir string, resolve func(string) string) error {
	for _, command := range commands {
		if err := r.runHook(ctx, command, baseDir, resolve); err != nil {
			return fmt.Errorf("before hook failed: %w", err)
		}
	}
	return nil
}

// runAfterHooks runs every command and returns the first error.
func (r *Runner) runAfterHooks(ctx context.Context, commands []string, baseDir string, resolve func(string) string) error {
	var firstErr error
	for _, command := range commands {
		if err := r.runHook(ctx, command, baseDir, resolve); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("after hook failed: %w", err)
		}
	}
	return firstErr
}

func (r *Runner) runHook(ctx context.Context, command, baseDir string, resolve func(string) string) error {
	cmdStr := strings.TrimSpace(resolve(command))
	if cmdStr == "" {
		return nil
	}

	// ./script and ../script are relative to the check file.
	parts := strings.Fields(cmdStr)
	if exe := parts[0]; strings.HasPrefix(exe, "./") || strings.HasPrefix(exe, "../") {
		parts[0] = filepath.Join(baseDir, exe)
		cmdStr = strings.Join(parts, " ")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", cmdStr)
	cmd.Dir = baseDir
	cmd.Env = os.Environ()

	output, err := cmd.CombinedOutput()
	r.logger.Debug("hook", zap.String("command", cmdStr), zap.ByteString("output", output), zap.Error(err))
	if err != nil {
		return fmt.Errorf("command %q: %w\noutput: %s", command, err, strings.TrimSpace(string(output)))
	}
	return nil
}
