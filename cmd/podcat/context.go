package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"podcat/internal/config"
	"podcat/internal/content"
)

// commandContext holds the persistent flags shared by every subcommand.
type commandContext struct {
	contentDir string
	audioDir   string
	verbose    bool
}

func (c *commandContext) logger(cmd *cobra.Command, always bool) *log.Logger {
	if !always && !c.verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(cmd.ErrOrStderr(), "podcat ", log.LstdFlags|log.Lmsgprefix)
}

// contentOptions resolves content and audio directories. Flags win over the
// environment.
func (c *commandContext) contentOptions() (content.Options, error) {
	var opts content.Options

	if c.contentDir != "" {
		dir, err := existingDir(c.contentDir)
		if err != nil {
			return content.Options{}, fmt.Errorf("content dir: %w", err)
		}
		opts.Dir = dir
	} else {
		dir, ok, err := config.ResolveContentDir()
		if err != nil {
			return content.Options{}, fmt.Errorf("resolve content dir: %w", err)
		}
		if ok {
			opts.Dir = dir
		}
	}

	if c.audioDir != "" {
		dir, err := existingDir(c.audioDir)
		if err != nil {
			return content.Options{}, fmt.Errorf("audio dir: %w", err)
		}
		opts.AudioRoot = dir
	} else {
		dir, ok, err := config.ResolveAudioRoot()
		if err != nil {
			return content.Options{}, fmt.Errorf("resolve audio root: %w", err)
		}
		if ok {
			opts.AudioRoot = dir
		}
	}

	return opts, nil
}

func (c *commandContext) openStore(logger *log.Logger) (*content.Store, error) {
	opts, err := c.contentOptions()
	if err != nil {
		return nil, err
	}
	store, err := content.NewStore(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return store, nil
}

func existingDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
