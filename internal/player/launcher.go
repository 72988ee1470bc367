// Package player starts an external command-line audio player for a track
// and hands back the running process.
package player

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mmcdole/cadence/internal/domain"
)

// Launcher plays local files in an external player
type Launcher struct {
	command   string   // configured player command, empty to auto-detect
	args      []string // additional arguments for the player
	startFlag string   // offset flag prefix, e.g., "--start=" or "-ss "
	logger    *slog.Logger

	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
}

// playerConfig describes how to drive one known player
type playerConfig struct {
	offsetFlag string   // Resume offset flag (e.g., "--start=")
	args       []string // Arguments that keep the player headless and quiet
}

// players registry - single source of truth for known player behavior
var players = map[string]playerConfig{
	"mpv": {
		offsetFlag: "--start=",
		args:       []string{"--no-video", "--really-quiet"},
	},
	"ffplay": {
		offsetFlag: "-ss ",
		args:       []string{"-nodisp", "-autoexit", "-loglevel", "quiet"},
	},
	"cvlc": {
		offsetFlag: "--start-time=",
		args:       []string{"--play-and-exit", "--quiet"},
	},
	"vlc": {
		offsetFlag: "--start-time=",
		args:       []string{"--intf", "dummy", "--play-and-exit"},
	},
	"mplayer": {
		offsetFlag: "-ss ",
		args:       []string{"-really-quiet", "-novideo"},
	},
	"afplay": {},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"mpv", "ffplay", "afplay"},
	"linux":   {"mpv", "ffplay", "cvlc", "mplayer"},
	"windows": {"mpv", "ffplay", "vlc"},
}

// NewLauncher creates a Launcher. An empty command auto-detects a player;
// an empty startFlag is filled in for known players.
func NewLauncher(command string, args []string, startFlag string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}

	resolvedFlag := startFlag
	if resolvedFlag == "" && command != "" {
		if cfg, ok := players[playerName(command)]; ok && cfg.offsetFlag != "" {
			resolvedFlag = cfg.offsetFlag
			logger.Debug("auto-detected player offset flag", "player", playerName(command), "flag", resolvedFlag)
		}
	}

	return &Launcher{
		command:   command,
		args:      args,
		startFlag: resolvedFlag,
		logger:    logger,
		lookPath:  exec.LookPath,
		start:     (*exec.Cmd).Start,
	}
}

// playerName normalizes "/usr/bin/MPV.exe" to "mpv"
func playerName(command string) string {
	base := filepath.Base(command)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(base)
}

// offsetArgs renders the start offset for flag. Flags ending in a space take
// the value as a separate argument ("-ss 120"); others get it appended
// ("--start=120").
func offsetArgs(flag string, offset time.Duration) []string {
	if offset <= 0 || flag == "" {
		return nil
	}
	secs := fmt.Sprintf("%.0f", offset.Seconds())
	if strings.HasSuffix(flag, " ") {
		return []string{strings.TrimSuffix(flag, " "), secs}
	}
	return []string{flag + secs}
}

// commandLine resolves the program and arguments that play path from offset
func (l *Launcher) commandLine(path string, offset time.Duration) (string, []string, error) {
	if l.command != "" {
		bin, err := l.lookPath(l.command)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %v", domain.ErrNoPlayer, l.command, err)
		}
		args := append([]string{}, l.args...)
		args = append(args, offsetArgs(l.startFlag, offset)...)
		if offset > 0 && l.startFlag == "" {
			l.logger.Warn("cannot set start offset - unknown player, configure start_flag in config",
				"command", l.command, "offset", offset)
		}
		return bin, append(args, path), nil
	}

	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}
	for _, name := range candidates {
		bin, err := l.lookPath(name)
		if err != nil {
			l.logger.Debug("player not available", "player", name, "error", err)
			continue
		}
		cfg := players[name]
		args := append([]string{}, cfg.args...)
		args = append(args, l.args...)
		args = append(args, offsetArgs(cfg.offsetFlag, offset)...)
		return bin, append(args, path), nil
	}
	return "", nil, domain.ErrNoPlayer
}

// Launch starts playing path at offset and returns the running player
func (l *Launcher) Launch(path string, offset time.Duration) (domain.PlayerProcess, error) {
	bin, args, err := l.commandLine(path, offset)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(bin, args...)
	l.logger.Info("launching player", "command", bin, "args", args)
	if err := l.start(cmd); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", bin, err)
	}
	return newProcess(cmd), nil
}
