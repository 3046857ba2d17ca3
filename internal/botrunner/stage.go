package botrunner

import (
	"path/filepath"

	"github.com/iasoon/planetwars-matchrunner/pkg/randid"
)

// StageBotCode mints a fresh 16-character alphanumeric directory name under
// botsDir, per spec §6. The caller is responsible for actually writing the
// uploaded bot's files into the returned path; this only reserves the name.
func StageBotCode(botsDir string) string {
	return filepath.Join(botsDir, randid.Alphanumeric(16))
}

// WorkdirBind builds the read-only bind-mount spec.md §6 requires: the
// staged code directory mounted at /workdir inside the container.
func WorkdirBind(stagedDir string) string {
	return stagedDir + ":/workdir:ro"
}
