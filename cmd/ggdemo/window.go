//go:build !ebiten

package main

import (
	"context"

	"github.com/gogpu/ggame"
)

func runWindow(context.Context, ggame.Config) error {
	return errNoWindow
}
