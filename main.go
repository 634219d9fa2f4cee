// Package main is the entry point for the vsel application.
package main

import (
	"github.com/samber/lo"
	"github.com/vsel-cli/vsel/cmd"
	"github.com/vsel-cli/vsel/config"
	"github.com/vsel-cli/vsel/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())
	cmd.Execute()
}
