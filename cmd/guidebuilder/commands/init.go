package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Output directory for generated config file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	switch {
	case i.Output != "":
		path = filepath.Join(i.Output, config.DefaultPath)
	case path == "":
		path = config.DefaultPath
	}
	w := g.out()
	fmt.Fprintf(w, "Writing configuration to %s\n", path)
	if err := config.Init(path, i.Force); err != nil {
		fmt.Fprintln(w, "Initialization failed")
		return err
	}
	_, err := fmt.Fprintln(w, "initialized successfully")
	return err
}
