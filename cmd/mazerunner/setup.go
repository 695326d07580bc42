package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/gwillem/mazerunner/pkg/robot"
)

type SetupCommand struct {
	Config string `long:"config" default:"mazerunner.json" description:"Wiring config file to write"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("mazerunner setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━"))
	fmt.Println()

	// Start from the existing wiring when there is one.
	cfg := robot.DefaultConfig()
	if robot.ConfigExists(c.Config) {
		if existing, err := robot.LoadConfigFrom(c.Config); err == nil {
			cfg = *existing
			fmt.Printf("Editing %s\n\n", c.Config)
		} else {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Ignoring %s: %v", c.Config, err)))
			fmt.Println()
		}
	}

	if err := pinForm(&cfg).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("Setup aborted, nothing written.")
			return nil
		}
		return err
	}

	if err := cfg.Validate(); err != nil {
		fmt.Println(errorStyle.Render("Invalid wiring: " + err.Error()))
		return err
	}
	if err := cfg.SaveTo(c.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", c.Config)
	fmt.Println()
	fmt.Println("Drive a route with: " + headerStyle.Render("mazerunner run maze.json"))
	return nil
}

// pinForm builds one form group per component. Inputs edit cfg in place.
func pinForm(cfg *robot.Config) *huh.Form {
	var groups []*huh.Group
	var fields []huh.Field
	prefix := ""
	for _, pf := range cfg.Pins() {
		component, _, _ := strings.Cut(pf.Field, ".")
		if component != prefix && len(fields) > 0 {
			groups = append(groups, huh.NewGroup(fields...).Title(prefix))
			fields = nil
		}
		prefix = component
		fields = append(fields, huh.NewInput().
			Title(pf.Field).
			Placeholder("GPIO17").
			Value(pf.Pin).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("pin is required")
				}
				return nil
			}))
	}
	if len(fields) > 0 {
		groups = append(groups, huh.NewGroup(fields...).Title(prefix))
	}
	return huh.NewForm(groups...)
}
