package main

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/amirphl/simple-indicators/internal/profile"
)

func newProfilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List profiles and the indicators they compute",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			composer, err := profile.NewComposer(nil, a.cfg.Profiles)
			if err != nil {
				return err
			}

			tw := newTable(a.out)
			tw.AppendHeader(table.Row{"profile", "indicators", "columns"})
			for _, name := range profile.Names() {
				if name == profile.Custom {
					tw.AppendRow(table.Row{name, "chosen with --indicators", ""})
					continue
				}
				tokens, err := composer.Tokens(name, nil)
				if err != nil {
					return err
				}
				cols, err := composer.Columns(name, nil)
				if err != nil {
					return err
				}
				tw.AppendRow(table.Row{name, strings.Join(tokens, " "), strings.Join(cols, " ")})
			}
			tw.Render()
			return nil
		},
	}
}

func newIndicatorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available indicators and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			tw := newTable(a.out)
			tw.AppendHeader(table.Row{"name", "parameters", "inputs", "columns", "description"})
			for _, def := range profile.DefaultRegistry().Definitions() {
				params := make([]string, len(def.Params))
				for i, p := range def.Params {
					params[i] = p.Name + "=" + strconv.Itoa(p.Default)
				}
				tw.AppendRow(table.Row{
					def.Name,
					strings.Join(params, " "),
					strings.Join(def.Inputs, " "),
					strings.Join(def.Outputs(def.Defaults()), " "),
					def.Description,
				})
			}
			tw.Render()
			return nil
		},
	}
}
