// Annuaire Core
// Copyright (c) 2026 The Annuaire Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Annuaire Core.
//
// Annuaire Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Annuaire Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Annuaire Core.  If not, see <http://www.gnu.org/licenses/>.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/annuaire-echecs/annuaire-core/pkg/config"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/distance"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/records"
	"github.com/annuaire-echecs/annuaire-core/pkg/directory/suggest"
	"github.com/annuaire-echecs/annuaire-core/pkg/helpers"
	"github.com/annuaire-echecs/annuaire-core/pkg/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Globals are the flags shared by every command.
type Globals struct {
	ConfigPath string
	JSON       bool
	Debug      bool
}

// Opener builds the directory a command works on.
type Opener func(ctx context.Context, g *Globals) (*service.Directory, error)

// Options configure the root command.
type Options struct {
	Out io.Writer
	// Open defaults to DefaultOpener.
	Open Opener
}

// DefaultOpener sets up directories, logging and config under the XDG
// layout and opens the directory.
func DefaultOpener(ctx context.Context, g *Globals) (*service.Directory, error) {
	dirs := helpers.DefaultDirs()
	cfg, err := Setup(dirs, g.ConfigPath, nil)
	if err != nil {
		return nil, err
	}
	log.Info().Msgf("version: %s", config.AppVersion)

	d, err := service.Open(ctx, service.Options{Config: cfg, DataDir: dirs.Data})
	if err != nil {
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}
	return d, nil
}

type app struct {
	out     io.Writer
	open    Opener
	globals Globals
}

// NewRootCommand returns the annuaire command tree.
func NewRootCommand(opts Options) *cobra.Command {
	a := &app{out: opts.Out, open: opts.Open}
	if a.out == nil {
		a.out = os.Stdout
	}
	if a.open == nil {
		a.open = DefaultOpener
	}

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Search the French chess club and player directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.globals.ConfigPath, "config", "", "config file (default is the XDG config directory)")
	flags.BoolVar(&a.globals.JSON, "json", false, "print results as JSON")
	flags.BoolVar(&a.globals.Debug, "debug", false, "enable debug logging for this run")

	root.AddCommand(
		a.searchCmd(),
		a.suggestCmd(),
		a.nearCmd(),
		a.slugsCmd(),
		a.lastCmd(),
		a.debugCmd(),
		a.versionCmd(),
	)
	return root
}

// withDirectory opens the directory, runs fn and closes it again.
func (a *app) withDirectory(ctx context.Context, fn func(*service.Directory) error) error {
	d, err := a.open(ctx, &a.globals)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := d.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing directory")
		}
	}()
	if a.globals.Debug {
		d.Config().SetDebugLogging(true)
	}
	return fn(d)
}

func (a *app) searchCmd() *cobra.Command {
	var kind string
	var limit int
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Fuzzy search clubs or players by name, commune or address",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return a.withDirectory(cmd.Context(), func(d *service.Directory) error {
				hits, err := d.Search(records.Kind(kind), query, limit)
				if err != nil {
					return err //nolint:wrapcheck // already wrapped by the service
				}
				a.remember(d, service.SearchState{Kind: records.Kind(kind), Query: query})

				if a.globals.JSON {
					return a.printJSON(hits)
				}
				if len(hits) == 0 {
					_, _ = fmt.Fprintln(a.out, "No result.")
					return nil
				}
				for i := range hits {
					rec := &hits[i].Record
					_, _ = fmt.Fprintf(a.out, "%-40s %s\n", rec.Name, suggest.DisplayLabel(rec.Commune, rec.PostalCode))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(records.KindClub), "record kind (club or player)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results, -1 for all (default from config)")
	return cmd
}

func (a *app) suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <query...>",
		Short: "Suggest locations for a partial commune name or postal code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDirectory(cmd.Context(), func(d *service.Directory) error {
				out := d.Suggest(cmd.Context(), strings.Join(args, " "))
				if a.globals.JSON {
					return a.printJSON(out)
				}
				for i := range out {
					marker := ""
					if out[i].HasRecord {
						marker = " *"
					}
					_, _ = fmt.Fprintf(a.out, "%s%s\n", out[i].Display, marker)
				}
				return nil
			})
		},
	}
}

func (a *app) nearCmd() *cobra.Command {
	var kind, filter string
	var limit int
	cmd := &cobra.Command{
		Use:   "near <location...>",
		Short: "Rank clubs or players by distance to a location",
		Long: `Rank clubs or players by distance to a location. The location is a
postal code, a commune name, a Paris arrondissement ("paris 15"), a
"lat,lng" pair or, when geocoding is enabled, any address.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := strings.Join(args, " ")
			return a.withDirectory(cmd.Context(), func(d *service.Directory) error {
				res, err := d.Near(cmd.Context(), records.Kind(kind), location, filter, limit)
				if err != nil {
					return err //nolint:wrapcheck // already wrapped by the service
				}
				a.remember(d, service.SearchState{Kind: records.Kind(kind), Query: filter, Near: location})

				if a.globals.JSON {
					return a.printJSON(res)
				}
				_, _ = fmt.Fprintf(a.out, "Near %s\n", res.Reference.Label)
				for i := range res.Results {
					r := &res.Results[i]
					_, _ = fmt.Fprintf(a.out, "%10s  %-40s %s\n",
						distance.FormatDistance(r), r.Record.Name,
						suggest.DisplayLabel(r.Record.Commune, r.Record.PostalCode))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(records.KindClub), "record kind (club or player)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only rank records matching this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results, -1 for all (default from config)")
	return cmd
}

func (a *app) slugsCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "slugs",
		Short: "Report slugs that had to be suffixed to stay unique",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDirectory(cmd.Context(), func(d *service.Directory) error {
				coll, err := d.Collection(records.Kind(kind))
				if err != nil {
					return err //nolint:wrapcheck // already wrapped by the service
				}
				collisions := coll.Collisions()
				if a.globals.JSON {
					return a.printJSON(collisions)
				}
				if len(collisions) == 0 {
					_, _ = fmt.Fprintln(a.out, "No slug collision.")
					return nil
				}
				for _, c := range collisions {
					pairs := make([]string, len(c.IDs))
					for i := range c.IDs {
						pairs[i] = c.Slugs[i] + "=" + c.IDs[i]
					}
					_, _ = fmt.Fprintf(a.out, "%s: %s\n", c.Base, strings.Join(pairs, ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(records.KindClub), "record kind (club or player)")
	return cmd
}

func (a *app) lastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show the last search",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDirectory(cmd.Context(), func(d *service.Directory) error {
				s, ok := d.LastSearch()
				if a.globals.JSON {
					if !ok {
						return a.printJSON(nil)
					}
					return a.printJSON(s)
				}
				if !ok {
					_, _ = fmt.Fprintln(a.out, "No previous search.")
					return nil
				}
				_, _ = fmt.Fprintf(a.out, "kind: %s\n", s.Kind)
				if s.Query != "" {
					_, _ = fmt.Fprintf(a.out, "query: %s\n", s.Query)
				}
				if s.Near != "" {
					_, _ = fmt.Fprintf(a.out, "near: %s\n", s.Near)
				}
				return nil
			})
		},
	}
}

func (a *app) debugCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "debug <on|off>",
		Short:     "Persist the debug logging flag",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
			default:
				return fmt.Errorf("invalid debug value %q (valid: on, off)", args[0])
			}
			return a.withDirectory(cmd.Context(), func(d *service.Directory) error {
				if err := d.SetDebug(enabled); err != nil {
					return err //nolint:wrapcheck // already wrapped by the service
				}
				_, _ = fmt.Fprintf(a.out, "debug logging %s\n", args[0])
				return nil
			})
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(*cobra.Command, []string) {
			_, _ = fmt.Fprintf(a.out, "%s v%s\n", config.AppName, config.AppVersion)
		},
	}
}

// remember saves the search state; failing to do so never fails the command.
func (*app) remember(d *service.Directory, s service.SearchState) {
	if err := d.SaveSearch(s); err != nil {
		log.Warn().Err(err).Msg("failed to save search state")
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
