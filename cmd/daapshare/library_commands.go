package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"daapshare/internal/library"
	"daapshare/internal/logging"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect and populate the library database",
	}

	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibraryAddCommand(ctx))
	libraryCmd.AddCommand(newLibraryDeviceCommand(ctx))
	libraryCmd.AddCommand(newLibraryRemoveCommand(ctx))

	return libraryCmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracks and devices in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				tracks, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				devices, err := store.Devices(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(tracks) == 0 {
					fmt.Fprintln(out, "Library is empty")
				} else {
					fmt.Fprintln(out, renderTable(trackColumns, trackRows(tracks)))
				}
				if len(devices) > 0 {
					rows := make([][]string, 0, len(devices))
					for _, d := range devices {
						rows = append(rows, []string{strconv.FormatInt(d.ID, 10), d.Mountpoint})
					}
					fmt.Fprintln(out, renderTable(deviceColumns, rows))
				}
				return nil
			})
		},
	}
}

var trackColumns = []tableColumn{
	{Header: "#", Align: alignRight},
	{Header: "Title"},
	{Header: "Artist"},
	{Header: "Album"},
	{Header: "Genre"},
	{Header: "Year", Align: alignRight},
	{Header: "Device", Align: alignRight},
	{Header: "URL"},
}

var deviceColumns = []tableColumn{
	{Header: "Device", Align: alignRight},
	{Header: "Mountpoint"},
}

func trackRows(tracks []library.Track) [][]string {
	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		device := "-"
		if t.DeviceID != library.NoDevice {
			device = strconv.FormatInt(t.DeviceID, 10)
		}
		rows = append(rows, []string{
			optionalInt(t.Number),
			t.Title,
			t.Artist,
			t.Album,
			t.Genre,
			optionalInt(t.Year),
			device,
			t.URL,
		})
	}
	return rows
}

func optionalInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func newLibraryAddCommand(ctx *commandContext) *cobra.Command {
	var genre string
	cmd := &cobra.Command{
		Use:   "add <path>...",
		Short: "Import audio files or directories into the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewFromConfig(ctx.configValue(), true)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return ctx.withLibrary(func(store *library.Store) error {
				opts := library.ImportOptions{
					Genre:  strings.TrimSpace(genre),
					Logger: logger,
				}
				out := cmd.OutOrStdout()
				total := 0
				for _, path := range args {
					added, err := store.Import(cmd.Context(), path, opts)
					if err != nil {
						return fmt.Errorf("import %s: %w", path, err)
					}
					fmt.Fprintf(out, "%s: %d track(s)\n", path, added)
					total += added
				}
				fmt.Fprintf(out, "Imported %d track(s) into %s\n", total, store.Path())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&genre, "genre", "", "Genre recorded for every imported track")
	return cmd
}

func newLibraryDeviceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "device <id> <mountpoint>",
		Short: "Register or move a removable device mountpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid device id %q", args[0])
			}
			return ctx.withLibrary(func(store *library.Store) error {
				if err := store.RegisterDevice(cmd.Context(), id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Device %d mounted at %s\n", id, args[1])
				return nil
			})
		},
	}
}

func newLibraryRemoveCommand(ctx *commandContext) *cobra.Command {
	var device int64
	cmd := &cobra.Command{
		Use:   "remove <url>",
		Short: "Remove a track by its stored url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				if err := store.Remove(cmd.Context(), args[0], device); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&device, "device", library.NoDevice, "Device id the url is relative to")
	return cmd
}
